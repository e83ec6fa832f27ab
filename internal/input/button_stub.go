//go:build !linux

package input

import "errors"

// Stub implementation for non-Linux platforms.
type Button struct{}

func OpenButton(_ int, _ func()) (*Button, error) {
	return nil, errors.New("input: gpio button unsupported on this platform")
}

func (b *Button) Close() error { return nil }
