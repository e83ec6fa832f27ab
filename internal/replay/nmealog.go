// Package replay feeds captured NMEA logs through the tracker as if a
// receiver were attached, for bench runs and regression tests without
// hardware.
//
// Log format: line-oriented text, one NMEA sentence per line, exactly as
// captured from the receiver.
//
// - Blank lines ignored.
// - Lines starting with '#' ignored.
//
// Captures carry no timestamps; sentences are replayed at a fixed interval
// (receivers emit at ~1 Hz per sentence type) scaled by a speed multiplier.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

func ReadAll(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 256), 64*1024)

	lines := make([]string, 0, 1024)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.New("replay: no sentences")
	}
	return lines, nil
}

type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Play invokes cb for each sentence, sleeping interval/speed between
// sentences.
//
// speed: 1.0 = real time, 2.0 = 2x speed (half waits), 0.5 = half speed.
func Play(lines []string, interval time.Duration, speed float64, loop bool, sleeper Sleeper, cb func(line string) error) error {
	if interval <= 0 {
		return fmt.Errorf("replay: interval must be > 0")
	}
	if speed <= 0 {
		return fmt.Errorf("replay: speed must be > 0")
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	if cb == nil {
		return errors.New("replay: callback is nil")
	}
	if len(lines) == 0 {
		return errors.New("replay: no sentences")
	}

	wait := time.Duration(float64(interval) / speed)
	first := true
	for {
		for _, line := range lines {
			if !first {
				sleeper.Sleep(wait)
			}
			first = false
			if err := cb(line); err != nil {
				return err
			}
		}
		if !loop {
			return nil
		}
	}
}

// Stream runs Play in a goroutine and exposes the sentences as a CRLF
// byte stream, the same shape the serial port delivers. Closing the
// returned reader stops playback.
func Stream(lines []string, interval time.Duration, speed float64, loop bool) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		err := Play(lines, interval, speed, loop, nil, func(line string) error {
			_, werr := io.WriteString(pw, line+"\r\n")
			return werr
		})
		_ = pw.CloseWithError(err)
	}()
	return pr
}
