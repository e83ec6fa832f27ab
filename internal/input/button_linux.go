//go:build linux

package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// OpenButton requests the record button's GPIO line and invokes onPress
// once per physical press. The button is wired active-low: line pulled up,
// press shorts to ground.
//
// On Pi, line names are commonly "GPIO17", etc.
func OpenButton(pin int, onPress func()) (*Button, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("input: invalid gpio pin %d", pin)
	}
	if onPress == nil {
		return nil, fmt.Errorf("input: onPress is nil")
	}

	lineName := fmt.Sprintf("GPIO%d", pin)

	// Try likely chips first (Pi 5 kernel variants can expose header GPIOs
	// on gpiochip0 and sometimes additional chips exist).
	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	b := &Button{onPress: onPress}
	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithBothEdges,
			gpiocdev.WithDebounce(20*time.Millisecond),
			gpiocdev.WithEventHandler(b.handleEvent),
			gpiocdev.WithConsumer("tracklog-ng-button"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		b.chip = chip
		b.line = line
		return b, nil
	}

	return nil, fmt.Errorf("input: gpio line %q not found (or busy)", lineName)
}

type Button struct {
	chip    *gpiocdev.Chip
	line    *gpiocdev.Line
	edge    Detector
	onPress func()
}

func (b *Button) handleEvent(evt gpiocdev.LineEvent) {
	// Active-low: falling edge means pressed.
	pressed := evt.Type == gpiocdev.LineEventFallingEdge
	if b.edge.Press(pressed) {
		b.onPress()
	}
}

func (b *Button) Close() error {
	if b == nil || b.line == nil {
		return nil
	}
	err := b.line.Close()
	b.line = nil
	if b.chip != nil {
		_ = b.chip.Close()
		b.chip = nil
	}
	return err
}
