package display

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"tracklog-ng/internal/tracker"
)

// Run drives the OLED until ctx is cancelled. status is polled on every
// refresh tick; draw errors are logged, not fatal (the logger keeps
// recording with a dead display).
func Run(ctx context.Context, status func() tracker.Status, interval time.Duration) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("display: periph init: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("display: open i2c bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("display: init ssd1306: %w", err)
	}
	log.Printf("display: ssd1306 initialized on %s", bus)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = dev.Halt()
			return nil
		case <-ticker.C:
			img := render(status())
			if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
				log.Printf("display: draw: %v", err)
			}
		}
	}
}
