package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tracklog-ng/internal/config"
	"tracklog-ng/internal/display"
	"tracklog-ng/internal/input"
	"tracklog-ng/internal/replay"
	"tracklog-ng/internal/serialport"
	"tracklog-ng/internal/tracker"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// Logging is the product's purpose: no storage, no degraded mode.
	if st, err := os.Stat(cfg.Track.Dir); err != nil || !st.IsDir() {
		log.Fatalf("track dir %s unavailable: %v", cfg.Track.Dir, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, srcName, err := openSource(cfg.GPS)
	if err != nil {
		log.Fatalf("gps source init failed: %v", err)
	}
	defer src.Close()

	log.Printf("tracklog-ng starting")
	log.Printf("gps source=%s track dir=%s interval=%s", srcName, cfg.Track.Dir, cfg.Track.Interval)

	rt := tracker.New(tracker.Config{
		TrackDir:       cfg.Track.Dir,
		SampleInterval: cfg.Track.Interval,
	}, src)

	if cfg.Button.Enable {
		btn, err := input.OpenButton(cfg.Button.Pin, rt.ToggleRecording)
		if err != nil {
			log.Fatalf("record button init failed: %v", err)
		}
		defer btn.Close()
		log.Printf("record button on GPIO%d", cfg.Button.Pin)
	}

	if cfg.Display.Enable {
		go func() {
			if err := display.Run(ctx, rt.Status, cfg.Display.UpdateInterval); err != nil && ctx.Err() == nil {
				log.Printf("display stopped: %v", err)
			}
		}()
	}

	go func() {
		// Unblock the runtime's reader when we are shutting down.
		<-ctx.Done()
		_ = src.Close()
	}()

	if err := rt.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("tracker stopped: %v", err)
	}
	log.Printf("tracklog-ng stopping")
}

func openSource(cfg config.GPSConfig) (io.ReadCloser, string, error) {
	if cfg.Source == "replay" {
		f, err := os.Open(cfg.Replay.Path)
		if err != nil {
			return nil, "", err
		}
		lines, err := replay.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, "", err
		}
		return replay.Stream(lines, cfg.Replay.Interval, cfg.Replay.Speed, cfg.Replay.Loop), "replay:" + cfg.Replay.Path, nil
	}

	port, device, err := serialport.Open(cfg.Device, cfg.Baud)
	if err != nil {
		return nil, "", err
	}
	return port, device, nil
}
