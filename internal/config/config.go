package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPS     GPSConfig     `yaml:"gps"`
	Track   TrackConfig   `yaml:"track"`
	Button  ButtonConfig  `yaml:"button"`
	Display DisplayConfig `yaml:"display"`
}

type GPSConfig struct {
	// Source selects how NMEA is ingested: "serial" (direct receiver) or
	// "replay" (captured log). When empty, defaults to "serial".
	Source string `yaml:"source"`

	// Device is the serial device path; empty means auto-detect
	// (/dev/ttyACM*, /dev/ttyUSB*).
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	Replay ReplayConfig `yaml:"replay"`
}

type ReplayConfig struct {
	Path string `yaml:"path"`
	// Interval is the pacing between replayed sentences (receivers emit at
	// ~1 Hz per sentence type).
	Interval time.Duration `yaml:"interval"`
	Speed    float64       `yaml:"speed"`
	Loop     bool          `yaml:"loop"`
}

type TrackConfig struct {
	// Dir is the removable-storage directory GPX files are written to.
	Dir string `yaml:"dir"`
	// Interval is the trackpoint sampling cadence.
	Interval time.Duration `yaml:"interval"`
}

type ButtonConfig struct {
	Enable bool `yaml:"enable"`
	// Pin is the BCM GPIO number of the record push button.
	Pin int `yaml:"pin"`
}

type DisplayConfig struct {
	Enable         bool          `yaml:"enable"`
	UpdateInterval time.Duration `yaml:"update_interval"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.GPS.Source == "" {
		cfg.GPS.Source = "serial"
	}
	if cfg.GPS.Source != "serial" && cfg.GPS.Source != "replay" {
		return Config{}, fmt.Errorf("gps.source must be 'serial' or 'replay'")
	}
	if cfg.GPS.Baud == 0 {
		cfg.GPS.Baud = 9600
	}
	if cfg.GPS.Baud < 0 {
		return Config{}, fmt.Errorf("gps.baud must be > 0")
	}

	if cfg.GPS.Source == "replay" {
		if cfg.GPS.Replay.Path == "" {
			return Config{}, fmt.Errorf("gps.replay.path is required when gps.source is 'replay'")
		}
		if cfg.GPS.Replay.Interval <= 0 {
			cfg.GPS.Replay.Interval = 1 * time.Second
		}
		if cfg.GPS.Replay.Speed == 0 {
			cfg.GPS.Replay.Speed = 1
		}
		if cfg.GPS.Replay.Speed < 0 {
			return Config{}, fmt.Errorf("gps.replay.speed must be > 0")
		}
	}

	if cfg.Track.Dir == "" {
		return Config{}, fmt.Errorf("track.dir is required")
	}
	if cfg.Track.Interval <= 0 {
		cfg.Track.Interval = 3 * time.Second
	}

	if cfg.Button.Enable && cfg.Button.Pin <= 0 {
		return Config{}, fmt.Errorf("button.pin is required when button.enable is true")
	}

	if cfg.Display.UpdateInterval <= 0 {
		cfg.Display.UpdateInterval = 500 * time.Millisecond
	}

	return cfg, nil
}
