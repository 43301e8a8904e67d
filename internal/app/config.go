package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PresetPath string // hcl, json or yaml preset file

	Note        string        // pitch name or frequency to play; empty uses the preset's own
	PlayFor     time.Duration // how long to hold the note before releasing
	LogFormat   string
	LogLevel    string
	StatusPort  int
	Headless    bool // render without opening a sound device
	PreviewPath string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PresetPath == "" {
		return nil, errors.New("PresetPath is a required configuration field and cannot be empty")
	}
	if cfg.PlayFor <= 0 {
		cfg.PlayFor = 2 * time.Second
	}

	return &cfg, nil
}
