// Package config loads strip and channel configuration from JSON for
// the host tooling. Hardware constants (ring size, buffer capacity,
// queue depth) are configuration in the strict sense: validated here,
// never adjusted at runtime to paper over alignment problems.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/FastLED/clockless/core"
)

// StripConfig describes one lane.
type StripConfig struct {
	Pin        uint32 `json:"pin"`
	Leds       int    `json:"leds"`
	Chipset    string `json:"chipset"`
	ColorOrder string `json:"color_order"`
	RecordSize int    `json:"record_size"`
	Brightness int    `json:"brightness"`
}

// ChannelConfig describes the transfer hardware shared by the lanes.
type ChannelConfig struct {
	RingBuffers int `json:"ring_buffers"`
	BufferBytes int `json:"buffer_bytes"`
	QueueDepth  int `json:"queue_depth"`
	PulseClock  int `json:"pulse_clock_hz"`
	TimeoutMS   int `json:"timeout_ms"`
}

// Config is the root of a striptool configuration file.
type Config struct {
	Channel ChannelConfig `json:"channel"`
	Strips  []StripConfig `json:"strips"`
}

// Load parses a JSON configuration and applies defaults.
func Load(jsonData []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, validate(&cfg)
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(cfg *Config) {
	if cfg.Channel.RingBuffers == 0 {
		cfg.Channel.RingBuffers = 3
	}
	if cfg.Channel.BufferBytes == 0 {
		cfg.Channel.BufferBytes = 1024
	}
	if cfg.Channel.QueueDepth == 0 {
		cfg.Channel.QueueDepth = cfg.Channel.RingBuffers
	}
	if cfg.Channel.PulseClock == 0 {
		cfg.Channel.PulseClock = core.DefaultClockHz
	}
	if cfg.Channel.TimeoutMS == 0 {
		cfg.Channel.TimeoutMS = 250
	}
	for i := range cfg.Strips {
		s := &cfg.Strips[i]
		if s.Chipset == "" {
			s.Chipset = "WS2812"
		}
		if s.ColorOrder == "" {
			s.ColorOrder = "GRB"
		}
		if s.RecordSize == 0 {
			s.RecordSize = len(s.ColorOrder)
		}
		if s.Brightness == 0 {
			s.Brightness = 255
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Channel.RingBuffers > cfg.Channel.QueueDepth {
		return fmt.Errorf("config: ring_buffers %d exceeds queue_depth %d: %w",
			cfg.Channel.RingBuffers, cfg.Channel.QueueDepth, core.ErrQueueDepth)
	}
	for i, s := range cfg.Strips {
		if _, err := core.ProfileFor(s.Chipset); err != nil {
			return fmt.Errorf("config: strip %d chipset %q: %w", i, s.Chipset, err)
		}
		if s.Leds <= 0 {
			return fmt.Errorf("config: strip %d has no LEDs", i)
		}
		if s.RecordSize != len(s.ColorOrder) {
			return fmt.Errorf("config: strip %d record_size %d does not match color_order %q",
				i, s.RecordSize, s.ColorOrder)
		}
	}
	return nil
}

// Profile returns the timing profile for a strip.
func (s StripConfig) Profile() (core.TimingProfile, error) {
	return core.ProfileFor(s.Chipset)
}

// Bytes returns the strip's lane byte length.
func (s StripConfig) Bytes() int {
	return s.Leds * s.RecordSize
}
