// Package rconfig loads the small set of runtime tunables a vitrine
// process needs at startup: render mode, channel sizing, and the amount
// by which the orchestrator expands dirty intervals when it flushes the
// cell buffer. Unmarshaling follows the teacher's config package's pattern of
// decoding YAML onto a pre-populated default struct so an override file
// only needs to name the fields it changes.
package rconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vitrineterm/vitrine/pkg/orchestrator"
)

// Config is the full set of process-level tunables.
type Config struct {
	// UpdateIntervalExpand is the orchestrator's ExpandAmount (see also
	// Orchestrator.SetUpdateIntervalExpand): how far dirty intervals are
	// expanded when they are merged before each flush to the sink.
	UpdateIntervalExpand int `yaml:"update_interval_expand"`

	// RenderMode selects the orchestrator's Instant or Buffered
	// rendering strategy.
	RenderMode orchestrator.RenderMode `yaml:"render_mode"`

	// BufferedChannelSize sizes the orchestrator's command channel.
	BufferedChannelSize int `yaml:"buffered_channel_size"`

	// SinkChannelSize sizes any channel an application places between
	// its raw event source and pkg/input's reader loop.
	SinkChannelSize int `yaml:"sink_channel_size"`
}

// Default returns the baseline configuration spec.md §6 specifies.
func Default() Config {
	return Config{
		UpdateIntervalExpand: 50000,
		RenderMode:           orchestrator.Instant,
		BufferedChannelSize:  256,
		SinkChannelSize:      256,
	}
}

// rawConfig decodes render_mode as a string so parseRenderMode can accept
// the human-readable form a YAML file is expected to use, since
// orchestrator.RenderMode has no TextUnmarshaler of its own.
type rawConfig struct {
	UpdateIntervalExpand *int    `yaml:"update_interval_expand"`
	RenderMode           *string `yaml:"render_mode"`
	BufferedChannelSize  *int    `yaml:"buffered_channel_size"`
	SinkChannelSize      *int    `yaml:"sink_channel_size"`
}

// Load reads path and merges it onto Default, so an override file only
// needs to set the fields it changes.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if raw.UpdateIntervalExpand != nil {
		cfg.UpdateIntervalExpand = *raw.UpdateIntervalExpand
	}
	if raw.BufferedChannelSize != nil {
		cfg.BufferedChannelSize = *raw.BufferedChannelSize
	}
	if raw.SinkChannelSize != nil {
		cfg.SinkChannelSize = *raw.SinkChannelSize
	}
	if raw.RenderMode != nil {
		mode, err := parseRenderMode(*raw.RenderMode)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.RenderMode = mode
	}

	return cfg, nil
}

func parseRenderMode(s string) (orchestrator.RenderMode, error) {
	switch s {
	case "instant", "Instant":
		return orchestrator.Instant, nil
	case "buffered", "Buffered":
		return orchestrator.Buffered, nil
	default:
		return 0, fmt.Errorf("unknown render_mode %q, want \"instant\" or \"buffered\"", s)
	}
}
