package config

import "fmt"

// InstanceConfig describes an instance created when the runtime starts: it
// is obtained with Args, configured with Settings and, when Alias is set,
// published under that alias.
type InstanceConfig struct {
	Type     string         `json:"type"`
	Args     []any          `json:"args"`
	Settings map[string]any `json:"settings"`
	Alias    string         `json:"alias"`
}

// RegistryConfig tunes the registry runtime.
type RegistryConfig struct {
	// CaseFold makes type ids case-insensitive.
	CaseFold bool `json:"case_fold"`
	// EventBuffer is the per-subscriber capacity of the lifecycle event bus.
	EventBuffer int `json:"event_buffer"`
	// Preload lists instances to create at startup.
	Preload []InstanceConfig `json:"preload"`
}

// SetDefaults applies sane defaults.
func (c *RegistryConfig) SetDefaults() {
	if c.EventBuffer == 0 {
		c.EventBuffer = 64
	}
}

// Validate checks mandatory fields.
func (c RegistryConfig) Validate() error {
	if c.EventBuffer < 0 {
		return fmt.Errorf("event_buffer must not be negative")
	}
	for i, p := range c.Preload {
		if p.Type == "" {
			return fmt.Errorf("preload[%d]: type is required", i)
		}
	}
	return nil
}
