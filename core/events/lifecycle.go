package events

import "time"

// ConstructedEvent is published each time the registry invokes a constructor.
// Err is set when construction failed and nothing was stored.
type ConstructedEvent struct {
	TypeID   string
	Kind     string
	Key      string
	Duration time.Duration
	Err      error
}

// AliasedEvent is published when an instance is bound to an alias key.
type AliasedEvent struct {
	TypeID string
	Alias  string
	Key    string
	// Replaced reports whether the alias key was already bound.
	Replaced bool
}

// FreedEvent is published by Free. Removed is the number of keys dropped and
// may be zero.
type FreedEvent struct {
	Removed int
}
