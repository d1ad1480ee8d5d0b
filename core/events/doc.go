// Package events defines the registry lifecycle events emitted on the event bus.
//
// Available event types:
//   - ConstructedEvent: a constructor ran on a cache miss (successfully or not)
//   - AliasedEvent: an instance was published under an alias
//   - FreedEvent: an instance was removed from every key it was stored under
package events
