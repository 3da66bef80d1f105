package core

import "github.com/huddle-dev/huddle/internal/domain"

// TextDelta is one mutation of the shared text. Origin tags the binding
// that produced a local edit so it can suppress its own echo; remote
// deltas carry the replication provider's participant id.
type TextDelta struct {
	Origin string `json:"origin"`
	Index  int    `json:"index"`
	Insert string `json:"insert,omitempty"`
	Delete int    `json:"delete,omitempty"`
}

// SharedText is the replicated, order-preserving document body. Deltas
// are applied in the provider's delivered order; consumers never reorder
// them.
type SharedText interface {
	Apply(d TextDelta) error
	Snapshot() string
	OnUpdate(fn func(TextDelta)) Unsubscribe
}

// AwarenessState is ephemeral per-participant metadata, superseded on
// every update and garbage-collected on disconnect.
type AwarenessState struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Cursor   int    `json:"cursor"`
	SelStart int    `json:"sel_start"`
	SelEnd   int    `json:"sel_end"`
}

// AwarenessChannel broadcasts local presence and delivers remote updates.
// A nil state in OnUpdate means the participant disconnected and its
// entry was collected.
type AwarenessChannel interface {
	Publish(st AwarenessState) error
	OnUpdate(fn func(participant string, st *AwarenessState)) Unsubscribe
}

// DocProvider hands out the shared structures for a session id. Both are
// scoped to the session and referenced, never copied.
type DocProvider interface {
	Text(session domain.SessionName) SharedText
	Awareness(session domain.SessionName) AwarenessChannel
}
