package core

import "github.com/huddle-dev/huddle/internal/domain"

// EditOp is one local-surface mutation, index-based over the current
// surface content.
type EditOp struct {
	Index  int    `json:"index"`
	Insert string `json:"insert,omitempty"`
	Delete int    `json:"delete,omitempty"`
}

type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Marker is a labeled remote cursor rendered on the surface.
type Marker struct {
	Participant string `json:"participant"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Cursor      int    `json:"cursor"`
	SelStart    int    `json:"sel_start"`
	SelEnd      int    `json:"sel_end"`
}

// EditorSurface is the locally-editable text surface the bridge binds to.
// ApplyRemote must not re-trigger the OnEdit handler (the bridge also
// guards against that on its side).
type EditorSurface interface {
	ApplyRemote(op EditOp) error
	OnEdit(fn func(EditOp)) Unsubscribe
	OnSelection(fn func(Selection)) Unsubscribe

	SetMarker(participant string, m Marker)
	ClearMarker(participant string)

	// SetLanguage switches the surface's language mode. Local, unsynced
	// UI concern; it never touches the replica.
	SetLanguage(lang domain.Language)
}
