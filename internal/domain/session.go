// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxSessionNameLen = 64

var (
	ErrSessionNameEmpty   = errors.New("session name empty")
	ErrSessionNameTooLong = errors.New("session name too long")
)

type SessionName string

// Codec is the preferred video codec for the media room.
type Codec string

const (
	CodecVP8  Codec = "vp8"
	CodecVP9  Codec = "vp9"
	CodecH264 Codec = "h264"
	CodecAV1  Codec = "av1"
)

// QualityTier selects capture resolution and simulcast layers.
type QualityTier string

const (
	QualityStandard QualityTier = "standard"
	QualityHigh     QualityTier = "high"
)

// Session identifies one joinable huddle: a media room plus a shared
// document under the same name. Created on join request, destroyed on
// leave/disconnect.
type Session struct {
	Name    SessionName
	Region  string
	Quality QualityTier
	Codec   Codec
	// Passphrase is the shared secret the encryption key is derived from.
	// Empty when the caller did not request end-to-end encryption.
	Passphrase string
}

// NewSession validates the name and fills tier defaults.
func NewSession(name string) (*Session, error) {
	if len(name) == 0 {
		return nil, ErrSessionNameEmpty
	}
	if len(name) > MaxSessionNameLen {
		return nil, ErrSessionNameTooLong
	}
	return &Session{
		Name:    SessionName(name),
		Quality: QualityStandard,
		Codec:   CodecVP9,
	}, nil
}
