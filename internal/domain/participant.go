package domain

import "errors"

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// ParticipantChoices is what the user picked on the pre-join screen.
// Immutable once submitted for a given join attempt.
type ParticipantChoices struct {
	Username      string `json:"username"`
	VideoEnabled  bool   `json:"video"`
	AudioEnabled  bool   `json:"audio"`
	VideoDeviceID string `json:"video_device"`
	AudioDeviceID string `json:"audio_device"`
}

// NewParticipantChoices avoids raw literals in adapters and keeps
// construction obvious.
func NewParticipantChoices(username string, video, audio bool) (ParticipantChoices, error) {
	if len(username) == 0 {
		return ParticipantChoices{}, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ParticipantChoices{}, ErrUsernameTooLong
	}
	return ParticipantChoices{
		Username:     username,
		VideoEnabled: video,
		AudioEnabled: audio,
	}, nil
}
