package model

import "time"

// Activity is one entry of the server's activity list.
//
// len(Participants) <= MaxParticipants is what the server promises, but nothing
// on this side enforces it.
type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft may be negative when the server reports an over-full roster.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

func (a Activity) HasParticipant(id string) bool {
	for _, p := range a.Participants {
		if p == id {
			return true
		}
	}
	return false
}

type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// Feedback is the transient message shown after a mutation attempt.
type Feedback struct {
	Text string       `json:"text"`
	Kind FeedbackKind `json:"kind"`
	// TTL is how long the message stays visible before it is hidden automatically.
	TTL time.Duration `json:"ttl"`
}

func (f Feedback) IsError() bool { return f.Kind == FeedbackError }

func (f Feedback) IsZero() bool { return f.Text == "" && f.Kind == "" }
