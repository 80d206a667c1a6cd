// Package render maps an activities snapshot to what the front-ends display.
//
// Render is pure: the same snapshot always yields the same View, and a View
// always replaces whatever was displayed before it.
package render

import (
	"activities-cli/internal/model"
)

const (
	FailureNotice     = "Failed to load activities. Please try again later."
	NoParticipants    = "No participants yet"
	SelectPlaceholder = "-- Select an activity --"
)

type ActionKind string

const ActionUnregister ActionKind = "unregister"

// Action is an opaque descriptor attached to a rendered control. Front-ends
// interpret descriptors through one delegated handler instead of binding a
// handler per element.
type Action struct {
	Kind        ActionKind `json:"kind"`
	Activity    string     `json:"activity"`
	Participant string     `json:"participant"`
}

// Prompt is the confirmation text shown before the action runs.
func (a Action) Prompt() string {
	return "Unregister " + a.Participant + " from " + a.Activity + "?"
}

type Row struct {
	Participant string `json:"participant"`
	Action      Action `json:"action"`
}

type Card struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
	// SpotsLeft is max_participants - len(participants), never clamped.
	SpotsLeft      int   `json:"spotsLeft"`
	Rows           []Row `json:"rows"`
	NoParticipants bool  `json:"noParticipants"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type View struct {
	Cards   []Card   `json:"cards"`
	Options []Option `json:"options"`
	// Notice replaces (or, when Stale, accompanies) the card list.
	Notice string `json:"notice,omitempty"`
	// Stale marks cards/options kept from an earlier successful load.
	Stale bool `json:"stale,omitempty"`
}

func Render(snap model.Snapshot) View {
	acts := snap.Activities()
	v := View{
		Cards:   make([]Card, 0, len(acts)),
		Options: make([]Option, 0, len(acts)),
	}
	for _, a := range acts {
		c := Card{
			Name:           a.Name,
			Description:    a.Description,
			Schedule:       a.Schedule,
			SpotsLeft:      a.SpotsLeft(),
			NoParticipants: len(a.Participants) == 0,
		}
		for _, p := range a.Participants {
			c.Rows = append(c.Rows, Row{
				Participant: p,
				Action:      Action{Kind: ActionUnregister, Activity: a.Name, Participant: p},
			})
		}
		v.Cards = append(v.Cards, c)
		v.Options = append(v.Options, Option{Value: a.Name, Label: a.Name})
	}
	return v
}

// Failed is the view for a snapshot that could not be obtained: a single
// notice and an unpopulated selection control.
func Failed() View {
	return View{Notice: FailureNotice}
}

// Actions flattens every row's descriptor in display order.
func (v View) Actions() []Action {
	var out []Action
	for _, c := range v.Cards {
		for _, r := range c.Rows {
			out = append(out, r.Action)
		}
	}
	return out
}

func (v View) HasOption(value string) bool {
	for _, o := range v.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}
