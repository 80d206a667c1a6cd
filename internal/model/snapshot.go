package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// Snapshot is one point-in-time view of the server's activities.
//
// Iteration order is the key order of the JSON object the server returned.
// A Snapshot is never patched; the next fetch replaces it wholesale.
type Snapshot struct {
	names  []string
	byName map[string]Activity
}

// NewSnapshot builds a snapshot in the given order. A repeated name keeps its
// first position and takes the last value.
func NewSnapshot(activities ...Activity) Snapshot {
	s := Snapshot{byName: make(map[string]Activity, len(activities))}
	for _, a := range activities {
		s.put(a)
	}
	return s
}

func (s *Snapshot) put(a Activity) {
	if s.byName == nil {
		s.byName = map[string]Activity{}
	}
	if _, ok := s.byName[a.Name]; !ok {
		s.names = append(s.names, a.Name)
	}
	s.byName[a.Name] = a
}

func (s Snapshot) Len() int { return len(s.names) }

func (s Snapshot) IsZero() bool { return s.byName == nil }

func (s Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s Snapshot) Get(name string) (Activity, bool) {
	a, ok := s.byName[name]
	return a, ok
}

func (s Snapshot) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Activities returns the activities in server order.
func (s Snapshot) Activities() []Activity {
	out := make([]Activity, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, s.byName[n])
	}
	return out
}

// wireActivity is the per-activity value of GET /activities (the name is the key).
type wireActivity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// MarshalJSON writes the same ordered object shape the server returns.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, n := range s.names {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		a := s.byName[n]
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		v, err := json.Marshal(wireActivity{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		})
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	decoded, err := DecodeSnapshot(b)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

var ErrNotObject = errors.New("activities payload is not a JSON object")

// DecodeSnapshot parses a GET /activities body, keeping the server's key order.
func DecodeSnapshot(body []byte) (Snapshot, error) {
	if !gjson.ValidBytes(body) {
		return Snapshot{}, errors.New("activities payload is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Snapshot{}, ErrNotObject
	}

	s := Snapshot{byName: map[string]Activity{}}
	var decodeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		a, err := decodeActivity(key.String(), value)
		if err != nil {
			decodeErr = err
			return false
		}
		s.put(a)
		return true
	})
	if decodeErr != nil {
		return Snapshot{}, decodeErr
	}
	return s, nil
}

func decodeActivity(name string, v gjson.Result) (Activity, error) {
	if !v.IsObject() {
		return Activity{}, fmt.Errorf("activity %q: expected object", name)
	}
	a := Activity{Name: name, Participants: []string{}}

	var err error
	if a.Description, err = optionalString(v, "description"); err != nil {
		return Activity{}, fmt.Errorf("activity %q: %w", name, err)
	}
	if a.Schedule, err = optionalString(v, "schedule"); err != nil {
		return Activity{}, fmt.Errorf("activity %q: %w", name, err)
	}

	maxp := v.Get("max_participants")
	if maxp.Type != gjson.Number {
		return Activity{}, fmt.Errorf("activity %q: max_participants must be a number", name)
	}
	if maxp.Num < 0 || maxp.Num != math.Trunc(maxp.Num) || maxp.Num > math.MaxInt32 {
		return Activity{}, fmt.Errorf("activity %q: max_participants must be a non-negative integer", name)
	}
	a.MaxParticipants = int(maxp.Num)

	parts := v.Get("participants")
	switch {
	case !parts.Exists() || parts.Type == gjson.Null:
	case parts.IsArray():
		for _, p := range parts.Array() {
			if p.Type != gjson.String {
				return Activity{}, fmt.Errorf("activity %q: participants must be strings", name)
			}
			a.Participants = append(a.Participants, p.String())
		}
	default:
		return Activity{}, fmt.Errorf("activity %q: participants must be an array", name)
	}
	return a, nil
}

func optionalString(v gjson.Result, field string) (string, error) {
	f := v.Get(field)
	if !f.Exists() || f.Type == gjson.Null {
		return "", nil
	}
	if f.Type != gjson.String {
		return "", fmt.Errorf("%s must be a string", field)
	}
	return f.String(), nil
}
