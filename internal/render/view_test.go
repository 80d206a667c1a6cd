package render

import (
	"testing"

	"activities-cli/internal/model"
)

func sampleSnapshot() model.Snapshot {
	return model.NewSnapshot(
		model.Activity{Name: "Chess Club", Description: "Strategy", Schedule: "Fridays", MaxParticipants: 12,
			Participants: []string{"michael@mergington.edu", "daniel@mergington.edu"}},
		model.Activity{Name: "Gym Class", Description: "Sports", Schedule: "Mondays", MaxParticipants: 30},
		model.Activity{Name: "Tiny Club", MaxParticipants: 1,
			Participants: []string{"a@x", "b@x", "c@x"}},
	)
}

func TestRender_AvailabilityIsMaxMinusParticipants(t *testing.T) {
	v := Render(sampleSnapshot())
	want := map[string]int{"Chess Club": 10, "Gym Class": 30, "Tiny Club": -2}
	for _, c := range v.Cards {
		if c.SpotsLeft != want[c.Name] {
			t.Fatalf("%s: expected %d spots left, got %d", c.Name, want[c.Name], c.SpotsLeft)
		}
	}
}

func TestRender_RowsCarryActivityAndParticipant(t *testing.T) {
	v := Render(sampleSnapshot())

	gym := v.Cards[1]
	if !gym.NoParticipants || len(gym.Rows) != 0 {
		t.Fatalf("expected placeholder and no rows for gym, got %+v", gym)
	}

	chess := v.Cards[0]
	if chess.NoParticipants || len(chess.Rows) != 2 {
		t.Fatalf("expected 2 rows for chess, got %+v", chess)
	}
	for i, p := range []string{"michael@mergington.edu", "daniel@mergington.edu"} {
		a := chess.Rows[i].Action
		if a.Kind != ActionUnregister || a.Activity != "Chess Club" || a.Participant != p {
			t.Fatalf("row %d: unexpected action %+v", i, a)
		}
	}
	if got := len(v.Actions()); got != 5 {
		t.Fatalf("expected 5 actions overall, got %d", got)
	}
}

func TestRender_OptionsFollowServerOrder(t *testing.T) {
	v := Render(sampleSnapshot())
	if len(v.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(v.Options))
	}
	for i, name := range []string{"Chess Club", "Gym Class", "Tiny Club"} {
		if v.Options[i].Value != name || v.Options[i].Label != name {
			t.Fatalf("option %d: unexpected %+v", i, v.Options[i])
		}
	}
}

func TestFailed_HasNoticeAndNoOptions(t *testing.T) {
	v := Failed()
	if v.Notice != FailureNotice || len(v.Options) != 0 || len(v.Cards) != 0 {
		t.Fatalf("unexpected failed view %+v", v)
	}
}

func TestAction_PromptIncludesParticipantAndActivity(t *testing.T) {
	a := Action{Kind: ActionUnregister, Activity: "Chess Club", Participant: "ada@example.com"}
	if got := a.Prompt(); got != "Unregister ada@example.com from Chess Club?" {
		t.Fatalf("unexpected prompt %q", got)
	}
}

func TestEscapeHTML_RoundTrip(t *testing.T) {
	in := `<script>alert("x" & 'y')</script>`
	esc := EscapeHTML(in)
	want := "&lt;script&gt;alert(&quot;x&quot; &amp; &#039;y&#039;)&lt;/script&gt;"
	if esc != want {
		t.Fatalf("unexpected escape %q", esc)
	}
	if back := UnescapeHTML(esc); back != in {
		t.Fatalf("round trip mismatch %q", back)
	}
	if back := UnescapeHTML(EscapeHTML("&lt;")); back != "&lt;" {
		t.Fatalf("expected literal entity to survive, got %q", back)
	}
}
