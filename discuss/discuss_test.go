package discuss

import (
	"errors"
	"testing"
)

func TestModeRounds(t *testing.T) {
	if got := ModeSimple.Rounds(); got != 1 {
		t.Errorf("simple rounds = %d, want 1", got)
	}
	if got := ModeDeep.Rounds(); got != 3 {
		t.Errorf("deep rounds = %d, want 3", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"simple", ModeSimple, false},
		{"deep", ModeDeep, false},
		{"", "", true},
		{"DEEP", "", true},
		{"thorough", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRound_AddAndClose(t *testing.T) {
	round := NewRound(0)

	if err := round.Add(Response{Provider: "alpha", Status: StatusOK, Content: "a"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := round.Add(Response{Provider: "alpha", Status: StatusError}); !errors.Is(err, ErrDuplicateResponse) {
		t.Errorf("duplicate Add err = %v, want ErrDuplicateResponse", err)
	}

	round.Close()
	if !round.Closed() {
		t.Error("Closed() = false after Close")
	}
	if err := round.Add(Response{Provider: "beta"}); !errors.Is(err, ErrRoundClosed) {
		t.Errorf("Add after Close err = %v, want ErrRoundClosed", err)
	}
}

func TestRound_ResponsesSortedByProvider(t *testing.T) {
	round := NewRound(1)
	for _, name := range []string{"gamma", "alpha", "beta"} {
		if err := round.Add(Response{Provider: name, Status: StatusOK}); err != nil {
			t.Fatalf("Add(%s) failed: %v", name, err)
		}
	}

	got := round.Responses()
	want := []string{"alpha", "beta", "gamma"}
	for i, resp := range got {
		if resp.Provider != want[i] {
			t.Fatalf("Responses()[%d] = %q, want %q", i, resp.Provider, want[i])
		}
	}
}

func TestRound_CountOK(t *testing.T) {
	round := NewRound(0)
	_ = round.Add(Response{Provider: "alpha", Status: StatusOK})
	_ = round.Add(Response{Provider: "beta", Status: StatusTimeout})
	_ = round.Add(Response{Provider: "gamma", Status: StatusError})
	_ = round.Add(Response{Provider: "delta", Status: StatusOK})

	if got := round.CountOK(); got != 2 {
		t.Errorf("CountOK() = %d, want 2", got)
	}
	if got := round.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
}

func TestDiscussion_RejectsOpenRounds(t *testing.T) {
	d := NewDiscussion("s1", ModeSimple)

	open := NewRound(0)
	if err := d.Append(open); !errors.Is(err, ErrRoundOpen) {
		t.Errorf("Append(open) err = %v, want ErrRoundOpen", err)
	}

	open.Close()
	if err := d.Append(open); err != nil {
		t.Errorf("Append(closed) err = %v, want nil", err)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

func TestDiscussion_Final(t *testing.T) {
	d := NewDiscussion("s1", ModeDeep)
	if d.Final() != nil {
		t.Error("Final() on empty discussion should be nil")
	}

	for i := 0; i < 3; i++ {
		r := NewRound(i)
		r.Close()
		if err := d.Append(r); err != nil {
			t.Fatalf("Append round %d failed: %v", i, err)
		}
	}

	if got := d.Final().Index(); got != 2 {
		t.Errorf("Final().Index() = %d, want 2", got)
	}
	if d.RoundAt(5) != nil {
		t.Error("RoundAt(5) should be nil")
	}
}

func TestQuorumError_Message(t *testing.T) {
	err := &QuorumError{
		Round: 0,
		Statuses: map[string]Status{
			"beta":  StatusTimeout,
			"alpha": StatusError,
		},
	}

	want := "quorum not met in round 0: alpha=error beta=timeout"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
