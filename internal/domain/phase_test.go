package domain

import (
	"errors"
	"testing"
)

func TestPhaseValidate(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		wantErr  bool
	}{
		{"positive", 1200, false},
		{"zero", 0, false},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Phase{Name: "working", Duration: tt.duration}.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Fatalf("expected ErrInvalidDuration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSequencePreservesOrder(t *testing.T) {
	var seq Sequence
	if seq.Len() != 0 {
		t.Fatalf("zero sequence should be empty, got %d", seq.Len())
	}

	seq.Append(Phase{Name: "working", Duration: 3})
	seq.Append(Phase{Name: "resting", Duration: 2})
	seq.Append(Phase{Name: "broken", Duration: -5})

	if seq.Len() != 3 {
		t.Fatalf("expected 3 phases, got %d", seq.Len())
	}
	if seq.At(0).Name != "working" || seq.At(1).Name != "resting" {
		t.Fatalf("order not preserved: %+v", seq.Phases())
	}
	if seq.Total() != 5 {
		t.Fatalf("expected total 5, got %d", seq.Total())
	}

	// Phases returns a copy.
	phases := seq.Phases()
	phases[0].Name = "mutated"
	if seq.At(0).Name != "working" {
		t.Fatal("Phases() leaked the underlying slice")
	}
}

func TestExitSignalCode(t *testing.T) {
	tests := []struct {
		sig  ExitSignal
		want int
	}{
		{ExitNormalCompletion, 0},
		{ExitUserQuit, 0},
		{ExitInterrupted, 0},
		{ExitFault, 1},
	}
	for _, tt := range tests {
		t.Run(tt.sig.String(), func(t *testing.T) {
			if got := tt.sig.Code(); got != tt.want {
				t.Fatalf("Code() = %d, want %d", got, tt.want)
			}
		})
	}
}
