package model

import "testing"

func TestModelString(t *testing.T) {
	tests := []struct {
		model Model
		want  string
	}{
		{Room, "Room"},
		{Microphone, "Microphone"},
		{ButtonLEDEvent, "ButtonLED_Event"},
		{Video, "Video"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.model.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	all := All()

	if len(all) != 14 {
		t.Errorf("All() has %d models, want 14", len(all))
	}

	seen := make(map[Model]bool)
	for _, m := range all {
		if seen[m] {
			t.Errorf("All() contains duplicate %q", m)
		}
		seen[m] = true
	}
}

func TestNames(t *testing.T) {
	names := Names([]Model{Room, Voting})

	if len(names) != 2 || names[0] != "Room" || names[1] != "Voting" {
		t.Errorf("Names() = %v, want [Room Voting]", names)
	}
}
