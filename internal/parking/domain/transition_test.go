package parking

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		previous SlotStatus
		next     SlotStatus
		want     Transition
	}{
		{StatusFree, StatusOccupied, TransitionEntry},
		{StatusOccupied, StatusFree, TransitionExit},
		{StatusFree, StatusFree, TransitionNoChange},
		{StatusOccupied, StatusOccupied, TransitionNoChange},
		{StatusUnknown, StatusOccupied, TransitionNoChange},
		{StatusUnknown, StatusFree, TransitionNoChange},
		{StatusFree, StatusUnknown, TransitionNoChange},
		{StatusOccupied, StatusUnknown, TransitionNoChange},
	}
	for _, tc := range cases {
		if got := Classify(tc.previous, tc.next); got != tc.want {
			t.Errorf("classify(%s, %s)=%s, want %s", tc.previous, tc.next, got, tc.want)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	for raw, want := range map[string]SlotStatus{
		"free":     StatusFree,
		"OCCUPIED": StatusOccupied,
		" Unknown ": StatusUnknown,
	} {
		got, err := NormalizeStatus(raw)
		if err != nil {
			t.Fatalf("normalize %q: %v", raw, err)
		}
		if got != want {
			t.Errorf("normalize(%q)=%s, want %s", raw, got, want)
		}
	}

	if _, err := NormalizeStatus("vacant"); err == nil {
		t.Fatal("expected error for unrecognized status")
	}
}
