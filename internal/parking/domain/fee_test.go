package parking

import (
	"errors"
	"testing"
	"time"
)

func TestCalculateFee(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(hour, min int) time.Time {
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
	}

	cases := []struct {
		name     string
		entry    time.Time
		exit     time.Time
		rate     int64
		role     string
		duration int
		base     int64
		total    int64
		discount int64
	}{
		{
			name:  "short student stay rounds up to one hour",
			entry: at(10, 0), exit: at(10, 5), rate: 5000, role: RoleStudent,
			duration: 1, base: 5000, total: 5000, discount: 0,
		},
		{
			name:  "faculty half rate over three and a half hours",
			entry: at(10, 0), exit: at(13, 30), rate: 5000, role: RoleFaculty,
			duration: 4, base: 20000, total: 10000, discount: 10000,
		},
		{
			name:  "visitor surcharge yields negative discount",
			entry: at(10, 0), exit: at(10, 30), rate: 5000, role: RoleVisitor,
			duration: 1, base: 5000, total: 6000, discount: -1000,
		},
		{
			name:  "staff multiplier rounds to nearest",
			entry: at(8, 0), exit: at(11, 0), rate: 3000, role: RoleStaff,
			duration: 3, base: 9000, total: 6300, discount: 2700,
		},
		{
			name:  "unknown role falls back to full rate",
			entry: at(9, 0), exit: at(10, 0), rate: 5000, role: "janitor",
			duration: 1, base: 5000, total: 5000, discount: 0,
		},
		{
			name:  "zero duration still bills one hour",
			entry: at(12, 0), exit: at(12, 0), rate: 5000, role: RoleStudent,
			duration: 1, base: 5000, total: 5000, discount: 0,
		},
		{
			name:  "exact hour boundary does not round up",
			entry: at(10, 0), exit: at(12, 0), rate: 5000, role: RoleStudent,
			duration: 2, base: 10000, total: 10000, discount: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, err := CalculateFee(tc.entry, tc.exit, tc.rate, tc.role)
			if err != nil {
				t.Fatalf("calculate fee: %v", err)
			}
			if fee.DurationHours != tc.duration {
				t.Errorf("duration=%d, want %d", fee.DurationHours, tc.duration)
			}
			if fee.BaseFee != tc.base {
				t.Errorf("base=%d, want %d", fee.BaseFee, tc.base)
			}
			if fee.TotalFee != tc.total {
				t.Errorf("total=%d, want %d", fee.TotalFee, tc.total)
			}
			if fee.Discount != tc.discount {
				t.Errorf("discount=%d, want %d", fee.Discount, tc.discount)
			}
		})
	}
}

func TestCalculateFeeRejectsExitBeforeEntry(t *testing.T) {
	entry := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(-time.Minute)
	_, err := CalculateFee(entry, exit, 5000, RoleStudent)
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestCalculateFeeRejectsNegativeRate(t *testing.T) {
	entry := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	_, err := CalculateFee(entry, entry.Add(time.Hour), -1, RoleStudent)
	if !errors.Is(err, ErrNegativeRate) {
		t.Fatalf("expected ErrNegativeRate, got %v", err)
	}
}

func TestRoleMultiplier(t *testing.T) {
	cases := map[string]float64{
		RoleStudent: 1.0,
		RoleFaculty: 0.5,
		RoleStaff:   0.7,
		RoleVisitor: 1.2,
		"":          1.0,
		"unknown":   1.0,
	}
	for role, want := range cases {
		if got := RoleMultiplier(role); got != want {
			t.Errorf("multiplier(%q)=%v, want %v", role, got, want)
		}
	}
}
