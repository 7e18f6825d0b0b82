package parking

import (
	"math"
	"time"
)

// Role multipliers. Faculty members receive a 50% discount, staff 30%,
// visitors pay a 20% surcharge. Unrecognized roles pay the standard rate.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleStaff   = "staff"
	RoleVisitor = "visitor"
)

var roleMultipliers = map[string]float64{
	RoleStudent: 1.0,
	RoleFaculty: 0.5,
	RoleStaff:   0.7,
	RoleVisitor: 1.2,
}

// RoleMultiplier returns the fee multiplier for a user role.
func RoleMultiplier(role string) float64 {
	if m, ok := roleMultipliers[role]; ok {
		return m
	}
	return 1.0
}

// FeeBreakdown is the computed duration, base fee, discount, and total
// fee for a closed session. Discount is a signed adjustment: negative
// values are a surcharge.
type FeeBreakdown struct {
	DurationHours int   `json:"durationHours"`
	BaseFee       int64 `json:"baseFee"`
	Discount      int64 `json:"discount"`
	TotalFee      int64 `json:"totalFee"`
}

// CalculateFee computes the parking fee for a stay. Duration is billed
// in whole hours rounded up with a minimum of one hour. This is the only
// place fee arithmetic happens.
func CalculateFee(entry, exit time.Time, hourlyRate int64, role string) (FeeBreakdown, error) {
	if exit.Before(entry) {
		return FeeBreakdown{}, ErrInvalidInterval
	}
	if hourlyRate < 0 {
		return FeeBreakdown{}, ErrNegativeRate
	}

	hours := int(math.Ceil(exit.Sub(entry).Hours()))
	if hours < 1 {
		hours = 1
	}

	baseFee := int64(hours) * hourlyRate
	totalFee := int64(math.Round(float64(baseFee) * RoleMultiplier(role)))

	return FeeBreakdown{
		DurationHours: hours,
		BaseFee:       baseFee,
		Discount:      baseFee - totalFee,
		TotalFee:      totalFee,
	}, nil
}
