package parking

// Zone is a named group of slots sharing an hourly rate.
type Zone struct {
	ID         string
	Name       string
	HourlyRate int64
}

// Validate checks zone invariants.
func (z Zone) Validate() error {
	if z.ID == "" {
		return ErrEmptyZoneID
	}
	if z.HourlyRate < 0 {
		return ErrNegativeRate
	}
	return nil
}
