package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	parking "campus-parking/internal/parking/domain"
)

// DefaultHourlyRate is the documented fallback applied on the
// sensor-driven exit path when the zone rate lookup is unavailable.
const DefaultHourlyRate int64 = 5000

const defaultStoreTimeout = 5 * time.Second

// Report is one raw occupancy report from a physical sensor.
// UserID is empty for sensor-originated reports; a caller-supplied user
// is attached to the session opened by an entry transition.
type Report struct {
	SensorID  string
	Status    string
	Timestamp time.Time
	UserID    string
}

// EventPublisher emits domain events after a report commits.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Processor derives slot transitions and session lifecycle from sensor
// reports. It is the only component with side effects on the stores.
type Processor struct {
	slots     parking.SlotStore
	sessions  parking.SessionStore
	rates     parking.ZoneRates
	atomic    parking.Atomic
	publisher EventPublisher
	logger    *log.Logger
	clock     Clock

	fallbackRate int64
	storeTimeout time.Duration

	locks slotLocks
}

// ProcessorOption configures the processor.
type ProcessorOption func(*Processor)

// WithPublisher sets the event publisher.
func WithPublisher(publisher EventPublisher) ProcessorOption {
	return func(p *Processor) { p.publisher = publisher }
}

// WithClock overrides the clock.
func WithClock(clock Clock) ProcessorOption {
	return func(p *Processor) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithFallbackRate overrides the default hourly rate fallback.
func WithFallbackRate(rate int64) ProcessorOption {
	return func(p *Processor) {
		if rate > 0 {
			p.fallbackRate = rate
		}
	}
}

// WithStoreTimeout bounds each report's store work.
func WithStoreTimeout(timeout time.Duration) ProcessorOption {
	return func(p *Processor) {
		if timeout > 0 {
			p.storeTimeout = timeout
		}
	}
}

// NewProcessor constructs a processor.
func NewProcessor(
	slots parking.SlotStore,
	sessions parking.SessionStore,
	rates parking.ZoneRates,
	atomic parking.Atomic,
	logger *log.Logger,
	opts ...ProcessorOption,
) (*Processor, error) {
	if slots == nil {
		return nil, errors.New("processor: nil slot store")
	}
	if sessions == nil {
		return nil, errors.New("processor: nil session store")
	}
	if rates == nil {
		return nil, errors.New("processor: nil zone rates")
	}
	if atomic == nil {
		return nil, errors.New("processor: nil atomic runner")
	}
	if logger == nil {
		logger = log.Default()
	}

	p := &Processor{
		slots:        slots,
		sessions:     sessions,
		rates:        rates,
		atomic:       atomic,
		logger:       logger,
		clock:        SystemClock{},
		fallbackRate: DefaultHourlyRate,
		storeTimeout: defaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProcessReport applies one sensor report: it normalizes the status,
// resolves the slot, applies the transition rule and mutates the stores
// as a single unit. Reports for the same slot are serialized; different
// slots proceed in parallel.
func (p *Processor) ProcessReport(ctx context.Context, report Report) (parking.TransitionResult, error) {
	var result parking.TransitionResult

	if report.SensorID == "" || report.Status == "" {
		return result, parking.ErrInvalidReport
	}
	status, err := parking.NormalizeStatus(report.Status)
	if err != nil {
		return result, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	slot, err := p.slots.FindBySensor(ctx, report.SensorID)
	if err != nil {
		return result, classifyStoreError(err)
	}

	unlock := p.locks.acquire(slot.ID)
	defer unlock()

	// Re-read under the slot lock: the transition decision depends on a
	// fresh previous status.
	slot, err = p.slots.FindBySensor(ctx, report.SensorID)
	if err != nil {
		return result, classifyStoreError(err)
	}

	now := p.clock.Now()
	reportedAt := report.Timestamp
	if reportedAt.IsZero() {
		reportedAt = now
	}

	previous := slot.Status
	result = parking.TransitionResult{
		SlotID:         slot.ID,
		PreviousStatus: previous,
		NewStatus:      status,
		Transition:     parking.TransitionNoChange,
	}

	var published []any

	err = p.atomic.InTx(ctx, func(ctx context.Context) error {
		if previous == status {
			// Idempotent no-op for status; the sensor heartbeat still
			// refreshes the last-seen timestamp.
			return p.slots.Touch(ctx, slot.ID, reportedAt)
		}

		if err := p.slots.UpdateStatus(ctx, slot.ID, status, reportedAt); err != nil {
			return err
		}
		published = append(published, SlotStatusChanged{
			SlotID:         slot.ID,
			PreviousStatus: previous,
			NewStatus:      status,
			OccurredAt:     now,
		})

		switch parking.Classify(previous, status) {
		case parking.TransitionEntry:
			session, err := p.sessions.Create(ctx, slot.ID, report.UserID, now)
			if err != nil {
				return err
			}
			result.Transition = parking.TransitionEntry
			result.Session = session
			published = append(published, SessionOpened{
				SessionID:  session.ID,
				SlotID:     slot.ID,
				EntryTime:  session.EntryTime,
				OccurredAt: now,
			})

		case parking.TransitionExit:
			session, err := p.sessions.FindActiveBySlot(ctx, slot.ID)
			if err != nil {
				return err
			}
			if session == nil {
				// A session may have been closed out of band. Tolerated,
				// not fatal.
				p.logger.Printf("dangling exit: slot=%s sensor=%s has no active session", slot.ID, report.SensorID)
				return nil
			}

			rate, err := p.rates.HourlyRateForSlot(ctx, slot.ID)
			if err != nil {
				p.logger.Printf("zone rate lookup failed for slot=%s, using fallback %d: %v", slot.ID, p.fallbackRate, err)
				rate = p.fallbackRate
			}

			// Sensors carry no user identity; anonymous exits bill at the
			// visitor rate.
			fee, err := parking.CalculateFee(session.EntryTime, reportedAt, rate, parking.RoleVisitor)
			if err != nil {
				return err
			}
			closed, err := p.sessions.Close(ctx, session.ID, reportedAt, fee.TotalFee)
			if err != nil {
				return err
			}
			result.Transition = parking.TransitionExit
			result.Session = closed
			result.Fee = &fee
			published = append(published, SessionClosed{
				SessionID:  closed.ID,
				SlotID:     slot.ID,
				EntryTime:  closed.EntryTime,
				ExitTime:   reportedAt,
				Fee:        fee,
				OccurredAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return parking.TransitionResult{}, classifyStoreError(err)
	}

	if p.publisher != nil {
		for _, event := range published {
			if err := p.publisher.Publish(ctx, event); err != nil {
				p.logger.Printf("event publish failed: %v", err)
			}
		}
	}
	return result, nil
}

var terminalErrors = []error{
	parking.ErrInvalidReport,
	parking.ErrInvalidStatus,
	parking.ErrUnknownSensor,
	parking.ErrInvalidInterval,
	parking.ErrSlotNotFound,
	parking.ErrSessionNotFound,
	parking.ErrSessionClosed,
	parking.ErrActiveSessionExists,
	parking.ErrEmptySensorID,
}

// classifyStoreError keeps terminal domain errors as-is and marks
// everything else (timeouts, unreachable stores) transient.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, terminal := range terminalErrors {
		if errors.Is(err, terminal) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", parking.ErrStoreUnavailable, err)
}

// slotLocks serializes reports per slot.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *slotLocks) acquire(slotID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := l.locks[slotID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[slotID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
