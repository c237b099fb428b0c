package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/platform/lock"
)

// ErrScreeningNotFound is returned when a booking references a screening
// that does not exist. The screening adapter translates its own
// not-found error into this one.
var ErrScreeningNotFound = errors.New("screening not found")

// ScreeningDirectory resolves screening links during booking. Implemented
// by an adapter over the screening service.
type ScreeningDirectory interface {
	// StudentForScreening returns the student the screening belongs to,
	// or ErrScreeningNotFound.
	StudentForScreening(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	// MarkConverted flips the screening's workflow status once a booking
	// succeeded. Failures here do not undo the booking.
	MarkConverted(ctx context.Context, id uuid.UUID) error
}

// BookRequest carries a booking. Exactly one of ScreeningID or StudentID
// must be set: via screening when converting a triage case, via student
// for a walk-in or follow-up.
type BookRequest struct {
	ScreeningID     *uuid.UUID
	StudentID       *uuid.UUID
	StartsAt        time.Time
	DurationMinutes int
	Professional    string
	Channel         string
	Note            *string
}

// LinkUpdate reports the post-booking screening status flip. The flip is
// best effort: a booking whose screening update failed is still booked.
type LinkUpdate struct {
	Attempted   bool       `json:"attempted"`
	ScreeningID *uuid.UUID `json:"screening_id,omitempty"`
	Failed      bool       `json:"failed,omitempty"`
}

// BookResult is the outcome of a successful booking.
type BookResult struct {
	Appointment     *Appointment `json:"appointment"`
	ScreeningUpdate LinkUpdate   `json:"screening_update"`
}

// Patch carries a partial appointment update. Nil fields keep their
// current value.
type Patch struct {
	StartsAt        *time.Time
	DurationMinutes *int
	Professional    *string
	Channel         *string
	Note            *string
}

type Service struct {
	repo       Repository
	screenings ScreeningDirectory
	window     ServiceWindow
	locker     lock.Locker
	initial    Status
	log        zerolog.Logger
}

// NewService wires the scheduling engine. When autoConfirm is set new
// bookings start CONFIRMED, otherwise PENDING awaiting confirmation.
func NewService(repo Repository, screenings ScreeningDirectory, window ServiceWindow, locker lock.Locker, autoConfirm bool, log zerolog.Logger) *Service {
	initial := StatusPending
	if autoConfirm {
		initial = StatusConfirmed
	}
	if locker == nil {
		locker = lock.Noop{}
	}
	return &Service{
		repo:       repo,
		screenings: screenings,
		window:     window,
		locker:     locker,
		initial:    initial,
		log:        log,
	}
}

// Window exposes the configured service window, mainly for handlers that
// describe booking constraints to clients.
func (s *Service) Window() ServiceWindow { return s.window }

// Book places an appointment: resolves the student link, fits the slot
// into the service window, and atomically checks for conflicts before
// inserting. On success the linked screening, if any, is marked
// converted.
func (s *Service) Book(ctx context.Context, req BookRequest) (*BookResult, error) {
	req.Professional = strings.TrimSpace(req.Professional)
	if req.Professional == "" {
		return nil, fmt.Errorf("professional is required")
	}
	if req.Channel = strings.TrimSpace(req.Channel); req.Channel == "" {
		req.Channel = "ONLINE"
	}
	if (req.ScreeningID == nil) == (req.StudentID == nil) {
		return nil, ErrLinkAmbiguous
	}

	var studentID uuid.UUID
	if req.ScreeningID != nil {
		sid, err := s.screenings.StudentForScreening(ctx, *req.ScreeningID)
		if err != nil {
			return nil, err
		}
		studentID = sid
	} else {
		studentID = *req.StudentID
	}

	start, end, duration, err := s.window.Resolve(req.StartsAt, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		ScreeningID:     req.ScreeningID,
		StudentID:       studentID,
		StartsAt:        start,
		EndsAt:          end,
		DurationMinutes: duration,
		Professional:    req.Professional,
		Channel:         req.Channel,
		Status:          s.initial,
		Note:            req.Note,
	}

	err = s.locker.WithProfessionalLock(ctx, a.Professional, func(ctx context.Context) error {
		return s.repo.CreateChecked(ctx, a)
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrProfessionalBusy
		}
		return nil, err
	}

	result := &BookResult{Appointment: a}
	if req.ScreeningID != nil {
		result.ScreeningUpdate = LinkUpdate{Attempted: true, ScreeningID: req.ScreeningID}
		if err := s.screenings.MarkConverted(ctx, *req.ScreeningID); err != nil {
			// The appointment stands; the queue entry just needs a
			// manual status fix.
			result.ScreeningUpdate.Failed = true
			s.log.Warn().Err(err).
				Str("appointment_id", a.ID.String()).
				Str("screening_id", req.ScreeningID.String()).
				Msg("booked but failed to mark screening converted")
		}
	}
	return result, nil
}

// Reschedule applies a partial update. When the slot itself changes the
// new slot goes through the same window and conflict checks as a fresh
// booking, with the appointment excluded from its own overlap scan.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, p Patch) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, &InvalidTransitionError{From: a.Status, To: a.Status}
	}

	slotChanged := p.StartsAt != nil || p.DurationMinutes != nil || p.Professional != nil
	if p.StartsAt != nil {
		a.StartsAt = *p.StartsAt
	}
	if p.DurationMinutes != nil {
		a.DurationMinutes = *p.DurationMinutes
	}
	if p.Professional != nil {
		prof := strings.TrimSpace(*p.Professional)
		if prof == "" {
			return nil, fmt.Errorf("professional must not be blank")
		}
		a.Professional = prof
	}
	if p.Channel != nil {
		a.Channel = *p.Channel
	}
	if p.Note != nil {
		a.Note = p.Note
	}

	if !slotChanged {
		if err := s.repo.Update(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}

	start, end, duration, err := s.window.Resolve(a.StartsAt, a.DurationMinutes)
	if err != nil {
		return nil, err
	}
	a.StartsAt, a.EndsAt, a.DurationMinutes = start, end, duration

	err = s.locker.WithProfessionalLock(ctx, a.Professional, func(ctx context.Context) error {
		return s.repo.RescheduleChecked(ctx, a)
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrProfessionalBusy
		}
		return nil, err
	}
	return a, nil
}

// SetStatus moves the appointment through its state machine.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransition(to) {
		return nil, &InvalidTransitionError{From: a.Status, To: to}
	}
	if err := s.repo.UpdateStatus(ctx, id, a.Status, to); err != nil {
		return nil, err
	}
	a.Status = to
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Appointment, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Availability returns the free booking-step slots of a professional's
// day, skipping intervals occupied by blocking appointments.
func (s *Service) Availability(ctx context.Context, professional string, day time.Time) ([]Interval, error) {
	local := day.In(s.window.Location)
	open := time.Date(local.Year(), local.Month(), local.Day(), s.window.OpenHour, 0, 0, 0, s.window.Location)
	closing := time.Date(local.Year(), local.Month(), local.Day(), s.window.CloseHour, 0, 0, 0, s.window.Location)

	busy, err := s.repo.FindOverlapping(ctx, professional,
		Interval{Start: open.UTC(), End: closing.UTC()}, nil, 0)
	if err != nil {
		return nil, err
	}

	step := time.Duration(s.window.StepMinutes) * time.Minute
	var free []Interval
	for cur := open; !cur.Add(step).After(closing); cur = cur.Add(step) {
		slot := Interval{Start: cur.UTC(), End: cur.Add(step).UTC()}
		blocked := false
		for _, b := range busy {
			if slot.Overlaps(b) {
				blocked = true
				break
			}
		}
		if !blocked {
			free = append(free, slot)
		}
	}
	return free, nil
}
