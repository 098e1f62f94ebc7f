package availability

import (
	"context"
	"time"

	"inkbook/internal/domain"
	"inkbook/internal/pkg/timewindow"
)

type Service struct {
	rules    RuleRepository
	bookings BookingReader
}

func NewService(rules RuleRepository, bookings BookingReader) *Service {
	return &Service{rules: rules, bookings: bookings}
}

// maxSlotRangeDays bounds a single free-slot scan. One booking query
// runs per day, so the horizon must stay finite.
const maxSlotRangeDays = 90

// ComputeFreeSlots reconciles the artist's weekly rules, time off and
// existing confirmed/completed bookings over [from, to] (dates,
// inclusive) and returns the free windows of at least minDuration,
// sorted by date then start. Ranges beyond maxSlotRangeDays are
// clamped. PENDING holds do not block slots; the confirm transition
// performs the authoritative check.
func (s *Service) ComputeFreeSlots(ctx context.Context, artistID int64, from, to time.Time, minDuration time.Duration) ([]Slot, error) {
	if to.Before(from) || minDuration <= 0 {
		return nil, ErrValidation
	}

	rules, err := s.rules.ActiveRulesByArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	byDay := make(map[int][]domain.AvailabilityRule)
	for _, r := range rules {
		byDay[r.DayOfWeek] = append(byDay[r.DayOfWeek], r)
	}

	first := timewindow.DayStart(from)
	last := timewindow.DayStart(to)
	if horizon := first.AddDate(0, 0, maxSlotRangeDays-1); last.After(horizon) {
		last = horizon
	}

	timeOff, err := s.rules.TimeOffInRange(ctx, artistID, first, last)
	if err != nil {
		return nil, err
	}

	out := make([]Slot, 0)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		free, err := s.freeWindowsForDay(ctx, artistID, day, byDay[int(day.Weekday())], timeOff)
		if err != nil {
			return nil, err
		}
		for _, w := range timewindow.FilterMin(free, minDuration) {
			out = append(out, Slot{Date: day.Format("2006-01-02"), Start: w.Start, End: w.End})
		}
	}
	return out, nil
}

// freeWindowsForDay unions the day's rule windows and subtracts time
// off and occupied bookings. A day with no rules yields nothing
// regardless of time off.
func (s *Service) freeWindowsForDay(ctx context.Context, artistID int64, day time.Time, dayRules []domain.AvailabilityRule, timeOff []domain.TimeOff) ([]timewindow.Window, error) {
	if len(dayRules) == 0 {
		return nil, nil
	}

	open := make([]timewindow.Window, 0, len(dayRules))
	for _, r := range dayRules {
		w, err := ruleWindow(r, day)
		if err != nil {
			return nil, err
		}
		open = append(open, w)
	}

	busy := make([]timewindow.Window, 0)
	for _, t := range timeOff {
		if !t.CoversDate(day) {
			continue
		}
		if t.AllDay {
			return nil, nil
		}
		w, err := clockWindow(t.StartTime, t.EndTime, day)
		if err != nil {
			return nil, err
		}
		busy = append(busy, w)
	}

	dayEnd := day.AddDate(0, 0, 1)
	occupied, err := s.bookings.BusyWindows(ctx, artistID, day, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, b := range occupied {
		busy = append(busy, timewindow.Window{Start: b.Start, End: b.End})
	}

	return timewindow.Subtract(open, busy), nil
}

// CheckWindow validates a requested window against working hours and
// time off only; booking overlap is the reservation check's job.
func (s *Service) CheckWindow(ctx context.Context, artistID int64, start, end time.Time) error {
	if !end.After(start) {
		return ErrValidation
	}
	day := timewindow.DayStart(start)
	if !timewindow.DayStart(end.Add(-time.Nanosecond)).Equal(day) {
		// Bookings do not cross midnight; rules are per-day windows.
		return ErrOutsideHours
	}

	rules, err := s.rules.ActiveRulesByArtist(ctx, artistID)
	if err != nil {
		return err
	}
	open := make([]timewindow.Window, 0)
	for _, r := range rules {
		if r.DayOfWeek != int(day.Weekday()) {
			continue
		}
		w, err := ruleWindow(r, day)
		if err != nil {
			return err
		}
		open = append(open, w)
	}
	req := timewindow.Window{Start: start, End: end}
	if !timewindow.Contains(open, req) {
		return ErrOutsideHours
	}

	timeOff, err := s.rules.TimeOffInRange(ctx, artistID, day, day)
	if err != nil {
		return err
	}
	for _, t := range timeOff {
		if !t.CoversDate(day) {
			continue
		}
		if t.AllDay {
			return ErrTimeOff
		}
		w, err := clockWindow(t.StartTime, t.EndTime, day)
		if err != nil {
			return err
		}
		if req.Overlaps(w) {
			return ErrTimeOff
		}
	}
	return nil
}

func (s *Service) CreateRule(ctx context.Context, artistID int64, req CreateRuleRequest) (*domain.AvailabilityRule, error) {
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, ErrValidation
	}
	day := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	start, err := timewindow.ParseClock(req.StartTime, day)
	if err != nil {
		return nil, ErrValidation
	}
	end, err := timewindow.ParseClock(req.EndTime, day)
	if err != nil {
		return nil, ErrValidation
	}
	if !end.After(start) {
		return nil, ErrValidation
	}

	rule := &domain.AvailabilityRule{
		ArtistID:  artistID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Active:    true,
	}
	if err := s.rules.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Service) DeactivateRule(ctx context.Context, ruleID, artistID int64) error {
	return s.rules.DeactivateRule(ctx, ruleID, artistID)
}

func (s *Service) ListRules(ctx context.Context, artistID int64) ([]domain.AvailabilityRule, error) {
	return s.rules.RulesByArtist(ctx, artistID)
}

func (s *Service) CreateTimeOff(ctx context.Context, artistID int64, req CreateTimeOffRequest) (*domain.TimeOff, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrValidation
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrValidation
	}
	if endDate.Before(startDate) {
		return nil, ErrValidation
	}
	if !req.AllDay {
		if _, err := clockWindow(req.StartTime, req.EndTime, startDate); err != nil {
			return nil, ErrValidation
		}
	}

	t := &domain.TimeOff{
		ArtistID:  artistID,
		StartDate: startDate,
		EndDate:   endDate,
		AllDay:    req.AllDay,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}
	if err := s.rules.CreateTimeOff(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) DeleteTimeOff(ctx context.Context, timeOffID, artistID int64) error {
	return s.rules.DeleteTimeOff(ctx, timeOffID, artistID)
}

func ruleWindow(r domain.AvailabilityRule, day time.Time) (timewindow.Window, error) {
	return clockWindow(r.StartTime, r.EndTime, day)
}

func clockWindow(startClock, endClock string, day time.Time) (timewindow.Window, error) {
	start, err := timewindow.ParseClock(startClock, day)
	if err != nil {
		return timewindow.Window{}, err
	}
	end, err := timewindow.ParseClock(endClock, day)
	if err != nil {
		return timewindow.Window{}, err
	}
	if !end.After(start) {
		return timewindow.Window{}, ErrValidation
	}
	return timewindow.Window{Start: start, End: end}, nil
}
