package history

import (
	"context"

	"distancematrix/internal/events"
	"distancematrix/platform/apperr"
	"distancematrix/platform/logger"
	"distancematrix/platform/sanitize"
)

// Limits for ListRecent.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

const maxPlaceLength = 500

// Service records and lists commute reports.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a history service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record stores the report carried by a CommuteComputed event.
// The event id doubles as the row id, so redelivery does not duplicate rows.
func (s *Service) Record(ctx context.Context, e events.CommuteComputed) error {
	report := Report{
		ID:                  e.ID,
		Origin:              sanitize.Limit(sanitize.Text(e.Query.Origin), maxPlaceLength),
		Destination:         sanitize.Limit(sanitize.Text(e.Query.Destination), maxPlaceLength),
		Date:                e.Query.Date,
		AverageDailyCommute: e.Result.AverageDailyCommute,
		YearlyCommuteHours:  e.Result.YearlyCommuteHours,
		CarbonEmissionKg:    e.Result.CarbonEmissionKg,
		MorningSamples:      len(e.Result.MorningCommute),
		EveningSamples:      len(e.Result.EveningCommute),
		CreatedAt:           e.OccurredAt(),
	}

	if err := s.repo.Insert(ctx, report); err != nil {
		s.log.DatabaseError("insert commute report", err)
		return apperr.Wrap(apperr.KindInternal, "failed to record commute report", err).WithOp("history.Record")
	}
	return nil
}

// ListRecent returns up to limit reports, newest first. A zero limit
// selects DefaultLimit.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Report, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, apperr.Validation("limit must be between 1 and 100")
	}

	reports, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		s.log.DatabaseError("list commute reports", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list commute reports", err).WithOp("history.ListRecent")
	}
	return reports, nil
}
