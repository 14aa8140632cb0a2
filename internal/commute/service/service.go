// Package service computes commute reports from distance matrix lookups.
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"distancematrix/internal/commute/transport"
	"distancematrix/internal/distancematrix"
	"distancematrix/internal/events"
	"distancematrix/platform/apperr"
	"distancematrix/platform/config"
	"distancematrix/platform/logger"
	"distancematrix/platform/validator"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// maxParallelLookups bounds concurrent upstream calls per report.
	maxParallelLookups = 4
	computeTimeout     = 30 * time.Second
	minutesPerHour     = 60
	tripsPerDay        = 2
)

// Slot is a departure time of day.
type Slot struct {
	Hour   int
	Minute int
}

// Label formats the slot as HH:MM.
func (s Slot) Label() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

var (
	// MorningSlots are departures from origin to destination.
	MorningSlots = []Slot{{7, 0}, {7, 30}, {8, 0}, {8, 30}, {9, 0}}
	// EveningSlots are departures from destination back to origin.
	EveningSlots = []Slot{{17, 0}, {17, 30}, {18, 0}, {18, 30}, {19, 0}}
)

// Service handles commute report computation.
type Service struct {
	provider distancematrix.Provider
	cfg      config.CommuteConfig
	bus      events.Bus
	log      *logger.Logger
	group    singleflight.Group
}

// New creates a commute service. bus may be nil.
func New(provider distancematrix.Provider, cfg config.CommuteConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		cfg:      cfg,
		bus:      bus,
		log:      log,
	}
}

// Report returns the commute statistics for q. Identical concurrent queries
// share a single computation.
func (s *Service) Report(ctx context.Context, q transport.Query) (*transport.Result, error) {
	if !validator.IsISODate(q.Date) {
		return nil, apperr.Validation("date must be formatted as YYYY-MM-DD")
	}
	if q.Origin == "" || q.Destination == "" {
		return nil, apperr.Validation("origin and destination are required")
	}

	key := q.Origin + "\x00" + q.Destination + "\x00" + q.Date
	ch := s.group.DoChan(key, func() (interface{}, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()

		result, err := s.compute(computeCtx, q)
		if err != nil {
			return nil, err
		}
		if s.bus != nil {
			s.bus.Publish(computeCtx, events.CommuteComputed{
				BaseEvent: events.NewBaseEvent(),
				Query:     q,
				Result:    *result,
			})
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*transport.Result), nil
	}
}

func (s *Service) compute(ctx context.Context, q transport.Query) (*transport.Result, error) {
	day, err := time.ParseInLocation(validator.ISODateLayout, q.Date, s.location())
	if err != nil {
		return nil, apperr.Validation("date must be formatted as YYYY-MM-DD")
	}

	morning := make([]distancematrix.Lookup, len(MorningSlots))
	evening := make([]distancematrix.Lookup, len(EveningSlots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, slot := range MorningSlots {
		g.Go(func() error {
			lookup, err := s.provider.Lookup(gctx, q.Origin, q.Destination, departure(day, slot))
			morning[i] = lookup
			return err
		})
	}
	for i, slot := range EveningSlots {
		g.Go(func() error {
			lookup, err := s.provider.Lookup(gctx, q.Destination, q.Origin, departure(day, slot))
			evening[i] = lookup
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).Error("commute lookups failed", "error", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "distance matrix lookup failed", err)
	}

	return s.summarize(morning, evening)
}

// summarize turns per-slot lookups into a report. A morning slot needs both a
// duration and a distance, an evening slot only a duration. The trip distance
// is taken from the last usable morning slot.
func (s *Service) summarize(morning, evening []distancematrix.Lookup) (*transport.Result, error) {
	var (
		morningSamples = make([]transport.Sample, 0, len(morning))
		eveningSamples = make([]transport.Sample, 0, len(evening))
		returnSamples  = make([]transport.Sample, 0, len(evening))
		distanceKm     float64
	)

	for i, lookup := range morning {
		if lookup.DurationMinutes > 0 && lookup.DistanceKm > 0 {
			distanceKm = lookup.DistanceKm
			morningSamples = append(morningSamples, transport.Sample{Time: MorningSlots[i].Label(), Duration: lookup.DurationMinutes})
		}
	}
	for i, lookup := range evening {
		if lookup.DurationMinutes > 0 {
			sample := transport.Sample{Time: EveningSlots[i].Label(), Duration: lookup.DurationMinutes}
			eveningSamples = append(eveningSamples, sample)
			returnSamples = append(returnSamples, sample)
		}
	}

	if len(morningSamples) == 0 || len(eveningSamples) == 0 {
		return nil, apperr.Unavailable("could not retrieve commute data, check API key and locations")
	}

	var total float64
	for _, sample := range morningSamples {
		total += sample.Duration
	}
	for _, sample := range returnSamples {
		total += sample.Duration
	}
	avg := total / float64(len(morningSamples)+len(returnSamples))

	workdays := float64(s.cfg.GetWorkdaysPerYear())

	return &transport.Result{
		AverageDailyCommute: round2(avg),
		YearlyCommuteHours:  round2(avg * tripsPerDay * workdays / minutesPerHour),
		CarbonEmissionKg:    round2(distanceKm * s.cfg.GetCarbonEmissionFactor() * tripsPerDay * workdays),
		MorningCommute:      morningSamples,
		EveningCommute:      eveningSamples,
		ReturnCommute:       returnSamples,
	}, nil
}

func (s *Service) location() *time.Location {
	if loc := s.cfg.GetCommuteLocation(); loc != nil {
		return loc
	}
	return time.Local
}

func departure(day time.Time, slot Slot) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), slot.Hour, slot.Minute, 0, 0, day.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
