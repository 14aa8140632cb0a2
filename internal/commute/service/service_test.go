package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"distancematrix/internal/commute/transport"
	"distancematrix/internal/distancematrix"
	"distancematrix/internal/events"
	"distancematrix/platform/apperr"
	"distancematrix/platform/logger"
)

type testCommuteConfig struct{}

func (testCommuteConfig) GetCommuteLocation() *time.Location { return time.UTC }
func (testCommuteConfig) GetCarbonEmissionFactor() float64   { return 0.120 }
func (testCommuteConfig) GetWorkdaysPerYear() int            { return 250 }

type lookupCall struct {
	origin      string
	destination string
	departure   time.Time
}

type scriptedProvider struct {
	mu      sync.Mutex
	calls   []lookupCall
	respond func(call lookupCall) (distancematrix.Lookup, error)
}

func (p *scriptedProvider) Lookup(_ context.Context, origin, destination string, departure time.Time) (distancematrix.Lookup, error) {
	call := lookupCall{origin: origin, destination: destination, departure: departure}
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
	return p.respond(call)
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

var testQuery = transport.Query{Origin: "Home", Destination: "Office", Date: "2024-05-01"}

func steadyProvider() *scriptedProvider {
	return &scriptedProvider{respond: func(call lookupCall) (distancematrix.Lookup, error) {
		if call.origin == "Home" {
			return distancematrix.Lookup{DurationMinutes: 20, DistanceKm: 10, Found: true}, nil
		}
		return distancematrix.Lookup{DurationMinutes: 30, DistanceKm: 11, Found: true}, nil
	}}
}

func TestReportComputesSummary(t *testing.T) {
	provider := steadyProvider()
	svc := New(provider, testCommuteConfig{}, nil, logger.Discard())

	result, err := svc.Report(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}

	if result.AverageDailyCommute != 25 {
		t.Fatalf("expected average 25, got %v", result.AverageDailyCommute)
	}
	if result.YearlyCommuteHours != 208.33 {
		t.Fatalf("expected yearly hours 208.33, got %v", result.YearlyCommuteHours)
	}
	if result.CarbonEmissionKg != 600 {
		t.Fatalf("expected carbon 600, got %v", result.CarbonEmissionKg)
	}
	if len(provider.calls) != len(MorningSlots)+len(EveningSlots) {
		t.Fatalf("expected %d lookups, got %d", len(MorningSlots)+len(EveningSlots), len(provider.calls))
	}
}

func TestReportKeepsSlotOrderAndLabels(t *testing.T) {
	svc := New(steadyProvider(), testCommuteConfig{}, nil, logger.Discard())

	result, err := svc.Report(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}

	wantMorning := []string{"07:00", "07:30", "08:00", "08:30", "09:00"}
	for i, sample := range result.MorningCommute {
		if sample.Time != wantMorning[i] || sample.Duration != 20 {
			t.Fatalf("morning[%d]: unexpected sample %+v", i, sample)
		}
	}
	wantEvening := []string{"17:00", "17:30", "18:00", "18:30", "19:00"}
	for i, sample := range result.EveningCommute {
		if sample.Time != wantEvening[i] || sample.Duration != 30 {
			t.Fatalf("evening[%d]: unexpected sample %+v", i, sample)
		}
	}
	if len(result.ReturnCommute) != len(result.EveningCommute) {
		t.Fatalf("expected return commute to mirror evening commute")
	}
}

func TestReportUsesLocalDeparturesAndReverseEveningTrips(t *testing.T) {
	provider := steadyProvider()
	svc := New(provider, testCommuteConfig{}, nil, logger.Discard())

	if _, err := svc.Report(context.Background(), testQuery); err != nil {
		t.Fatalf("Report returned error: %v", err)
	}

	seen := make(map[time.Time]lookupCall)
	for _, call := range provider.calls {
		seen[call.departure] = call
	}

	morning, ok := seen[time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)]
	if !ok || morning.origin != "Home" || morning.destination != "Office" {
		t.Fatalf("expected 07:00 Home->Office lookup, got %+v", morning)
	}
	evening, ok := seen[time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)]
	if !ok || evening.origin != "Office" || evening.destination != "Home" {
		t.Fatalf("expected 19:00 Office->Home lookup, got %+v", evening)
	}
}

func TestReportSkipsMorningSlotsWithoutDistance(t *testing.T) {
	provider := &scriptedProvider{respond: func(call lookupCall) (distancematrix.Lookup, error) {
		if call.origin == "Office" {
			return distancematrix.Lookup{DurationMinutes: 30, Found: true}, nil
		}
		switch call.departure.Hour() {
		case 7:
			return distancematrix.Lookup{DurationMinutes: 15, DistanceKm: 0}, nil
		case 8:
			return distancematrix.Lookup{DurationMinutes: 25, DistanceKm: 12, Found: true}, nil
		default:
			return distancematrix.Lookup{}, nil
		}
	}}
	svc := New(provider, testCommuteConfig{}, nil, logger.Discard())

	result, err := svc.Report(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if len(result.MorningCommute) != 2 || result.MorningCommute[0].Time != "08:00" || result.MorningCommute[1].Time != "08:30" {
		t.Fatalf("expected only the 08:xx slots, got %+v", result.MorningCommute)
	}
	if result.CarbonEmissionKg != 720 {
		t.Fatalf("expected carbon from 12km trip (720), got %v", result.CarbonEmissionKg)
	}
}

func TestReportWithoutEveningDataIsUnavailable(t *testing.T) {
	provider := &scriptedProvider{respond: func(call lookupCall) (distancematrix.Lookup, error) {
		if call.origin == "Office" {
			return distancematrix.Lookup{}, nil
		}
		return distancematrix.Lookup{DurationMinutes: 20, DistanceKm: 10, Found: true}, nil
	}}
	svc := New(provider, testCommuteConfig{}, nil, logger.Discard())

	_, err := svc.Report(context.Background(), testQuery)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}

func TestReportLookupErrorIsUnavailable(t *testing.T) {
	cause := errors.New("connection reset")
	provider := &scriptedProvider{respond: func(lookupCall) (distancematrix.Lookup, error) {
		return distancematrix.Lookup{}, cause
	}}
	svc := New(provider, testCommuteConfig{}, nil, logger.Discard())

	_, err := svc.Report(context.Background(), testQuery)
	if !apperr.Is(err, apperr.KindUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped KindUnavailable, got %v", err)
	}
}

func TestReportRejectsBadDate(t *testing.T) {
	provider := steadyProvider()
	svc := New(provider, testCommuteConfig{}, nil, logger.Discard())

	_, err := svc.Report(context.Background(), transport.Query{Origin: "A", Destination: "B", Date: "05/01/2024"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(provider.calls) != 0 {
		t.Fatalf("expected no lookups for invalid input, got %d", len(provider.calls))
	}
}

func TestReportPublishesCommuteComputed(t *testing.T) {
	bus := &recordingBus{}
	svc := New(steadyProvider(), testCommuteConfig{}, bus, logger.Discard())

	if _, err := svc.Report(context.Background(), testQuery); err != nil {
		t.Fatalf("Report returned error: %v", err)
	}

	if len(bus.events) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.events))
	}
	evt, ok := bus.events[0].(events.CommuteComputed)
	if !ok {
		t.Fatalf("expected CommuteComputed, got %T", bus.events[0])
	}
	if evt.Query != testQuery || evt.Result.AverageDailyCommute != 25 {
		t.Fatalf("unexpected event payload: %+v", evt)
	}
}

func TestSlotLabel(t *testing.T) {
	if got := (Slot{Hour: 7, Minute: 0}).Label(); got != "07:00" {
		t.Fatalf("expected 07:00, got %q", got)
	}
	if got := (Slot{Hour: 17, Minute: 30}).Label(); got != "17:30" {
		t.Fatalf("expected 17:30, got %q", got)
	}
}
