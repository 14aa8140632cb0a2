package form

import (
	"context"
	"errors"
	"sync"
	"testing"

	"distancematrix/internal/commute/transport"
	"distancematrix/platform/apperr"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []transport.Query
	result  *transport.Result
	err     error
	onFetch func()
}

func (f *fakeFetcher) Fetch(_ context.Context, q transport.Query) (*transport.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.result, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Warn(message string) {
	n.messages = append(n.messages, message)
}

type fixedSelector struct {
	place Place
	ok    bool
}

func (s fixedSelector) Place() (Place, bool) { return s.place, s.ok }

func sampleResult(avg float64) *transport.Result {
	return &transport.Result{
		AverageDailyCommute: avg,
		YearlyCommuteHours:  160,
		CarbonEmissionKg:    12.5,
		MorningCommute:      []transport.Sample{{Time: "07:00", Duration: 35}, {Time: "08:00", Duration: 45}},
		EveningCommute:      []transport.Sample{{Time: "17:00", Duration: 38}, {Time: "18:00", Duration: 42}},
	}
}

func filledForm(fetcher Fetcher, notifier Notifier) *Form {
	f := New(fetcher, notifier, nil)
	f.SetOrigin("A")
	f.SetDestination("B")
	f.SetDate("2024-05-01")
	return f
}

func TestSubmitRequiresAllFields(t *testing.T) {
	tests := []struct {
		name        string
		origin      string
		destination string
		date        string
	}{
		{name: "all empty"},
		{name: "missing origin", destination: "B", date: "2024-05-01"},
		{name: "missing destination", origin: "A", date: "2024-05-01"},
		{name: "missing date", origin: "A", destination: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{result: sampleResult(40)}
			notifier := &recordingNotifier{}
			f := New(fetcher, notifier, nil)
			f.SetOrigin(tt.origin)
			f.SetDestination(tt.destination)
			f.SetDate(tt.date)

			result, err := f.Submit(context.Background())
			if result != nil {
				t.Fatalf("expected no result, got %+v", result)
			}
			if !errors.Is(err, ErrMissingFields) {
				t.Fatalf("expected ErrMissingFields, got %v", err)
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation kind, got %v", apperr.GetKind(err))
			}
			if fetcher.callCount() != 0 {
				t.Fatal("expected no backend request")
			}
			if len(notifier.messages) != 1 || notifier.messages[0] != MsgMissingFields {
				t.Fatalf("unexpected warnings: %v", notifier.messages)
			}
			if state := f.Snapshot(); state.Loading || state.Result != nil {
				t.Fatalf("expected state untouched, got %+v", state)
			}
		})
	}
}

func TestSubmitSendsFieldsAndStoresResult(t *testing.T) {
	fetcher := &fakeFetcher{result: sampleResult(40)}
	notifier := &recordingNotifier{}
	f := filledForm(fetcher, notifier)

	result, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if result != fetcher.result {
		t.Fatal("expected the fetched result to be returned")
	}

	want := transport.Query{Origin: "A", Destination: "B", Date: "2024-05-01"}
	if len(fetcher.calls) != 1 || fetcher.calls[0] != want {
		t.Fatalf("unexpected backend calls: %+v", fetcher.calls)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("expected no warnings, got %v", notifier.messages)
	}

	state := f.Snapshot()
	if state.Loading {
		t.Fatal("expected loading cleared")
	}
	if state.Result != fetcher.result {
		t.Fatal("expected result stored")
	}
}

func TestSuccessiveSubmitsReplaceResult(t *testing.T) {
	fetcher := &fakeFetcher{result: sampleResult(40)}
	f := filledForm(fetcher, &recordingNotifier{})

	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second := sampleResult(55)
	second.MorningCommute = second.MorningCommute[:1]
	fetcher.result = second
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	state := f.Snapshot()
	if state.Result != second {
		t.Fatal("expected the second result to replace the first")
	}
	if view := f.View(); len(view.Morning.Labels) != 1 || view.AverageDailyCommute != "55 minutes" {
		t.Fatalf("expected view to reflect only the second result, got %+v", view)
	}
}

func TestFailedSubmitKeepsPreviousResult(t *testing.T) {
	fetcher := &fakeFetcher{result: sampleResult(40)}
	notifier := &recordingNotifier{}
	f := filledForm(fetcher, notifier)

	first, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	upstream := errors.New("connection refused")
	fetcher.result = nil
	fetcher.err = upstream

	result, err := f.Submit(context.Background())
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
	if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped fetch failure, got %v", err)
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != MsgFetchFailed {
		t.Fatalf("unexpected warnings: %v", notifier.messages)
	}

	state := f.Snapshot()
	if state.Result != first {
		t.Fatal("expected previous result preserved")
	}
	if state.Loading {
		t.Fatal("expected loading cleared after failure")
	}
}

func TestLoadingIsSetDuringFetch(t *testing.T) {
	for _, fail := range []bool{false, true} {
		fetcher := &fakeFetcher{result: sampleResult(40)}
		if fail {
			fetcher.result = nil
			fetcher.err = errors.New("boom")
		}
		f := filledForm(fetcher, &recordingNotifier{})

		var during View
		fetcher.onFetch = func() { during = f.View() }

		_, _ = f.Submit(context.Background())

		if !during.Loading || during.ButtonLabel != ButtonLoading {
			t.Fatalf("fail=%v: expected loading view during fetch, got %+v", fail, during)
		}
		if after := f.View(); after.Loading || after.ButtonLabel != ButtonIdle {
			t.Fatalf("fail=%v: expected idle view after fetch, got %+v", fail, after)
		}
	}
}

func TestOverlappingSubmitsLastResolvedWins(t *testing.T) {
	firstResult := sampleResult(10)
	secondResult := sampleResult(20)

	releaseFirst := make(chan struct{})
	firstStarted := make(chan struct{})
	fetcher := &blockingFetcher{
		results: map[string]*transport.Result{"first": firstResult, "second": secondResult},
		gates:   map[string]chan struct{}{"first": releaseFirst},
		started: map[string]chan struct{}{"first": firstStarted},
	}
	f := New(fetcher, &recordingNotifier{}, nil)
	f.SetDestination("B")
	f.SetDate("2024-05-01")

	f.SetOrigin("first")
	done := make(chan struct{})
	go func() {
		_, _ = f.Submit(context.Background())
		close(done)
	}()
	<-firstStarted

	f.SetOrigin("second")
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if f.Snapshot().Result != secondResult {
		t.Fatal("expected second result while first is in flight")
	}

	close(releaseFirst)
	<-done

	state := f.Snapshot()
	if state.Result != firstResult {
		t.Fatal("expected the last resolved fetch to decide the result")
	}
	if state.Loading {
		t.Fatal("expected loading cleared")
	}
}

type blockingFetcher struct {
	results map[string]*transport.Result
	gates   map[string]chan struct{}
	started map[string]chan struct{}
}

func (b *blockingFetcher) Fetch(_ context.Context, q transport.Query) (*transport.Result, error) {
	if ch, ok := b.started[q.Origin]; ok {
		close(ch)
	}
	if gate, ok := b.gates[q.Origin]; ok {
		<-gate
	}
	return b.results[q.Origin], nil
}

func TestPlaceChangedCopiesSelection(t *testing.T) {
	f := New(&fakeFetcher{}, nil, nil)
	f.SetOrigin("typed")
	f.SetDestination("typed too")

	f.OriginPlaceChanged()
	f.DestinationPlaceChanged()
	if state := f.Snapshot(); state.Origin != "typed" || state.Destination != "typed too" {
		t.Fatalf("expected no change without mounted widgets, got %+v", state)
	}

	f.MountOrigin(fixedSelector{ok: false})
	f.MountDestination(fixedSelector{place: Place{}, ok: true})
	f.OriginPlaceChanged()
	f.DestinationPlaceChanged()
	if state := f.Snapshot(); state.Origin != "typed" || state.Destination != "typed too" {
		t.Fatalf("expected no change without a usable selection, got %+v", state)
	}

	f.MountOrigin(fixedSelector{place: Place{FormattedAddress: "Dam 1, 1012 JS Amsterdam, Netherlands"}, ok: true})
	f.MountDestination(fixedSelector{place: Place{FormattedAddress: "Coolsingel 40, Rotterdam, Netherlands"}, ok: true})
	f.OriginPlaceChanged()
	f.DestinationPlaceChanged()

	state := f.Snapshot()
	if state.Origin != "Dam 1, 1012 JS Amsterdam, Netherlands" {
		t.Fatalf("unexpected origin %q", state.Origin)
	}
	if state.Destination != "Coolsingel 40, Rotterdam, Netherlands" {
		t.Fatalf("unexpected destination %q", state.Destination)
	}
}

func TestNotifierFunc(t *testing.T) {
	var got string
	f := filledForm(&fakeFetcher{err: errors.New("down")}, NotifierFunc(func(m string) { got = m }))
	_, _ = f.Submit(context.Background())
	if got != MsgFetchFailed {
		t.Fatalf("expected %q, got %q", MsgFetchFailed, got)
	}
}
