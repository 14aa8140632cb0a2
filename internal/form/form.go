// Package form implements the commute form: it collects an origin, a
// destination and a date, asks the commute backend for a report, and keeps
// the latest successful result for rendering.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"distancematrix/internal/commute/transport"
	"distancematrix/platform/apperr"
	"distancematrix/platform/logger"
	"distancematrix/platform/validator"
)

// User-facing messages.
const (
	MsgMissingFields = "Please enter origin, destination, and date."
	MsgFetchFailed   = "Failed to fetch commute data."
)

var (
	// ErrMissingFields is returned by Submit when a field is empty.
	ErrMissingFields = errors.New("origin, destination and date are required")
	// ErrFetchFailed is returned by Submit when the backend request fails.
	ErrFetchFailed = errors.New("commute fetch failed")
)

// Place is a location chosen from an autocomplete widget.
type Place struct {
	FormattedAddress string
}

// PlaceSelector is an autocomplete widget attached to an address field.
// Place returns false until the user has chosen something usable.
type PlaceSelector interface {
	Place() (Place, bool)
}

// Fetcher retrieves a commute report from the backend.
type Fetcher interface {
	Fetch(ctx context.Context, q transport.Query) (*transport.Result, error)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Warn(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Warn calls f.
func (f NotifierFunc) Warn(message string) { f(message) }

// State is a copy of the form's fields.
type State struct {
	Origin      string
	Destination string
	Date        string
	Loading     bool
	Result      *transport.Result
}

// fields mirrors the three inputs for validation.
type fields struct {
	Origin      string `validate:"required"`
	Destination string `validate:"required"`
	Date        string `validate:"required"`
}

// Form holds the state of one commute form.
// It is safe for concurrent use; the lock is never held across a fetch.
type Form struct {
	mu          sync.Mutex
	state       State
	origin      PlaceSelector
	destination PlaceSelector

	fetcher  Fetcher
	notifier Notifier
	validate *validator.Validator
	log      *logger.Logger
}

// New creates an empty form.
func New(fetcher Fetcher, notifier Notifier, log *logger.Logger) *Form {
	if log == nil {
		log = logger.Discard()
	}
	return &Form{
		fetcher:  fetcher,
		notifier: notifier,
		validate: validator.New(),
		log:      log,
	}
}

// SetOrigin replaces the origin text.
func (f *Form) SetOrigin(value string) {
	f.mu.Lock()
	f.state.Origin = value
	f.mu.Unlock()
}

// SetDestination replaces the destination text.
func (f *Form) SetDestination(value string) {
	f.mu.Lock()
	f.state.Destination = value
	f.mu.Unlock()
}

// SetDate replaces the date text. No format check is done here.
func (f *Form) SetDate(value string) {
	f.mu.Lock()
	f.state.Date = value
	f.mu.Unlock()
}

// MountOrigin attaches the origin autocomplete widget.
func (f *Form) MountOrigin(selector PlaceSelector) {
	f.mu.Lock()
	f.origin = selector
	f.mu.Unlock()
}

// MountDestination attaches the destination autocomplete widget.
func (f *Form) MountDestination(selector PlaceSelector) {
	f.mu.Lock()
	f.destination = selector
	f.mu.Unlock()
}

// OriginPlaceChanged copies the selected place into the origin field.
// It does nothing when no widget is mounted or nothing is selected.
func (f *Form) OriginPlaceChanged() {
	f.mu.Lock()
	selector := f.origin
	f.mu.Unlock()

	if address, ok := selectPlace(selector); ok {
		f.SetOrigin(address)
	}
}

// DestinationPlaceChanged copies the selected place into the destination field.
func (f *Form) DestinationPlaceChanged() {
	f.mu.Lock()
	selector := f.destination
	f.mu.Unlock()

	if address, ok := selectPlace(selector); ok {
		f.SetDestination(address)
	}
}

func selectPlace(selector PlaceSelector) (string, bool) {
	if selector == nil {
		return "", false
	}
	place, ok := selector.Place()
	if !ok || place.FormattedAddress == "" {
		return "", false
	}
	return place.FormattedAddress, true
}

// Submit validates the form and fetches a report.
//
// On success the report replaces the previous one. On failure the user is
// warned and the previous report is kept. Overlapping submissions are not
// sequenced: whichever fetch finishes last decides the result and clears
// the loading flag.
func (f *Form) Submit(ctx context.Context) (*transport.Result, error) {
	f.mu.Lock()
	q := transport.Query{
		Origin:      f.state.Origin,
		Destination: f.state.Destination,
		Date:        f.state.Date,
	}
	if err := f.validate.Struct(fields(q)); err != nil {
		f.mu.Unlock()
		f.warn(MsgMissingFields)
		return nil, apperr.Wrap(apperr.KindValidation, MsgMissingFields, ErrMissingFields).WithOp("form.Submit")
	}
	f.state.Loading = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.state.Loading = false
		f.mu.Unlock()
	}()

	result, err := f.fetcher.Fetch(ctx, q)
	if err != nil {
		f.log.WithContext(ctx).Error("error fetching commute data",
			"origin", q.Origin,
			"destination", q.Destination,
			"date", q.Date,
			"error", err,
		)
		f.warn(MsgFetchFailed)
		return nil, apperr.Wrap(apperr.KindUnavailable, MsgFetchFailed, fmt.Errorf("%w: %w", ErrFetchFailed, err)).WithOp("form.Submit")
	}

	f.mu.Lock()
	f.state.Result = result
	f.mu.Unlock()

	return result, nil
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) warn(message string) {
	if f.notifier != nil {
		f.notifier.Warn(message)
	}
}
