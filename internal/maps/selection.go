package maps

import (
	"sync"

	"distancematrix/internal/form"
)

// Selection is an autocomplete widget for one address field. It holds the
// most recently chosen suggestion, if any.
type Selection struct {
	mu     sync.Mutex
	chosen *AddressSuggestion
}

// Select returns a selection with s already chosen.
func Select(s AddressSuggestion) *Selection {
	sel := &Selection{}
	sel.Choose(s)
	return sel
}

// Choose records s as the selected place.
func (sel *Selection) Choose(s AddressSuggestion) {
	sel.mu.Lock()
	sel.chosen = &s
	sel.mu.Unlock()
}

// Clear forgets the current choice.
func (sel *Selection) Clear() {
	sel.mu.Lock()
	sel.chosen = nil
	sel.mu.Unlock()
}

// Place implements form.PlaceSelector.
func (sel *Selection) Place() (form.Place, bool) {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if sel.chosen == nil || sel.chosen.Label == "" {
		return form.Place{}, false
	}
	return form.Place{FormattedAddress: sel.chosen.Label}, true
}

var _ form.PlaceSelector = (*Selection)(nil)
