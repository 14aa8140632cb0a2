package form

import (
	"strconv"

	"distancematrix/internal/chart"
)

// Button labels.
const (
	ButtonIdle    = "Get Commute Data"
	ButtonLoading = "Fetching..."
)

// View is the rendered form: input values, the button and, once a report
// has arrived, its summaries and charts.
type View struct {
	Origin      string
	Destination string
	Date        string
	Loading     bool
	ButtonLabel string

	HasResult           bool
	AverageDailyCommute string
	YearlyCommuteHours  string
	CarbonEmission      string
	Morning             chart.Data
	Evening             chart.Data
}

// View renders the current state.
func (f *Form) View() View {
	return Render(f.Snapshot())
}

// Render turns a state into a view.
func Render(s State) View {
	v := View{
		Origin:      s.Origin,
		Destination: s.Destination,
		Date:        s.Date,
		Loading:     s.Loading,
		ButtonLabel: ButtonIdle,
	}
	if s.Loading {
		v.ButtonLabel = ButtonLoading
	}

	if s.Result == nil {
		return v
	}

	v.HasResult = true
	v.AverageDailyCommute = FormatNumber(s.Result.AverageDailyCommute) + " minutes"
	v.YearlyCommuteHours = FormatNumber(s.Result.YearlyCommuteHours) + " hours"
	v.CarbonEmission = FormatNumber(s.Result.CarbonEmissionKg) + " kg CO₂"
	v.Morning = chart.Morning(s.Result)
	v.Evening = chart.Evening(s.Result)
	return v
}

// FormatNumber prints v in its shortest form: 40, 12.5, 208.33.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
