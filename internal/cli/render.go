// Package cli renders the commute form for a terminal and drives it from
// line-oriented input.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"distancematrix/internal/chart"
	"distancematrix/internal/form"
	"distancematrix/internal/maps"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat normalizes and checks an --output value.
func ParseFormat(value string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(value)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", value)
	}
}

// Report is the machine-readable rendering of a form view.
type Report struct {
	Origin              string        `json:"origin" yaml:"origin"`
	Destination         string        `json:"destination" yaml:"destination"`
	Date                string        `json:"date" yaml:"date"`
	AverageDailyCommute string        `json:"average_daily_commute,omitempty" yaml:"average_daily_commute,omitempty"`
	YearlyCommuteHours  string        `json:"yearly_commute_hours,omitempty" yaml:"yearly_commute_hours,omitempty"`
	CarbonEmission      string        `json:"carbon_emission,omitempty" yaml:"carbon_emission,omitempty"`
	Morning             []chart.Point `json:"morning_commute,omitempty" yaml:"morning_commute,omitempty"`
	Evening             []chart.Point `json:"evening_commute,omitempty" yaml:"evening_commute,omitempty"`
}

// NewReport flattens a view.
func NewReport(v form.View) Report {
	r := Report{
		Origin:      v.Origin,
		Destination: v.Destination,
		Date:        v.Date,
	}
	if v.HasResult {
		r.AverageDailyCommute = v.AverageDailyCommute
		r.YearlyCommuteHours = v.YearlyCommuteHours
		r.CarbonEmission = v.CarbonEmission
		r.Morning = v.Morning.Points()
		r.Evening = v.Evening.Points()
	}
	return r
}

// Render writes v to w in the given format.
func Render(w io.Writer, v form.View, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, NewReport(v))
	case FormatYAML:
		return writeYAML(w, NewReport(v))
	default:
		return renderText(w, v)
	}
}

// RenderSuggestions writes place suggestions to w in the given format.
func RenderSuggestions(w io.Writer, suggestions []maps.AddressSuggestion, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, suggestions)
	case FormatYAML:
		return writeYAML(w, suggestions)
	}

	if len(suggestions) == 0 {
		_, err := fmt.Fprintln(w, "No places found.")
		return err
	}
	for i, s := range suggestions {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, s.Label); err != nil {
			return err
		}
	}
	return nil
}

func renderText(w io.Writer, v form.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Origin:\t%s\n", v.Origin)
	fmt.Fprintf(tw, "Destination:\t%s\n", v.Destination)
	fmt.Fprintf(tw, "Date:\t%s\n", v.Date)

	if !v.HasResult {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "No commute data yet.")
		return tw.Flush()
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Commute Summary")
	fmt.Fprintf(tw, "  Average Daily Commute:\t%s\n", v.AverageDailyCommute)
	fmt.Fprintf(tw, "  Yearly Commute Time:\t%s\n", v.YearlyCommuteHours)
	fmt.Fprintf(tw, "  Carbon Emission:\t%s\n", v.CarbonEmission)

	for _, series := range []chart.Data{v.Morning, v.Evening} {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, series.Title())
		for _, p := range series.Points() {
			fmt.Fprintf(tw, "  %s\t%s min\n", p.Label, form.FormatNumber(p.Value))
		}
	}

	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
