// Package chart derives line-chart input from commute reports.
// The shapes match what the browser chart library consumes.
package chart

import "distancematrix/internal/commute/transport"

// Dataset is one line on a chart.
type Dataset struct {
	Label           string    `json:"label" yaml:"label"`
	Data            []float64 `json:"data" yaml:"data"`
	BorderColor     string    `json:"borderColor" yaml:"borderColor"`
	BackgroundColor string    `json:"backgroundColor" yaml:"backgroundColor"`
	Fill            bool      `json:"fill" yaml:"fill"`
}

// Data is the chart input: x-axis labels plus datasets aligned with them.
type Data struct {
	Labels   []string  `json:"labels" yaml:"labels"`
	Datasets []Dataset `json:"datasets" yaml:"datasets"`
}

// Point is a single labelled value, used by text renderers.
type Point struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// Style holds the presentation attributes of a series.
type Style struct {
	Label           string
	BorderColor     string
	BackgroundColor string
}

var (
	// MorningStyle is used for trips to work.
	MorningStyle = Style{Label: "Morning Commute (To Work)", BorderColor: "blue", BackgroundColor: "rgba(0, 0, 255, 0.3)"}
	// EveningStyle is used for trips home.
	EveningStyle = Style{Label: "Evening Commute (To Home)", BorderColor: "red", BackgroundColor: "rgba(255, 0, 0, 0.3)"}
)

// FromSamples maps each sample's time to a label and its duration to a value,
// preserving order and length.
func FromSamples(samples []transport.Sample, style Style) Data {
	labels := make([]string, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		labels[i] = s.Time
		values[i] = s.Duration
	}

	return Data{
		Labels: labels,
		Datasets: []Dataset{{
			Label:           style.Label,
			Data:            values,
			BorderColor:     style.BorderColor,
			BackgroundColor: style.BackgroundColor,
			Fill:            true,
		}},
	}
}

// Morning derives the to-work chart.
func Morning(r *transport.Result) Data {
	return FromSamples(r.MorningCommute, MorningStyle)
}

// Evening derives the to-home chart.
func Evening(r *transport.Result) Data {
	return FromSamples(r.EveningCommute, EveningStyle)
}

// Points zips the labels with the first dataset.
func (d Data) Points() []Point {
	if len(d.Datasets) == 0 {
		return nil
	}
	values := d.Datasets[0].Data
	points := make([]Point, 0, len(d.Labels))
	for i, label := range d.Labels {
		if i >= len(values) {
			break
		}
		points = append(points, Point{Label: label, Value: values[i]})
	}
	return points
}

// Title returns the first dataset's label.
func (d Data) Title() string {
	if len(d.Datasets) == 0 {
		return ""
	}
	return d.Datasets[0].Label
}
