// Package transport provides DTOs for the commute domain.
package transport

import (
	"encoding/json"
	"errors"
)

// Sample is one point on a commute chart: a departure slot and its duration.
type Sample struct {
	Time     string  `json:"time"`
	Duration float64 `json:"duration"` // minutes
}

// Result is the full commute report for one origin/destination/date query.
// It is an immutable snapshot: consumers replace it wholesale, never patch it.
type Result struct {
	AverageDailyCommute float64  `json:"average_daily_commute"` // minutes
	YearlyCommuteHours  float64  `json:"yearly_commute_hours"`
	CarbonEmissionKg    float64  `json:"carbon_emission_kg"`
	MorningCommute      []Sample `json:"morning_commute"`
	EveningCommute      []Sample `json:"evening_commute"`
	ReturnCommute       []Sample `json:"return_commute,omitempty"`
}

// Query identifies a commute report.
type Query struct {
	Origin      string `json:"origin" form:"origin" binding:"required"`
	Destination string `json:"destination" form:"destination" binding:"required"`
	Date        string `json:"date" form:"date" binding:"required,isodate"`
}

// ErrIncompleteResult is returned when a body lacks part of the report.
var ErrIncompleteResult = errors.New("commute result is incomplete")

// resultWire has pointer fields so missing keys can be told apart from zeros.
type resultWire struct {
	Error               *string   `json:"error"`
	AverageDailyCommute *float64  `json:"average_daily_commute"`
	YearlyCommuteHours  *float64  `json:"yearly_commute_hours"`
	CarbonEmissionKg    *float64  `json:"carbon_emission_kg"`
	MorningCommute      *[]Sample `json:"morning_commute"`
	EveningCommute      *[]Sample `json:"evening_commute"`
	ReturnCommute       []Sample  `json:"return_commute"`
}

// DecodeResult parses a report body and rejects anything that is not a fully
// populated report, including error envelopes such as {"error": "..."}.
func DecodeResult(data []byte) (*Result, error) {
	var wire resultWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	if wire.Error != nil {
		return nil, errors.New(*wire.Error)
	}
	if wire.AverageDailyCommute == nil || wire.YearlyCommuteHours == nil || wire.CarbonEmissionKg == nil ||
		wire.MorningCommute == nil || wire.EveningCommute == nil {
		return nil, ErrIncompleteResult
	}

	return &Result{
		AverageDailyCommute: *wire.AverageDailyCommute,
		YearlyCommuteHours:  *wire.YearlyCommuteHours,
		CarbonEmissionKg:    *wire.CarbonEmissionKg,
		MorningCommute:      *wire.MorningCommute,
		EveningCommute:      *wire.EveningCommute,
		ReturnCommute:       wire.ReturnCommute,
	}, nil
}
