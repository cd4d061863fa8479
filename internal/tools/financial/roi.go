// Package financial holds the built-in financial calculators.
package financial

import (
	"errors"
	"math"

	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/biztools-dev/biztools/internal/tools"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NewROICalculator returns the return-on-investment calculator. It is a free
// tool: tier gating never blocks it, only the rate policy applies.
func NewROICalculator() *tools.Descriptor {
	return &tools.Descriptor{
		Slug:         "roi-calculator",
		Name:         "ROI Calculator",
		Description:  "Calculate your return on investment with detailed analysis",
		Category:     "financial",
		RequiredTier: tier.Free,
		Icon:         "dashicons-chart-line",
		Color:        "#10b981",
		Inputs: []tools.Field{
			{
				Name:        "investment",
				Label:       "Initial Investment ($)",
				Kind:        tools.FieldNumber,
				Required:    true,
				Min:         tools.Bound(0),
				Placeholder: "10000",
				Help:        "Amount of money invested initially",
			},
			{
				Name:        "final_value",
				Label:       "Final Value ($)",
				Kind:        tools.FieldNumber,
				Required:    true,
				Min:         tools.Bound(0),
				Placeholder: "15000",
				Help:        "Current or final value of investment",
			},
			{
				Name:        "time_period",
				Label:       "Time Period (months)",
				Kind:        tools.FieldInteger,
				Required:    true,
				Min:         tools.Bound(1),
				Max:         tools.Bound(600),
				Placeholder: "12",
				Help:        "Duration of investment in months",
			},
		},
		Outputs: []tools.Output{
			{Name: "roi_percent", Label: "ROI Percentage", Format: "percentage", Highlight: true, Help: "Your total return on investment"},
			{Name: "profit", Label: "Total Profit", Format: "currency", Help: "Net profit from investment"},
			{Name: "roi_annual", Label: "Annualized ROI", Format: "percentage", Help: "ROI normalized to yearly basis"},
			{Name: "monthly_return", Label: "Monthly Return", Format: "currency", Help: "Average profit per month"},
		},
		Compute: computeROI,
	}
}

func computeROI(in tools.Inputs) (map[string]interface{}, error) {
	investment := in.Float("investment")
	finalValue := in.Float("final_value")
	timePeriod := in.Int("time_period")

	if investment == 0 {
		return nil, errors.New("initial investment must be greater than zero")
	}

	profit := finalValue - investment
	roiPercent := (profit / investment) * 100
	years := float64(timePeriod) / 12
	roiAnnual := roiPercent / years
	monthlyReturn := profit / float64(timePeriod)

	return map[string]interface{}{
		"roi_percent":    round2(roiPercent),
		"profit":         round2(profit),
		"roi_annual":     round2(roiAnnual),
		"monthly_return": round2(monthlyReturn),
		"investment":     investment,
		"final_value":    finalValue,
		"time_period":    timePeriod,
		"is_profitable":  profit > 0,
		"roi_rating":     roiRating(roiAnnual),
	}, nil
}

func roiRating(annualROI float64) string {
	switch {
	case annualROI < 0:
		return "poor"
	case annualROI < 5:
		return "below_average"
	case annualROI < 10:
		return "average"
	case annualROI < 15:
		return "good"
	case annualROI < 25:
		return "excellent"
	default:
		return "exceptional"
	}
}
