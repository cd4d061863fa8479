package financial

import (
	"errors"
	"math"

	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/biztools-dev/biztools/internal/tools"
)

// NewBreakEvenCalculator returns the break-even point calculator, available
// from the starter tier up.
func NewBreakEvenCalculator() *tools.Descriptor {
	return &tools.Descriptor{
		Slug:         "break-even-calculator",
		Name:         "Break-Even Calculator",
		Description:  "Find how many units you need to sell to cover your costs",
		Category:     "financial",
		RequiredTier: tier.Starter,
		Icon:         "dashicons-chart-bar",
		Color:        "#3b82f6",
		Inputs: []tools.Field{
			{
				Name:        "fixed_costs",
				Label:       "Fixed Costs ($)",
				Kind:        tools.FieldNumber,
				Required:    true,
				Min:         tools.Bound(0),
				Placeholder: "5000",
				Help:        "Total fixed costs per period (rent, salaries, ...)",
			},
			{
				Name:        "price_per_unit",
				Label:       "Price per Unit ($)",
				Kind:        tools.FieldNumber,
				Required:    true,
				Min:         tools.Bound(0),
				Placeholder: "25",
				Help:        "Selling price of a single unit",
			},
			{
				Name:        "cost_per_unit",
				Label:       "Cost per Unit ($)",
				Kind:        tools.FieldNumber,
				Required:    true,
				Min:         tools.Bound(0),
				Placeholder: "10",
				Help:        "Variable cost of producing a single unit",
			},
		},
		Outputs: []tools.Output{
			{Name: "break_even_units", Label: "Break-Even Units", Highlight: true, Help: "Units to sell before turning a profit"},
			{Name: "break_even_revenue", Label: "Break-Even Revenue", Format: "currency", Help: "Revenue at the break-even point"},
			{Name: "contribution_margin", Label: "Contribution Margin", Format: "currency", Help: "Profit each unit contributes toward fixed costs"},
		},
		Compute: computeBreakEven,
	}
}

func computeBreakEven(in tools.Inputs) (map[string]interface{}, error) {
	fixedCosts := in.Float("fixed_costs")
	price := in.Float("price_per_unit")
	cost := in.Float("cost_per_unit")

	margin := price - cost
	if margin <= 0 {
		return nil, errors.New("price per unit must exceed cost per unit")
	}

	units := math.Ceil(fixedCosts / margin)

	return map[string]interface{}{
		"break_even_units":    units,
		"break_even_revenue":  round2(units * price),
		"contribution_margin": round2(margin),
		"fixed_costs":         fixedCosts,
		"price_per_unit":      price,
		"cost_per_unit":       cost,
	}, nil
}
