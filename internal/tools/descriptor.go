package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biztools-dev/biztools/internal/access"
	"github.com/biztools-dev/biztools/internal/tier"
)

// Tool kinds, derived from which behavior a descriptor carries.
const (
	KindCalculator = "calculator"
	KindGenerator  = "generator"
	KindAI         = "ai"
)

type FieldKind string

const (
	FieldNumber  FieldKind = "number"
	FieldInteger FieldKind = "integer"
	FieldEmail   FieldKind = "email"
	FieldText    FieldKind = "text"
)

// Field declares one input of a tool: its kind, whether it is required and
// optional numeric bounds.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Required    bool      `json:"required"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Help        string    `json:"help,omitempty"`
}

// Bound is a convenience for Field.Min/Max literals.
func Bound(v float64) *float64 {
	return &v
}

// Output declares one result value a tool produces, for client rendering.
type Output struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Format    string `json:"format,omitempty"` // currency, percentage, text
	Highlight bool   `json:"highlight,omitempty"`
	Help      string `json:"help,omitempty"`
}

// Inputs is the raw invocation payload. Values arrive as JSON types; the
// accessors coerce strings the way HTML forms deliver numbers.
type Inputs map[string]interface{}

func (in Inputs) Float(name string) float64 {
	switch v := in[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

func (in Inputs) Int(name string) int {
	return int(in.Float(name))
}

func (in Inputs) String(name string) string {
	switch v := in[name].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ComputeFunc is a pure calculation over validated inputs.
type ComputeFunc func(in Inputs) (map[string]interface{}, error)

// PromptFunc builds the prompt pair an AI tool sends to the provider.
type PromptFunc func(in Inputs) (prompt, systemPrompt string, err error)

// Descriptor is the immutable registration record for one tool. Exactly one
// behavior must be set: Compute (calculator), BuildPrompt (AI) or Template
// (generator). Descriptors are never mutated after Register.
type Descriptor struct {
	Slug         string
	Name         string
	Description  string
	Category     string
	RequiredTier tier.Tier
	Icon         string
	Color        string

	Inputs  []Field
	Outputs []Output

	// Limits overrides the catalog-wide rate limit policy when set.
	Limits access.Policy

	Compute      ComputeFunc
	BuildPrompt  PromptFunc
	Template     string
	Placeholders map[string]func(Inputs) string
}

// Kind reports which behavior this descriptor carries.
func (d *Descriptor) Kind() string {
	switch {
	case d.Compute != nil:
		return KindCalculator
	case d.BuildPrompt != nil:
		return KindAI
	default:
		return KindGenerator
	}
}

// Gate returns the slice of the descriptor the access engine consumes.
func (d *Descriptor) Gate() access.GatedTool {
	return access.GatedTool{
		Slug:         d.Slug,
		RequiredTier: d.RequiredTier,
		Policy:       d.Limits,
	}
}

func (d *Descriptor) behaviors() int {
	n := 0
	if d.Compute != nil {
		n++
	}
	if d.BuildPrompt != nil {
		n++
	}
	if d.Template != "" {
		n++
	}
	return n
}

// Metadata is the client-facing view of a descriptor.
type Metadata struct {
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	RequiredTier string   `json:"required_tier"`
	Kind         string   `json:"kind"`
	Icon         string   `json:"icon,omitempty"`
	Color        string   `json:"color,omitempty"`
	Inputs       []Field  `json:"inputs"`
	Outputs      []Output `json:"outputs,omitempty"`
}

func (d *Descriptor) Metadata() Metadata {
	return Metadata{
		Slug:         d.Slug,
		Name:         d.Name,
		Description:  d.Description,
		Category:     d.Category,
		RequiredTier: d.RequiredTier.String(),
		Kind:         d.Kind(),
		Icon:         d.Icon,
		Color:        d.Color,
		Inputs:       d.Inputs,
		Outputs:      d.Outputs,
	}
}
