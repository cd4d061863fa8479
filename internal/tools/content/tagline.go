package content

import (
	"fmt"

	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/biztools-dev/biztools/internal/tools"
)

const taglineSystemPrompt = "You are a senior brand copywriter. You write short, " +
	"punchy business taglines. Respond with the taglines only, one per line, " +
	"no numbering and no commentary."

// NewTaglineWriter returns the AI-backed tagline writer, available from the
// pro tier up.
func NewTaglineWriter() *tools.Descriptor {
	return &tools.Descriptor{
		Slug:         "tagline-writer",
		Name:         "Tagline Writer",
		Description:  "Generate catchy taglines for your business with AI",
		Category:     "content",
		RequiredTier: tier.Pro,
		Icon:         "dashicons-format-quote",
		Color:        "#f59e0b",
		Inputs: []tools.Field{
			{Name: "business_name", Label: "Business Name", Kind: tools.FieldText, Required: true},
			{Name: "industry", Label: "Industry", Kind: tools.FieldText, Required: true},
			{Name: "audience", Label: "Target Audience", Kind: tools.FieldText, Required: false},
		},
		BuildPrompt: buildTaglinePrompt,
	}
}

func buildTaglinePrompt(in tools.Inputs) (string, string, error) {
	prompt := fmt.Sprintf(
		"Write 5 taglines for %q, a business in the %s industry.",
		in.String("business_name"), in.String("industry"),
	)
	if audience := in.String("audience"); audience != "" {
		prompt += fmt.Sprintf(" The target audience is: %s.", audience)
	}
	return prompt, taglineSystemPrompt, nil
}
