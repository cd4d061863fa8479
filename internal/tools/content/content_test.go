package content

import (
	"testing"
	"time"

	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/biztools-dev/biztools/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalGeneratorPlaceholders(t *testing.T) {
	desc := NewProposalGenerator()
	require.Equal(t, tools.KindGenerator, desc.Kind())
	require.Equal(t, tier.Free, desc.RequiredTier)

	in := tools.Inputs{
		"company_name":        "Acme Consulting",
		"client_name":         "Globex",
		"project_name":        "Website Redesign",
		"project_description": "A full redesign of the marketing site.",
		"budget":              "$12,000",
		"timeline":            "6 weeks",
		"contact_email":       "hello@acme.test",
	}

	content := desc.Template
	for name, fill := range desc.Placeholders {
		assert.Contains(t, content, "{{"+name+"}}")
		if name == "date" {
			assert.NotEmpty(t, fill(in))
			continue
		}
		assert.Equal(t, in.String(name), fill(in))
	}

	assert.NotEmpty(t, desc.Placeholders["date"](nil))
	assert.Contains(t, desc.Placeholders["date"](nil), time.Now().Format("2006"))
}

func TestTaglinePrompt(t *testing.T) {
	desc := NewTaglineWriter()
	require.Equal(t, tools.KindAI, desc.Kind())
	require.Equal(t, tier.Pro, desc.RequiredTier)

	prompt, system, err := desc.BuildPrompt(tools.Inputs{
		"business_name": "Bean There",
		"industry":      "coffee",
		"audience":      "remote workers",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, `"Bean There"`)
	assert.Contains(t, prompt, "coffee")
	assert.Contains(t, prompt, "remote workers")
	assert.NotEmpty(t, system)
}

func TestTaglinePromptNoAudience(t *testing.T) {
	prompt, _, err := NewTaglineWriter().BuildPrompt(tools.Inputs{
		"business_name": "Bean There",
		"industry":      "coffee",
	})
	require.NoError(t, err)
	assert.NotContains(t, prompt, "target audience")
}
