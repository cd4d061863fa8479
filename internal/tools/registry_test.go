package tools

import (
	"testing"

	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calcDescriptor(slug, category string, required tier.Tier) *Descriptor {
	return &Descriptor{
		Slug:         slug,
		Name:         slug,
		Category:     category,
		RequiredTier: required,
		Compute: func(in Inputs) (map[string]interface{}, error) {
			return map[string]interface{}{}, nil
		},
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(calcDescriptor("roi-calculator", "financial", tier.Free)))

	d, ok := r.GetBySlug("roi-calculator")
	require.True(t, ok)
	assert.Equal(t, "roi-calculator", d.Slug)

	_, ok = r.GetBySlug("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(calcDescriptor("roi-calculator", "financial", tier.Free)))
	assert.Error(t, r.Register(calcDescriptor("roi-calculator", "financial", tier.Free)))
}

func TestRegistryRejectsBadDescriptors(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(&Descriptor{Name: "no slug"}))

	// No behavior at all.
	assert.Error(t, r.Register(&Descriptor{Slug: "empty-tool"}))

	// Two behaviors.
	d := calcDescriptor("hybrid", "misc", tier.Free)
	d.Template = "something"
	assert.Error(t, r.Register(d))
}

func TestRegistryListFilters(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(calcDescriptor("roi-calculator", "financial", tier.Free)))
	require.NoError(t, r.Register(calcDescriptor("break-even-calculator", "financial", tier.Starter)))
	require.NoError(t, r.Register(calcDescriptor("tagline-writer", "marketing", tier.Pro)))

	assert.Len(t, r.List(ListFilter{}), 3)
	assert.Len(t, r.List(ListFilter{Category: "financial"}), 2)

	free := tier.Free
	starter := tier.Starter
	assert.Len(t, r.List(ListFilter{Tier: &free}), 1)
	assert.Len(t, r.List(ListFilter{Tier: &starter}), 2)
	assert.Empty(t, r.List(ListFilter{Category: "marketing", Tier: &starter}))
}

func TestRegistryListOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(calcDescriptor("b-tool", "misc", tier.Free)))
	require.NoError(t, r.Register(calcDescriptor("a-tool", "misc", tier.Free)))

	list := r.List(ListFilter{})
	require.Len(t, list, 2)
	assert.Equal(t, "b-tool", list[0].Slug)
	assert.Equal(t, "a-tool", list[1].Slug)
}

func TestDescriptorKind(t *testing.T) {
	assert.Equal(t, KindCalculator, calcDescriptor("x", "misc", tier.Free).Kind())

	d := &Descriptor{Slug: "gen", Template: "Hello {{name}}"}
	assert.Equal(t, KindGenerator, d.Kind())

	d = &Descriptor{Slug: "ai", BuildPrompt: func(in Inputs) (string, string, error) { return "", "", nil }}
	assert.Equal(t, KindAI, d.Kind())
}
