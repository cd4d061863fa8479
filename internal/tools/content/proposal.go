// Package content holds the built-in content generators.
package content

import (
	"time"

	"github.com/biztools-dev/biztools/internal/tier"
	"github.com/biztools-dev/biztools/internal/tools"
)

const proposalTemplate = `BUSINESS PROPOSAL

Prepared for: {{client_name}}
Prepared by: {{company_name}}
Date: {{date}}

PROJECT OVERVIEW

{{company_name}} is pleased to submit this proposal for {{project_name}}.

SCOPE OF WORK

{{project_description}}

INVESTMENT

The total investment for this engagement is {{budget}}.

TIMELINE

We estimate delivery within {{timeline}}.

NEXT STEPS

To proceed, please reply to this proposal or contact {{contact_email}}.

We look forward to working with you.

{{company_name}}`

// NewProposalGenerator returns the template-fill business proposal generator.
func NewProposalGenerator() *tools.Descriptor {
	return &tools.Descriptor{
		Slug:         "proposal-generator",
		Name:         "Proposal Generator",
		Description:  "Generate a ready-to-send business proposal from a few details",
		Category:     "content",
		RequiredTier: tier.Free,
		Icon:         "dashicons-media-document",
		Color:        "#8b5cf6",
		Inputs: []tools.Field{
			{Name: "company_name", Label: "Your Company", Kind: tools.FieldText, Required: true},
			{Name: "client_name", Label: "Client Name", Kind: tools.FieldText, Required: true},
			{Name: "project_name", Label: "Project Name", Kind: tools.FieldText, Required: true},
			{Name: "project_description", Label: "Project Description", Kind: tools.FieldText, Required: true},
			{Name: "budget", Label: "Budget", Kind: tools.FieldText, Required: true},
			{Name: "timeline", Label: "Timeline", Kind: tools.FieldText, Required: true},
			{Name: "contact_email", Label: "Contact Email", Kind: tools.FieldEmail, Required: true},
		},
		Template: proposalTemplate,
		Placeholders: map[string]func(tools.Inputs) string{
			"company_name":        func(in tools.Inputs) string { return in.String("company_name") },
			"client_name":         func(in tools.Inputs) string { return in.String("client_name") },
			"project_name":        func(in tools.Inputs) string { return in.String("project_name") },
			"project_description": func(in tools.Inputs) string { return in.String("project_description") },
			"budget":              func(in tools.Inputs) string { return in.String("budget") },
			"timeline":            func(in tools.Inputs) string { return in.String("timeline") },
			"contact_email":       func(in tools.Inputs) string { return in.String("contact_email") },
			"date":                func(tools.Inputs) string { return time.Now().Format("January 2, 2006") },
		},
	}
}
