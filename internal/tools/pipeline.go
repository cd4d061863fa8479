package tools

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/biztools-dev/biztools/internal/access"
	"github.com/biztools-dev/biztools/internal/ai"
	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/tier"
)

// Invocation error codes, stable for client branching.
const (
	ErrCodeUpgradeRequired = "upgrade_required"
	ErrCodeRateLimit       = "rate_limit"
	ErrCodeValidation      = "validation"
	ErrCodeCalculation     = "calculation"
	ErrCodeGeneration      = "generation"
	ErrCodeStorage         = "storage"
)

// Authorizer is the pipeline's view of the access policy engine.
type Authorizer interface {
	Authorize(ctx context.Context, tool access.GatedTool, req tier.Requester) access.Result
	RemainingUses(ctx context.Context, tool access.GatedTool, req tier.Requester) (int, error)
}

// CalculationStore persists tool results.
type CalculationStore interface {
	Create(ctx context.Context, calc *models.Calculation) error
}

// UsageStore appends analytics records.
type UsageStore interface {
	Log(ctx context.Context, entry *models.UsageLog) error
}

// InvokeResult is the full outcome of one tool invocation. On denial or
// failure ErrorCode discriminates the cause; Message is safe to show users
// and never leaks internals.
type InvokeResult struct {
	Success       bool                   `json:"success"`
	ErrorCode     string                 `json:"error,omitempty"`
	Message       string                 `json:"message,omitempty"`
	FieldErrors   map[string]string      `json:"errors,omitempty"`
	Results       map[string]interface{} `json:"results,omitempty"`
	Content       string                 `json:"content,omitempty"`
	Remaining     int                    `json:"remaining"`
	ResetAt       *time.Time             `json:"reset_at,omitempty"`
	CalculationID uint                   `json:"calculation_id,omitempty"`
}

// Pipeline sequences authorize -> validate -> compute/generate -> record for
// one invocation.
type Pipeline struct {
	engine       Authorizer
	generator    ai.Generator
	calculations CalculationStore
	usage        UsageStore
}

func NewPipeline(engine Authorizer, generator ai.Generator, calculations CalculationStore, usage UsageStore) *Pipeline {
	return &Pipeline{
		engine:       engine,
		generator:    generator,
		calculations: calculations,
		usage:        usage,
	}
}

// Invoke runs one tool invocation end to end. Denials short-circuit before
// validation; note that validation runs after the quota charge, so a request
// rejected for bad inputs still spends one unit of quota.
func (p *Pipeline) Invoke(ctx context.Context, desc *Descriptor, req tier.Requester, in Inputs, userAgent string) InvokeResult {
	auth := p.engine.Authorize(ctx, desc.Gate(), req)
	if !auth.Allowed {
		return denialResult(auth)
	}

	if fieldErrors := ValidateInputs(desc.Inputs, in); len(fieldErrors) > 0 {
		return InvokeResult{
			ErrorCode:   ErrCodeValidation,
			FieldErrors: fieldErrors,
			Remaining:   auth.Remaining,
		}
	}

	result := InvokeResult{Remaining: auth.Remaining}
	if !auth.ResetAt.IsZero() {
		result.ResetAt = &auth.ResetAt
	}

	var action string

	switch desc.Kind() {
	case KindCalculator:
		outputs, err := desc.Compute(in)
		if err != nil {
			log.Printf("tool %s: calculation failed: %v", desc.Slug, err)
			result.ErrorCode = ErrCodeCalculation
			result.Message = "An error occurred during calculation"
			return result
		}
		result.Results = outputs
		action = models.ActionCalculate

	case KindAI:
		prompt, systemPrompt, err := desc.BuildPrompt(in)
		if err != nil {
			log.Printf("tool %s: prompt build failed: %v", desc.Slug, err)
			result.ErrorCode = ErrCodeGeneration
			result.Message = "AI generation failed"
			return result
		}
		content, err := p.generator.Generate(ctx, prompt, systemPrompt)
		if err != nil {
			log.Printf("tool %s: generation failed: %v", desc.Slug, err)
			result.ErrorCode = ErrCodeGeneration
			result.Message = "AI generation failed"
			return result
		}
		result.Content = content
		action = models.ActionGenerate

	default:
		result.Content = fillTemplate(desc, in)
		action = models.ActionGenerate
	}

	result.Success = true
	p.record(ctx, desc, req, in, &result, action, userAgent)
	return result
}

// Remaining reports how many uses the requester has left without charging
// the quota. Returns -1 for unlimited.
func (p *Pipeline) Remaining(ctx context.Context, desc *Descriptor, req tier.Requester) (int, error) {
	return p.engine.RemainingUses(ctx, desc.Gate(), req)
}

// record persists the calculation and usage log. The computation already
// succeeded, so persistence failures are logged rather than surfaced.
func (p *Pipeline) record(ctx context.Context, desc *Descriptor, req tier.Requester, in Inputs, result *InvokeResult, action, userAgent string) {
	inputData, _ := json.Marshal(in)

	var resultData []byte
	if result.Results != nil {
		resultData, _ = json.Marshal(result.Results)
	} else {
		resultData, _ = json.Marshal(map[string]string{"content": result.Content})
	}

	calc := &models.Calculation{
		UserID:     req.UserID,
		ToolSlug:   desc.Slug,
		InputData:  inputData,
		ResultData: resultData,
		IPAddress:  req.IP,
		UserAgent:  userAgent,
	}

	if p.calculations != nil {
		if err := p.calculations.Create(ctx, calc); err != nil {
			log.Printf("tool %s: failed to save calculation: %v", desc.Slug, err)
		} else {
			result.CalculationID = calc.ID
		}
	}

	if p.usage != nil {
		entry := &models.UsageLog{
			UserID:    req.UserID,
			ToolSlug:  desc.Slug,
			Action:    action,
			IPAddress: req.IP,
			UserAgent: userAgent,
		}
		if err := p.usage.Log(ctx, entry); err != nil {
			log.Printf("tool %s: failed to log usage: %v", desc.Slug, err)
		}
	}
}

func denialResult(auth access.Result) InvokeResult {
	switch auth.Reason {
	case access.ReasonUpgradeRequired:
		return InvokeResult{
			ErrorCode: ErrCodeUpgradeRequired,
			Message:   "Upgrade your plan to access this tool",
		}
	case access.ReasonRateLimited:
		res := InvokeResult{
			ErrorCode: ErrCodeRateLimit,
			Message:   "Daily limit reached. Upgrade for unlimited access.",
			Remaining: 0,
		}
		if !auth.ResetAt.IsZero() {
			res.ResetAt = &auth.ResetAt
		}
		return res
	default:
		if auth.Err != nil {
			log.Printf("authorize failed: %v", auth.Err)
		}
		return InvokeResult{
			ErrorCode: ErrCodeStorage,
			Message:   "A temporary error occurred. Please try again.",
		}
	}
}

func fillTemplate(desc *Descriptor, in Inputs) string {
	content := desc.Template
	for placeholder, fn := range desc.Placeholders {
		content = strings.ReplaceAll(content, "{{"+placeholder+"}}", fn(in))
	}
	return content
}
