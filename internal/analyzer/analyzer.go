package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/expense-guardian/internal/expense"
)

// DefaultModel is used when model discovery fails or is unavailable.
const DefaultModel = "gemini-2.5-flash"

// Analyzer extracts an expense record from a receipt image.
// Implementations never return an error: every failure mode degrades to
// a well-formed, flagged record so the caller can always proceed.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) expense.Record
}

// generateFunc sends one request to the model and returns the raw text
// response. Injectable so tests can run without a network.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content) (string, error)

// Gemini is the concrete Analyzer backed by the Gemini API.
type Gemini struct {
	apiKey    string
	model     string
	log       zerolog.Logger
	generate  generateFunc
	clientErr error
}

// New creates a Gemini analyzer. An empty apiKey is not an error: the
// analyzer stays offline and degrades every Analyze call instead. When
// a key is present the client is created once and the model name is
// resolved best-effort (falling back to DefaultModel).
func New(ctx context.Context, apiKey string, log zerolog.Logger) *Gemini {
	g := &Gemini{
		apiKey: apiKey,
		model:  DefaultModel,
		log:    log,
	}
	if apiKey == "" {
		log.Warn().Msg("No API key configured - receipt analysis is offline")
		return g
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		g.clientErr = fmt.Errorf("create genai client: %w", err)
		log.Error().Err(err).Msg("Failed to create genai client")
		return g
	}

	g.generate = func(ctx context.Context, model string, contents []*genai.Content) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	g.model = resolveModel(ctx, client, log)

	return g
}

// Model returns the resolved model identifier.
func (g *Gemini) Model() string {
	return g.model
}

// Online reports whether the analyzer has a usable credential.
func (g *Gemini) Online() bool {
	return g.apiKey != "" && g.clientErr == nil
}

// Analyze sends the image to the model and coerces the response into an
// expense record. It never returns an error; see the failure branches
// for the degraded record each one produces.
func (g *Gemini) Analyze(ctx context.Context, image []byte, mimeType string) expense.Record {
	now := time.Now()

	if g.apiKey == "" {
		return missingKeyRecord(now)
	}
	if g.clientErr != nil {
		return failureRecord(now, g.clientErr)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	rawText, err := g.generate(ctx, g.model, contents)
	if err != nil {
		g.log.Error().Err(err).Str("model", g.model).Msg("Receipt analysis request failed")
		return failureRecord(now, err)
	}
	if strings.TrimSpace(rawText) == "" {
		return failureRecord(now, fmt.Errorf("empty response from model"))
	}

	clean := cleanModelJSON(rawText)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		g.log.Error().Err(err).Str("model", g.model).Msg("Model response is not valid JSON")
		return failureRecord(now, fmt.Errorf("unmarshal model response: %w", err))
	}

	rec := expense.FromModelOutput(raw, now)
	g.log.Info().
		Str("record_id", rec.ID).
		Str("vendor", rec.Vendor).
		Str("category", rec.Category).
		Int("risk_score", rec.RiskScore).
		Msg("Receipt analyzed")

	return rec
}

// resolveModel picks the first listed model whose name contains "flash"
// and which supports content generation. Any enumeration failure falls
// back to DefaultModel.
func resolveModel(ctx context.Context, client *genai.Client, log zerolog.Logger) string {
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			log.Warn().Err(err).Str("fallback", DefaultModel).Msg("Model listing failed")
			return DefaultModel
		}
		if !strings.Contains(model.Name, "flash") {
			continue
		}
		if !supportsGeneration(model) {
			continue
		}
		name := strings.TrimPrefix(model.Name, "models/")
		log.Info().Str("model", name).Msg("Resolved flash-tier model")
		return name
	}
	return DefaultModel
}

func supportsGeneration(model *genai.Model) bool {
	for _, action := range model.SupportedActions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}

// missingKeyRecord is the degraded record returned when no credential
// is configured. No request is attempted in this case.
func missingKeyRecord(now time.Time) expense.Record {
	return expense.Record{
		ID:         uuid.NewString(),
		Vendor:     expense.DefaultVendor,
		Date:       civil.DateOf(now),
		Category:   expense.DefaultCategory,
		RiskScore:  0,
		RiskReason: "API Key missing.",
		AnalyzedAt: now,
	}
}

// failureRecord is the degraded record returned for any network,
// decoding or parse failure. The error detail lands in the risk reason
// so the failure stays inspectable.
func failureRecord(now time.Time, err error) expense.Record {
	return expense.Record{
		ID:         uuid.NewString(),
		Vendor:     "Error",
		Date:       civil.DateOf(now),
		Category:   "Error",
		RiskScore:  0,
		RiskReason: fmt.Sprintf("Analysis failed: %v", err),
		AnalyzedAt: now,
	}
}
