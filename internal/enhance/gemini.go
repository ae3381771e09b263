package enhance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini calls Google's Gemini models.
type Gemini struct {
	APIKey string
	Model  string
}

// Name implements Provider.
func (g *Gemini) Name() string { return ProviderGemini + "/" + g.Model }

// Enhance implements Provider.
func (g *Gemini) Enhance(ctx context.Context, c Chunk, schema json.RawMessage) (json.RawMessage, error) {
	if g.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.Model)
	if m == nil {
		return nil, fmt.Errorf("gemini: model %q is nil", g.Model)
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{
			genai.Text(systemPrompt(c.Kind)),
			genai.Text("result.schema.json:\n" + string(schema)),
		},
	}

	resp, err := m.GenerateContent(ctx, genai.Text("Return only JSON. TEXT:\n"+c.Text))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}
	txt := firstText(resp)
	if txt == "" {
		return nil, fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return json.RawMessage(txt), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
