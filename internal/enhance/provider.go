package enhance

import (
	"fmt"
	"strings"
)

// Provider names accepted by NewProvider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default models per provider.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-5-mini"
)

// NewProvider returns the named provider. An empty model selects the
// provider's default.
func NewProvider(name, model, apiKey string) (Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w for %s", ErrNoAPIKey, name)
	}
	switch strings.ToLower(name) {
	case ProviderGemini:
		if model == "" {
			model = DefaultGeminiModel
		}
		return &Gemini{APIKey: apiKey, Model: model}, nil
	case ProviderOpenAI:
		if model == "" {
			model = DefaultOpenAIModel
		}
		return &OpenAI{APIKey: apiKey, Model: model}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

const promptFront = `You are an APA 7th edition editor. You receive raw text extracted from the
first pages of an academic document, in English or Spanish.

Rules:
- Ignore page numbers and running heads.
- Identify the title page: title, authors, university or institution,
  course, instructor and date.
- Identify the abstract and its keywords if present.
- If early sections (Introduction and so on) appear, list them with their
  heading level (1-5).
- Answer with JSON that follows the given schema. Use null or an empty list
  for anything you cannot determine.`

const promptBack = `You are an APA 7th edition editor. You receive raw text extracted from the
last pages of an academic document, in English or Spanish.

Rules:
- Ignore page numbers and running heads.
- Each reference entry is its own paragraph starting with an author surname.
- For each reference give the full text, authors, year, title and source.
- Do not invent references. Only extract entries present in the text.
- Answer with JSON that follows the given schema.`

const promptTOC = `You are an APA 7th edition editor. You receive the table of contents of an
academic document.

Rules:
- List every section with its heading level (1-5), inferred from
  indentation or numbering.
- Only fill "sections"; leave the other fields empty.
- Answer with JSON that follows the given schema.`

func systemPrompt(k Kind) string {
	switch k {
	case KindBack:
		return promptBack
	case KindTOC:
		return promptTOC
	default:
		return promptFront
	}
}
