package enhance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	oaoption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAI calls OpenAI models through the Responses API with a strict JSON
// schema output format.
type OpenAI struct {
	APIKey string
	Model  string
}

// Name implements Provider.
func (o *OpenAI) Name() string { return ProviderOpenAI + "/" + o.Model }

// Enhance implements Provider. The schema argument is ignored in favor of
// ResultSchema, which the API needs as a map.
func (o *OpenAI) Enhance(ctx context.Context, c Chunk, _ json.RawMessage) (json.RawMessage, error) {
	if o.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client := openai.NewClient(oaoption.WithAPIKey(o.APIKey))
	response, err := client.Responses.New(ctx, responses.ResponseNewParams{
		Model:        shared.ChatModel(o.Model),
		Instructions: openai.String(systemPrompt(c.Kind)),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentParamOfInputText(c.Text),
					},
					"user",
				),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema("semantic_result", schemaMap()),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: responses: %w", err)
	}
	txt := response.OutputText()
	if txt == "" {
		return nil, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return json.RawMessage(txt), nil
}
