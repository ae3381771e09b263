package enhance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ResultSchema is the JSON schema every provider answer must satisfy.
var ResultSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "title_page": {
      "type": ["object", "null"],
      "properties": {
        "title": {"type": "string"},
        "authors": {"type": "array", "items": {"type": "string"}},
        "university": {"type": ["string", "null"]},
        "course": {"type": ["string", "null"]},
        "instructor": {"type": ["string", "null"]},
        "due_date": {"type": ["string", "null"]}
      },
      "required": ["title"]
    },
    "abstract": {"type": ["string", "null"]},
    "keywords": {"type": "array", "items": {"type": "string"}},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "heading_level": {"type": "integer", "minimum": 1, "maximum": 5},
          "title": {"type": "string"}
        },
        "required": ["heading_level", "title"]
      }
    },
    "references": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "raw_text": {"type": "string"},
          "authors": {"type": ["array", "null"], "items": {"type": "string"}},
          "year": {"type": ["string", "null"]},
          "title": {"type": ["string", "null"]},
          "source": {"type": ["string", "null"]}
        },
        "required": ["raw_text"]
      }
    }
  }
}`)

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func resultSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("schema.json", bytes.NewReader(ResultSchema)); err != nil {
			compileErr = fmt.Errorf("loading result schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("schema.json")
	})
	return compiledSchema, compileErr
}

// DecodeResult parses raw provider output into a Result. Code fences and
// text around the JSON value are tolerated.
func DecodeResult(content string) (*Result, json.RawMessage, error) {
	parsed, err := parseStructuredJSON(content)
	if err != nil {
		return nil, nil, err
	}

	schema, err := resultSchema()
	if err != nil {
		return nil, nil, err
	}
	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	var res Result
	if err := json.Unmarshal(parsed, &res); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return &res, parsed, nil
}

// schemaMap returns the result schema as a generic map, the form the
// OpenAI structured output API takes.
func schemaMap() map[string]any {
	var m map[string]any
	if err := json.Unmarshal(ResultSchema, &m); err != nil {
		panic(fmt.Sprintf("result schema is not valid JSON: %v", err))
	}
	return m
}

func parseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	for _, candidate := range candidates {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			normalized, err := json.Marshal(parsed)
			if err != nil {
				return nil, fmt.Errorf("normalizing provider output: %w", err)
			}
			return normalized, nil
		}
	}
	return nil, ErrMalformedPayload
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractJSONCandidate returns the outermost object in content. Result is
// always an object, so arrays are not considered.
func extractJSONCandidate(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
