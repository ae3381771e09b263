// Package enhance sends selected parts of a document to a language model
// and merges the structured answers into the mechanically classified
// document. Enhancement is best effort: a chunk that fails is logged and
// skipped, never surfaced as an error to the caller.
package enhance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// Sentinel errors.
var (
	ErrNoAPIKey         = errors.New("AI provider API key not set")
	ErrUnknownProvider  = errors.New("unknown AI provider")
	ErrSchemaMismatch   = errors.New("provider output does not match the result schema")
	ErrEmptyResponse    = errors.New("provider returned no content")
	ErrMalformedPayload = errors.New("provider returned malformed JSON")
)

// Kind names the region of the document a chunk was cut from.
type Kind string

const (
	KindFront Kind = "front" // title page and abstract
	KindBack  Kind = "back"  // reference list
	KindTOC   Kind = "toc"   // table of contents
)

// Chunk is one piece of document text sent to a provider.
type Chunk struct {
	Index int    `json:"index"`
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
}

// Hash identifies the chunk content for caching.
func (c Chunk) Hash() string {
	sum := sha256.Sum256([]byte(string(c.Kind) + "\x00" + c.Text))
	return hex.EncodeToString(sum[:])
}

// Provider turns a chunk into JSON conforming to schema.
type Provider interface {
	// Name identifies the provider and model, e.g. "gemini/gemini-2.0-flash".
	Name() string
	Enhance(ctx context.Context, c Chunk, schema json.RawMessage) (json.RawMessage, error)
}

// Cache stores validated provider output across runs.
type Cache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Put(ctx context.Context, key, provider string, data json.RawMessage) error
}

// TitlePage is the title page as reported by a provider.
type TitlePage struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	University string   `json:"university"`
	Course     string   `json:"course"`
	Instructor string   `json:"instructor"`
	DueDate    string   `json:"due_date"`
}

// Section is one table-of-contents entry.
type Section struct {
	HeadingLevel int    `json:"heading_level"`
	Title        string `json:"title"`
}

// Reference is a reference-list entry as reported by a provider. Only
// RawText is used when merging; the other fields are informational.
type Reference struct {
	RawText string   `json:"raw_text"`
	Authors []string `json:"authors"`
	Year    string   `json:"year"`
	Title   string   `json:"title"`
	Source  string   `json:"source"`
}

// Result is the structured answer for one chunk.
type Result struct {
	TitlePage  *TitlePage  `json:"title_page"`
	Abstract   *string     `json:"abstract"`
	Keywords   []string    `json:"keywords"`
	Sections   []Section   `json:"sections"`
	References []Reference `json:"references"`
}

// Outcome is what happened to one chunk.
type Outcome struct {
	Chunk  Chunk
	Result *Result // nil when Err is set
	Err    error
	Cached bool
}
