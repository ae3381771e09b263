// Package classify turns a block sequence into a semantic document with a
// fixed-order chain of zone handlers.
package classify

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/document"
	"github.com/matsen/apalint/internal/reference"
)

// Contract violations. Malformed content never produces an error.
var (
	ErrBlockOrder = errors.New("block positions are not strictly increasing")
	ErrNoHandlers = errors.New("classifier chain has no handlers")
)

// Handler claims a contiguous prefix of blocks (possibly empty), records
// what it found in the builder and returns the unclaimed rest.
type Handler interface {
	Name() string
	Claim(bs []blocks.ContentBlock, b *document.Builder) []blocks.ContentBlock
}

// EntryParser parses one reference-list entry. An error marks the entry as
// unparseable; it is kept raw-only.
type EntryParser interface {
	Parse(raw string) (reference.Reference, error)
}

// Options tunes the default chain.
type Options struct {
	// MaxTitleBlocks caps the title zone.
	MaxTitleBlocks int
	// AbstractMaxWords bounds an unlabeled paragraph taken as the abstract.
	AbstractMaxWords int
	Logger           *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{MaxTitleBlocks: 15, AbstractMaxWords: 250}
}

// Chain runs handlers in order and sends anything left to the body sink.
type Chain struct {
	handlers []Handler
	fallback *BodyHandler
	logger   *slog.Logger
}

// New builds a chain from explicit handlers.
func New(logger *slog.Logger, handlers ...Handler) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		handlers: handlers,
		fallback: &BodyHandler{sink: true},
		logger:   logger,
	}
}

// NewDefault builds the standard chain: title page, abstract, metadata,
// body, references.
func NewDefault(parser EntryParser, opts Options) *Chain {
	def := DefaultOptions()
	if opts.MaxTitleBlocks <= 0 {
		opts.MaxTitleBlocks = def.MaxTitleBlocks
	}
	if opts.AbstractMaxWords <= 0 {
		opts.AbstractMaxWords = def.AbstractMaxWords
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return New(logger,
		&TitlePageHandler{MaxBlocks: opts.MaxTitleBlocks},
		&AbstractHandler{MaxWords: opts.AbstractMaxWords},
		&MetadataHandler{},
		&BodyHandler{},
		&ReferenceHandler{Parser: parser, Logger: logger},
	)
}

// Classify runs the chain over bs. An empty sequence yields an empty
// document. The only errors are contract violations.
func (c *Chain) Classify(bs []blocks.ContentBlock) (document.SemanticDocument, error) {
	if len(c.handlers) == 0 {
		return document.SemanticDocument{}, ErrNoHandlers
	}
	for i := 1; i < len(bs); i++ {
		if bs[i].Position <= bs[i-1].Position {
			return document.SemanticDocument{}, fmt.Errorf("%w: block %d has position %d after %d",
				ErrBlockOrder, i, bs[i].Position, bs[i-1].Position)
		}
	}

	b := document.NewBuilder(bs)
	if len(bs) == 0 {
		return b.Build(), nil
	}

	remaining := bs
	for _, h := range c.handlers {
		before := len(remaining)
		remaining = h.Claim(remaining, b)
		if claimed := before - len(remaining); claimed > 0 {
			c.logger.Debug("handler claimed blocks", "handler", h.Name(), "count", claimed)
		}
	}
	if len(remaining) > 0 {
		c.logger.Debug("unclaimed blocks sent to body", "count", len(remaining), "position", remaining[0].Position)
		c.fallback.Claim(remaining, b)
	}
	return b.Build(), nil
}
