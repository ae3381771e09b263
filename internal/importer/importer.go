// Package importer runs the full pipeline over one document: block
// extraction, classification, optional AI enhancement, reference
// disambiguation and validation.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/classify"
	"github.com/matsen/apalint/internal/config"
	"github.com/matsen/apalint/internal/disambig"
	"github.com/matsen/apalint/internal/document"
	"github.com/matsen/apalint/internal/enhance"
	_ "github.com/matsen/apalint/internal/pdf" // registers the .pdf opener
	"github.com/matsen/apalint/internal/refparse"
	"github.com/matsen/apalint/internal/validate"
)

// Options configures an import. The zero value runs the mechanical
// pipeline with default settings.
type Options struct {
	Config *config.Config
	// Provider enables AI enhancement when non-nil.
	Provider enhance.Provider
	// Cache stores provider answers across runs. Optional.
	Cache enhance.Cache
	// Parser parses reference entries. Defaults to refparse.
	Parser classify.EntryParser
	// KeepSuffixes skips disambiguation and trusts the suffixes in the
	// reference list.
	KeepSuffixes bool
	Logger       *slog.Logger
	Clock        func() time.Time
}

// Result is the outcome of one import.
type Result struct {
	Document    document.SemanticDocument `json:"document"`
	Report      validate.Report           `json:"report"`
	Enhancement *enhance.MergeStats       `json:"enhancement,omitempty"`
	// Disambiguated counts references that received a year suffix.
	Disambiguated int `json:"disambiguated"`
}

// ImportFile opens path by extension and imports it.
func ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	src, err := blocks.Open(path)
	if err != nil {
		return nil, err
	}
	return Import(ctx, src, opts)
}

// Import runs the pipeline over src.
func Import(ctx context.Context, src blocks.Source, opts Options) (*Result, error) {
	opts = withDefaults(opts)
	logger := opts.Logger

	doc, bs, err := classifySource(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if opts.Provider != nil {
		stats := enhanceDocument(ctx, &doc, bs, opts)
		res.Enhancement = &stats
	}

	if !opts.KeepSuffixes {
		res.Disambiguated = disambig.Disambiguate(doc.ReferencesParsed)
	}

	vopts := []validate.Option{validate.WithLogger(logger)}
	if opts.Clock != nil {
		vopts = append(vopts, validate.WithClock(opts.Clock))
	}
	res.Report = validate.New(opts.Config.ValidatorConfig(), vopts...).Validate(&doc)
	res.Document = doc

	logger.Info("document imported",
		"sections", doc.SectionCount(),
		"references", len(doc.ReferencesParsed),
		"unparsed", len(doc.UnparsedReferences),
		"issues", len(res.Report.Issues),
		"passed", res.Report.Passed())
	return res, nil
}

// Classify extracts and classifies src without enhancing or validating.
func Classify(ctx context.Context, src blocks.Source, opts Options) (document.SemanticDocument, error) {
	doc, _, err := classifySource(ctx, src, withDefaults(opts))
	return doc, err
}

func withDefaults(opts Options) Options {
	if opts.Config == nil {
		cfg := config.Default()
		opts.Config = &cfg
	}
	if opts.Parser == nil {
		opts.Parser = refparse.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

func classifySource(ctx context.Context, src blocks.Source, opts Options) (document.SemanticDocument, []blocks.ContentBlock, error) {
	bs, err := src.Blocks(ctx)
	if err != nil {
		return document.SemanticDocument{}, nil, fmt.Errorf("extracting blocks: %w", err)
	}

	copts := opts.Config.ClassifyOptions()
	copts.Logger = opts.Logger
	doc, err := classify.NewDefault(opts.Parser, copts).Classify(bs)
	if err != nil {
		return document.SemanticDocument{}, nil, fmt.Errorf("classifying: %w", err)
	}

	if ps, ok := src.(blocks.PageSizer); ok {
		size := ps.PageSize()
		if name := size.Name(); name != "" {
			doc.Config.PageSize = name
		}
		if size.HasMargins() {
			const pointsPerInch = 72
			doc.Config.Margins = &document.Margins{
				Top:    size.MarginTop / pointsPerInch,
				Right:  size.MarginRight / pointsPerInch,
				Bottom: size.MarginBottom / pointsPerInch,
				Left:   size.MarginLeft / pointsPerInch,
			}
		}
	}
	return doc, bs, nil
}

func enhanceDocument(ctx context.Context, doc *document.SemanticDocument, bs []blocks.ContentBlock, opts Options) enhance.MergeStats {
	chunks := enhance.Chunks(bs, opts.Config.AI.ChunkChars)
	if len(chunks) == 0 {
		return enhance.MergeStats{}
	}

	ropts := []enhance.RunnerOption{enhance.WithLogger(opts.Logger)}
	if opts.Cache != nil {
		ropts = append(ropts, enhance.WithCache(opts.Cache))
	}
	runner := enhance.NewRunner(opts.Provider, opts.Config.EnhanceOptions(), ropts...)

	outcomes := runner.Run(ctx, chunks)
	stats := enhance.Merge(doc, outcomes, opts.Parser)
	opts.Logger.Info("document enhanced",
		"provider", opts.Provider.Name(),
		"chunks", len(chunks),
		"failed", stats.Failed,
		"title_page", stats.TitlePage,
		"references", stats.References)
	return stats
}
