package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/enhance"
	"github.com/matsen/apalint/internal/importer"
	"github.com/matsen/apalint/internal/storage"
	"github.com/matsen/apalint/internal/validate"
)

var (
	checkHistory      string
	checkKeepSuffixes bool
)

func init() {
	checkCmd.Flags().BoolVar(&useAI, "ai", false, "Enhance structure detection with the configured AI provider")
	checkCmd.Flags().StringVar(&checkHistory, "history", "", "Append the report to this JSONL history file")
	checkCmd.Flags().BoolVar(&checkKeepSuffixes, "keep-suffixes", false, "Trust year suffixes in the reference list instead of reassigning them")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Check a document for APA compliance",
	Long: `Import a document and validate it. Exits with status 3 when the
report contains errors.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// CheckResponse is the response for the check command.
type CheckResponse struct {
	File          string              `json:"file"`
	Report        validate.Report     `json:"report"`
	Enhancement   *enhance.MergeStats `json:"enhancement,omitempty"`
	References    int                 `json:"references"`
	Unparsed      int                 `json:"unparsed_references"`
	Disambiguated int                 `json:"disambiguated"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	opts, closeCache := mustImportOptions(cfg)
	defer closeCache()
	opts.KeepSuffixes = checkKeepSuffixes

	res := mustImport(cmd.Context(), args[0], opts)

	if checkHistory != "" {
		if err := storage.AppendReport(checkHistory, res.Report); err != nil {
			exitWithError(ExitError, "writing history: %v", err)
		}
	}

	if humanOutput {
		printReportHuman(res.Report)
	} else {
		outputJSON(CheckResponse{
			File:          args[0],
			Report:        res.Report,
			Enhancement:   res.Enhancement,
			References:    len(res.Document.ReferencesParsed),
			Unparsed:      len(res.Document.UnparsedReferences),
			Disambiguated: res.Disambiguated,
		})
	}

	if !res.Report.Passed() {
		closeCache()
		os.Exit(ExitDataError)
	}
	return nil
}

// mustImport runs the pipeline over path, exits on error.
func mustImport(ctx context.Context, path string, opts importer.Options) *importer.Result {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := importer.ImportFile(ctx, path, opts)
	if err != nil {
		if errors.Is(err, blocks.ErrUnsupportedFormat) {
			exitWithError(ExitError, "%v (supported: .pdf, .docx, .md, .txt)", err)
		}
		exitWithError(ExitDataError, "importing %s: %v", path, err)
	}
	return res
}
