package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/document"
	"github.com/matsen/apalint/internal/importer"
)

func init() {
	classifyCmd.Flags().BoolVar(&useAI, "ai", false, "Enhance structure detection with the configured AI provider")
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify FILE",
	Short: "Print the recovered document structure",
	Long: `Extract and classify a document and print the semantic document:
title page, abstract, keywords, sections and reference list.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	opts, closeCache := mustImportOptions(cfg)
	defer closeCache()

	var doc document.SemanticDocument
	if useAI {
		doc = mustImport(cmd.Context(), args[0], opts).Document
	} else {
		src, err := blocks.Open(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		doc, err = importer.Classify(cmd.Context(), src, opts)
		if err != nil {
			exitWithError(ExitDataError, "classifying %s: %v", args[0], err)
		}
	}

	if humanOutput {
		printDocumentHuman(&doc)
		return nil
	}
	return outputJSON(doc)
}

func printDocumentHuman(doc *document.SemanticDocument) {
	if tp := doc.TitlePage; tp != nil && tp.Confidence > 0 {
		outputHuman("Title: %s (confidence %.2f)\n", tp.Title, tp.Confidence)
		if len(tp.Authors) > 0 {
			outputHuman("Authors: %s\n", strings.Join(tp.Authors, "; "))
		}
		if tp.Affiliation != "" {
			outputHuman("Affiliation: %s\n", tp.Affiliation)
		}
	} else {
		outputHuman("Title page: not detected\n")
	}

	if doc.Abstract != nil {
		outputHuman("Abstract: %d words\n", len(strings.Fields(*doc.Abstract)))
	}
	if len(doc.Keywords) > 0 {
		outputHuman("Keywords: %s\n", strings.Join(doc.Keywords, ", "))
	}

	outputHuman("\nSections:\n")
	doc.Walk(func(path []int, s *document.Section) {
		title := s.Title()
		if title == "" {
			title = "(untitled)"
		}
		indent := strings.Repeat("  ", len(path))
		outputHuman("%s%s\n", indent, title)
		if s.Content != "" {
			outputHuman("%s  %s\n", indent, truncateString(strings.ReplaceAll(s.Content, "\n", " "), ExcerptMaxLen))
		}
	})

	outputHuman("\nReferences: %d parsed, %d unparsed\n", len(doc.ReferencesParsed), len(doc.UnparsedReferences))
	for _, r := range doc.ReferencesParsed {
		outputHuman("  %s\n", formatReferenceShort(r))
	}
	for _, i := range doc.UnparsedReferences {
		outputHuman("  ? %s\n", truncateString(doc.ReferencesRaw[i], ExcerptMaxLen))
	}
}
