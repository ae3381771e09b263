package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/apalint/internal/export"
	"github.com/matsen/apalint/internal/refparse"
	"github.com/matsen/apalint/internal/storage"
)

var parseRefBibTeX bool

func init() {
	parseRefCmd.Flags().BoolVar(&parseRefBibTeX, "bibtex", false, "Print BibTeX instead of JSONL")
	rootCmd.AddCommand(parseRefCmd)
}

var parseRefCmd = &cobra.Command{
	Use:   "parse-ref [ENTRY...]",
	Short: "Parse APA or BibTeX reference entries",
	Long: `Parse each argument as one reference entry. With no arguments, read
one entry per line from stdin. Entries that fail to parse are reported on
stderr and the command exits with status 3.`,
	RunE: runParseRef,
}

func runParseRef(cmd *cobra.Command, args []string) error {
	entries := args
	if len(entries) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				entries = append(entries, line)
			}
		}
		if err := scanner.Err(); err != nil {
			exitWithError(ExitError, "reading stdin: %v", err)
		}
	}

	parsed, errs := refparse.New().ParseAll(entries)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	switch {
	case parseRefBibTeX:
		os.Stdout.WriteString(export.ToBibTeXList(parsed))
	case humanOutput:
		for _, r := range parsed {
			outputHuman("%s\n", formatReferenceShort(r))
		}
	default:
		if err := storage.WriteReferences(os.Stdout, parsed); err != nil {
			return err
		}
	}

	if len(errs) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}
