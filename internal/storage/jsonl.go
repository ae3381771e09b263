// Package storage handles persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matsen/apalint/internal/reference"
	"github.com/matsen/apalint/internal/validate"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadReferences decodes one reference per line from r. Blank lines are skipped.
func ReadReferences(r io.Reader) ([]reference.Reference, error) {
	var refs []reference.Reference
	scanner := bufio.NewScanner(r)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		ref := reference.Reference{RawIndex: -1}
		if err := json.Unmarshal(line, &ref); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		refs = append(refs, ref)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading references: %w", err)
	}
	return refs, nil
}

// ReadAll reads all references from a JSONL file. A missing file is empty.
func ReadAll(path string) ([]reference.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening refs file: %w", err)
	}
	defer f.Close()

	return ReadReferences(f)
}

// WriteReferences encodes refs to w, one per line.
func WriteReferences(w io.Writer, refs []reference.Reference) error {
	for i, ref := range refs {
		if err := writeLine(w, ref); err != nil {
			return fmt.Errorf("writing reference %d: %w", i, err)
		}
	}
	return nil
}

// WriteAll writes all references to a JSONL file, replacing existing content.
func WriteAll(path string, refs []reference.Reference) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating refs file: %w", err)
	}
	if err := WriteReferences(f, refs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Append adds a reference to the end of a JSONL file.
func Append(path string, ref reference.Reference) error {
	return appendLine(path, ref)
}

// AppendReport adds a validation report to a JSONL history file.
func AppendReport(path string, r validate.Report) error {
	return appendLine(path, r)
}

// ReadReports reads a report history file. A missing file is empty.
func ReadReports(path string) ([]validate.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening report history: %w", err)
	}
	defer f.Close()

	var reports []validate.Report
	dec := json.NewDecoder(f)
	for {
		var r validate.Report
		if err := dec.Decode(&r); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("parsing report %d: %w", len(reports)+1, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// FindByDOI searches for a reference by DOI.
func FindByDOI(refs []reference.Reference, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, ref := range refs {
		if ref.DOI == doi {
			return i, true
		}
	}
	return -1, false
}

func appendLine(path string, v any) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	if err := writeLine(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	return nil
}
