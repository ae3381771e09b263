package export

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/apalint/internal/reference"
	"github.com/matsen/apalint/internal/refparse"
)

var (
	// entryStartRe matches an entry start: @type{key,
	entryStartRe = regexp.MustCompile(`@\w+\{([^,]+),`)
	// doiFieldRe matches doi = {value} or doi = "value".
	doiFieldRe = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	Keys map[string]bool
	// DOIs maps normalized DOIs to citation keys.
	DOIs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry reports whether an entry with the DOI, or failing that the key,
// is already indexed.
func (idx *BibTeXIndex) HasEntry(key, doi string) bool {
	if doi != "" {
		if _, ok := idx.DOIs[refparse.NormalizeDOI(doi)]; ok {
			return true
		}
	}
	return idx.Keys[key]
}

func (idx *BibTeXIndex) add(key, doi string) {
	idx.Keys[key] = true
	if doi = refparse.NormalizeDOI(doi); doi != "" {
		idx.DOIs[doi] = key
	}
}

// ParseBibTeXFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string
	for scanner.Scan() {
		line := scanner.Text()
		if m := entryStartRe.FindStringSubmatch(line); m != nil {
			currentKey = strings.TrimSpace(m[1])
			idx.Keys[currentKey] = true
		}
		if m := doiFieldRe.FindStringSubmatch(line); m != nil && currentKey != "" {
			idx.add(currentKey, m[1])
		}
	}
	return idx, scanner.Err()
}

// AppendNew appends the references not already in the .bib file at path
// and returns how many were written.
func AppendNew(path string, refs []reference.Reference) (int, error) {
	idx, err := ParseBibTeXFile(path)
	if err != nil {
		return 0, fmt.Errorf("indexing %s: %w", path, err)
	}

	var entries []string
	for i, key := range uniqueKeys(refs) {
		if idx.HasEntry(key, refs[i].DOI) {
			continue
		}
		idx.add(key, refs[i].DOI)
		entries = append(entries, ToBibTeX(refs[i], key))
	}
	if len(entries) == 0 {
		return 0, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return 0, err
	}
	if _, err := file.WriteString("\n" + strings.Join(entries, "\n")); err != nil {
		file.Close()
		return 0, err
	}
	return len(entries), file.Close()
}
