// Package reference defines the core domain types for bibliographic entries.
package reference

import (
	"errors"
	"fmt"
	"strconv"
)

// Type is the APA reference category of an entry.
type Type string

const (
	TypeJournalArticle        Type = "journal_article"
	TypeBook                  Type = "book"
	TypeEditedBook            Type = "edited_book"
	TypeBookChapter           Type = "book_chapter"
	TypeConferencePaper       Type = "conference_paper"
	TypeDissertation          Type = "dissertation"
	TypeWebpage               Type = "webpage"
	TypeReport                Type = "report"
	TypeNewspaper             Type = "newspaper"
	TypeMagazine              Type = "magazine"
	TypeSoftware              Type = "software"
	TypeAudiovisual           Type = "audiovisual"
	TypeSocialMedia           Type = "social_media"
	TypeLegal                 Type = "legal"
	TypePersonalCommunication Type = "personal_communication"
)

var allTypes = []Type{
	TypeJournalArticle, TypeBook, TypeEditedBook, TypeBookChapter,
	TypeConferencePaper, TypeDissertation, TypeWebpage, TypeReport,
	TypeNewspaper, TypeMagazine, TypeSoftware, TypeAudiovisual,
	TypeSocialMedia, TypeLegal, TypePersonalCommunication,
}

// ErrNoAuthors is returned by Validate for an entry that needs at least one author.
var ErrNoAuthors = errors.New("reference has no authors")

// ParseType converts a string to a Type.
func ParseType(s string) (Type, error) {
	for _, t := range allTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown reference type %q", s)
}

// Reference is one entry of a document's reference list.
type Reference struct {
	Type    Type     `json:"type"`
	Authors []Author `json:"authors"`

	// Year is 0 for undated works ("n.d.").
	Year       int    `json:"year,omitempty"`
	YearSuffix string `json:"year_suffix,omitempty"`

	Title     string `json:"title"`
	Source    string `json:"source,omitempty"` // Journal, site, or container title
	Volume    string `json:"volume,omitempty"`
	Issue     string `json:"issue,omitempty"`
	Pages     string `json:"pages,omitempty"`
	DOI       string `json:"doi,omitempty"`
	URL       string `json:"url,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Edition   string `json:"edition,omitempty"`

	Editors      []Author `json:"editors,omitempty"`
	University   string   `json:"university,omitempty"`
	ReportNumber string   `json:"report_number,omitempty"`

	// RawIndex points into the document's raw reference lines, -1 if the
	// entry did not come from a reference list.
	RawIndex int `json:"raw_index"`
}

// IsPersonalCommunication reports whether the entry is cited in text only.
func (r Reference) IsPersonalCommunication() bool {
	return r.Type == TypePersonalCommunication
}

// DisplayYear renders the year the way it appears in citations: "2020",
// "2020a", "n.d." or "n.d.-a".
func (r Reference) DisplayYear() string {
	if r.Year == 0 {
		if r.YearSuffix != "" {
			return "n.d.-" + r.YearSuffix
		}
		return "n.d."
	}
	return strconv.Itoa(r.Year) + r.YearSuffix
}

// FirstSurname returns the citation surname of the first author.
func (r Reference) FirstSurname() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return r.Authors[0].Surname()
}

// Validate checks the structural invariants of an entry.
func (r Reference) Validate() error {
	if len(r.Authors) == 0 && !r.IsPersonalCommunication() {
		return ErrNoAuthors
	}
	if r.Year < 0 {
		return fmt.Errorf("invalid year %d", r.Year)
	}
	return nil
}
