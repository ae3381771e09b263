package reference

// Author is either a person or a group (corporate) author.
type Author struct {
	First         string `json:"first,omitempty"`          // Given name(s) or initials
	Last          string `json:"last,omitempty"`           // Family name
	MiddleInitial string `json:"middle_initial,omitempty"` // Single letter, no period

	Group        string `json:"group,omitempty"`        // Corporate author, e.g. "World Health Organization"
	Abbreviation string `json:"abbreviation,omitempty"` // e.g. "WHO"
}

// IsGroup reports whether the author is a corporate author.
func (a Author) IsGroup() bool {
	return a.Group != ""
}

// Surname returns the name used in in-text citations.
func (a Author) Surname() string {
	if a.IsGroup() {
		return a.Group
	}
	return a.Last
}
