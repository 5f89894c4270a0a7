package domain

import "errors"

var (
	ErrSubchapterWithoutChapter = errors.New("subchapter requires a chapter")
	ErrSubpartWithoutPart       = errors.New("subpart requires a part")
)

// CFRReference identifies the scope of a regulation document within a CFR
// title. Title is always required; the remaining fields narrow the scope
// and may be empty.
type CFRReference struct {
	Title      int    `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
	Chapter    string `json:"chapter,omitempty"`
	Subchapter string `json:"subchapter,omitempty"`
	Part       string `json:"part,omitempty"`
	Subpart    string `json:"subpart,omitempty"`
}

// Validate enforces the structural constraints a reference must satisfy
// before it can be resolved against the document service. A violation is
// a skip condition for callers, not a fault.
func (r CFRReference) Validate() error {
	if r.Subchapter != "" && r.Chapter == "" {
		return ErrSubchapterWithoutChapter
	}
	if r.Subpart != "" && r.Part == "" {
		return ErrSubpartWithoutPart
	}
	return nil
}
