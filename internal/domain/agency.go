package domain

// Agency is one row of the flattened agency hierarchy. Top-level agencies
// carry a nil ParentID; children reference the surrogate id assigned to
// their parent at insert time.
type Agency struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	ShortName     string         `json:"short_name"`
	DisplayName   string         `json:"display_name"`
	SortableName  string         `json:"sortable_name"`
	Slug          string         `json:"slug"`
	CFRReferences []CFRReference `json:"cfr_references"`
	ParentID      *int64         `json:"parent_id,omitempty"`
}
