package domain

import "time"

// Regulation is the stored summary of one fetched regulation document:
// the reference that located it, the reporting date it was resolved at,
// and the computed word count and content checksum.
type Regulation struct {
	ID        int64        `json:"id"`
	AgencyID  int64        `json:"agency_id"`
	Reference CFRReference `json:"reference"`
	Date      time.Time    `json:"date"`
	WordCount int          `json:"word_count"`
	Checksum  string       `json:"checksum"`
}
