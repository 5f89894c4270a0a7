package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCFRReferenceValidate(t *testing.T) {
	tests := []struct {
		name    string
		ref     CFRReference
		wantErr error
	}{
		{
			name: "title only",
			ref:  CFRReference{Title: 40},
		},
		{
			name: "full scope",
			ref:  CFRReference{Title: 40, Chapter: "I", Subchapter: "C", Part: "52", Subpart: "A"},
		},
		{
			name:    "subchapter without chapter",
			ref:     CFRReference{Title: 40, Subchapter: "C"},
			wantErr: ErrSubchapterWithoutChapter,
		},
		{
			name:    "subpart without part",
			ref:     CFRReference{Title: 40, Subpart: "A"},
			wantErr: ErrSubpartWithoutPart,
		},
		{
			name: "subtitle alone is fine",
			ref:  CFRReference{Title: 2, Subtitle: "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
