package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommitTypeValid(t *testing.T) {
	for _, known := range CommitTypes {
		assert.True(t, known.Valid(), "expected %q to be valid", known)
	}

	assert.False(t, CommitType("feature").Valid())
	assert.False(t, CommitType("").Valid())
}

func TestRecommendationProceed(t *testing.T) {
	tests := []struct {
		status  string
		proceed bool
	}{
		{"safe", true},
		{"approved", true},
		{"blocked", false},
		{"changes_required", false},
		{"", false},
		{"SAFE", false}, // spellings are case-sensitive, enforced upstream by the schema
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			rec := &Recommendation{Status: tt.status}
			assert.Equal(t, tt.proceed, rec.Proceed())

			summary := &ReviewSummary{Status: tt.status}
			assert.Equal(t, tt.proceed, summary.Proceed())
		})
	}
}
