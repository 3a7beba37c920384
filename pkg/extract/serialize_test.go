package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safepilot/safepilot/pkg/types/recommendation"
)

func TestSerializeRoundTrip(t *testing.T) {
	original := &recommendation.Recommendation{
		Status:             "safe",
		SecurityScanPassed: true,
		IssuesFound:        0,
		CommitsProposed:    2,
		Commits: []recommendation.CommitEntry{
			{
				ID:      1,
				Type:    recommendation.CommitTypeFeat,
				Scope:   "parser",
				Subject: "add block extraction",
				Body:    "Adds tag location and body parsing.\nHandles missing close tags.",
				Files:   []string{"extract.go", "extract_test.go"},
				Closes:  "Closes #7",
			},
			{
				ID:       2,
				Type:     recommendation.CommitTypeRefactor,
				Subject:  "split validation from parsing",
				Files:    []string{"extract.go"},
				Breaking: true,
			},
		},
	}

	document, err := Serialize(original)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(document, "<COMMIT_RECOMMENDATION>\n"))
	assert.True(t, strings.HasSuffix(document, "</COMMIT_RECOMMENDATION>\n"))

	reparsed, err := Extract(context.Background(), document, commitDescriptor(t))
	require.NoError(t, err)
	assert.Equal(t, original, reparsed)
}

func TestSerializeBlocked(t *testing.T) {
	original := &recommendation.Recommendation{
		Status:          "blocked",
		IssuesFound:     2,
		CommitsProposed: 0,
	}

	document, err := Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, document, "status: blocked")
	assert.Contains(t, document, "security_scan: fail")
	assert.Contains(t, document, "issues_found: 2")

	reparsed, err := Extract(context.Background(), document, commitDescriptor(t))
	require.NoError(t, err)
	assert.Equal(t, "blocked", reparsed.Status)
	assert.Equal(t, 2, reparsed.IssuesFound)
	assert.Empty(t, reparsed.Commits)
}
