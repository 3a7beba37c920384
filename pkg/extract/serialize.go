package extract

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/safepilot/safepilot/pkg/schema"
	"github.com/safepilot/safepilot/pkg/types/recommendation"
)

// Serialization mirrors the block-body spelling the extractor accepts, so
// Serialize followed by Extract round-trips to an equal Recommendation.
type commitEntryDoc struct {
	ID       int      `yaml:"id"`
	Type     string   `yaml:"type"`
	Scope    string   `yaml:"scope,omitempty"`
	Subject  string   `yaml:"subject"`
	Body     string   `yaml:"body,omitempty"`
	Files    []string `yaml:"files"`
	Breaking bool     `yaml:"breaking,omitempty"`
	Closes   string   `yaml:"closes,omitempty"`
}

type recommendationDoc struct {
	Status          string           `yaml:"status"`
	SecurityScan    string           `yaml:"security_scan"`
	IssuesFound     int              `yaml:"issues_found"`
	CommitsProposed int              `yaml:"commits_proposed"`
	Commits         []commitEntryDoc `yaml:"commits"`
}

// Serialize renders a Recommendation back into a tagged block using the
// commit_recommendation tag pair and canonical key spellings.
func Serialize(rec *recommendation.Recommendation) (string, error) {
	scan := "fail"
	if rec.SecurityScanPassed {
		scan = "pass"
	}

	doc := recommendationDoc{
		Status:          rec.Status,
		SecurityScan:    scan,
		IssuesFound:     rec.IssuesFound,
		CommitsProposed: rec.CommitsProposed,
		Commits:         make([]commitEntryDoc, 0, len(rec.Commits)),
	}
	for _, commit := range rec.Commits {
		doc.Commits = append(doc.Commits, commitEntryDoc{
			ID:       commit.ID,
			Type:     string(commit.Type),
			Scope:    commit.Scope,
			Subject:  commit.Subject,
			Body:     commit.Body,
			Files:    commit.Files,
			Breaking: commit.Breaking,
			Closes:   commit.Closes,
		})
	}

	body, err := yaml.Marshal(&doc)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize recommendation")
	}

	desc, err := schema.Lookup(schema.CommitRecommendation)
	if err != nil {
		return "", err
	}

	return desc.OpenTag + "\n" + string(body) + desc.CloseTag + "\n", nil
}
