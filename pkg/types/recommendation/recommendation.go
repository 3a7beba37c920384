// Package recommendation defines the validated records produced by parsing
// a safe-pilot structured block out of agent output. A Recommendation is
// constructed once by the extractor and treated as a value afterwards;
// nothing in this package mutates one after construction.
package recommendation

// CommitType is the conventional-commit change category.
type CommitType string

const (
	CommitTypeFeat     CommitType = "feat"
	CommitTypeFix      CommitType = "fix"
	CommitTypeDocs     CommitType = "docs"
	CommitTypeStyle    CommitType = "style"
	CommitTypeRefactor CommitType = "refactor"
	CommitTypePerf     CommitType = "perf"
	CommitTypeTest     CommitType = "test"
	CommitTypeChore    CommitType = "chore"
	CommitTypeCI       CommitType = "ci"
	CommitTypeBuild    CommitType = "build"
)

// CommitTypes lists the accepted commit type vocabulary in a stable order.
var CommitTypes = []CommitType{
	CommitTypeFeat,
	CommitTypeFix,
	CommitTypeDocs,
	CommitTypeStyle,
	CommitTypeRefactor,
	CommitTypePerf,
	CommitTypeTest,
	CommitTypeChore,
	CommitTypeCI,
	CommitTypeBuild,
}

// Valid reports whether t belongs to the accepted vocabulary.
func (t CommitType) Valid() bool {
	for _, known := range CommitTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SubjectSoftLimit is the recommended maximum subject length. Exceeding it
// produces a warning during extraction, never a failure.
const SubjectSoftLimit = 50

// CommitEntry is one proposed commit inside a Recommendation. Order of
// appearance defines the application order.
type CommitEntry struct {
	ID       int        `mapstructure:"id"`
	Type     CommitType `mapstructure:"type"`
	Scope    string     `mapstructure:"scope"`
	Subject  string     `mapstructure:"subject"`
	Body     string     `mapstructure:"body"`
	Files    []string   `mapstructure:"files"`
	Breaking bool       `mapstructure:"breaking"`
	Closes   string     `mapstructure:"closes"`
}

// Recommendation is the validated result of extracting a commit
// recommendation block. Status keeps the schema-local spelling (safe,
// blocked, approved, changes_required); the binary meaning is exposed
// through Proceed.
type Recommendation struct {
	Status             string        `mapstructure:"status"`
	SecurityScanPassed bool          `mapstructure:"security_scan"`
	IssuesFound        int           `mapstructure:"issues_found"`
	CommitsProposed    int           `mapstructure:"commits_proposed"`
	Commits            []CommitEntry `mapstructure:"commits"`
}

// ReviewSummary is the validated result of extracting the reduced pilot
// review block: a status and an action count, no commit list.
type ReviewSummary struct {
	Status       string `mapstructure:"status"`
	ActionsCount int    `mapstructure:"actions_count"`
}

// proceedStatuses is the union of the per-schema "go ahead" spellings.
// Each schema only admits its own spelling; the union is safe here because
// the extractor has already validated membership against the schema.
var proceedStatuses = map[string]bool{
	"safe":     true,
	"approved": true,
}

// Proceed reports whether the recommendation allows commits to be applied.
func (r *Recommendation) Proceed() bool {
	return proceedStatuses[r.Status]
}

// Proceed reports whether the review allows the proposed actions.
func (s *ReviewSummary) Proceed() bool {
	return proceedStatuses[s.Status]
}
