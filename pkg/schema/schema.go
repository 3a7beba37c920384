// Package schema declares the block-body shapes the extractor can validate.
// A Descriptor enumerates the recognized top-level keys of a tagged block,
// which of them are required, and how their values are typed. The two
// built-in descriptors cover the full commit recommendation block and the
// reduced pilot review block; both are instances of the same mechanism, so
// additional shapes only need a new Descriptor, not new parsing code.
package schema

import (
	"github.com/pkg/errors"

	"github.com/safepilot/safepilot/pkg/types/recommendation"
)

// FieldType enumerates the value types a block field can declare.
type FieldType int

const (
	// FieldString accepts any scalar value verbatim.
	FieldString FieldType = iota
	// FieldEnum accepts one of a fixed set of scalar spellings.
	FieldEnum
	// FieldBool accepts YAML booleans plus the pass/fail spellings the
	// agent uses for scan results. pass coerces to true, fail to false.
	FieldBool
	// FieldNonNegativeInt accepts integers >= 0.
	FieldNonNegativeInt
	// FieldStringList accepts a sequence of scalars.
	FieldStringList
	// FieldRecordList accepts a sequence of mappings, each validated
	// against the Record field set.
	FieldRecordList
)

// Field describes a single recognized key.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Enum     []string // FieldEnum only
	Record   []Field  // FieldRecordList only
}

// Descriptor describes the expected shape of one tagged block, including
// the default tag pair used to locate it.
type Descriptor struct {
	Name     string
	OpenTag  string
	CloseTag string
	Fields   []Field
}

// FieldByName returns the descriptor for a top-level key, or nil when the
// key is not recognized.
func (d *Descriptor) FieldByName(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// Built-in schema names.
const (
	CommitRecommendation = "commit_recommendation"
	PilotReview          = "pilot_review"
)

// ErrUnknownSchema indicates a caller misconfiguration: the requested
// schema name has no registered descriptor. It is distinct from the
// input-parsing errors so callers can tell a bad document from a bad call.
var ErrUnknownSchema = errors.New("unknown schema")

var commitTypeEnum = func() []string {
	names := make([]string, 0, len(recommendation.CommitTypes))
	for _, t := range recommendation.CommitTypes {
		names = append(names, string(t))
	}
	return names
}()

var builtins = map[string]*Descriptor{
	CommitRecommendation: {
		Name:     CommitRecommendation,
		OpenTag:  "<COMMIT_RECOMMENDATION>",
		CloseTag: "</COMMIT_RECOMMENDATION>",
		Fields: []Field{
			{Name: "status", Type: FieldEnum, Required: true, Enum: []string{"safe", "blocked"}},
			{Name: "security_scan", Type: FieldBool, Required: true},
			{Name: "issues_found", Type: FieldNonNegativeInt, Required: true},
			{Name: "commits_proposed", Type: FieldNonNegativeInt, Required: true},
			// A blocked recommendation may omit the commits key entirely;
			// the count invariants catch a safe one that does.
			{Name: "commits", Type: FieldRecordList, Record: []Field{
				{Name: "id", Type: FieldNonNegativeInt, Required: true},
				{Name: "type", Type: FieldEnum, Required: true, Enum: commitTypeEnum},
				{Name: "scope", Type: FieldString},
				{Name: "subject", Type: FieldString, Required: true},
				{Name: "body", Type: FieldString},
				{Name: "files", Type: FieldStringList, Required: true},
				{Name: "breaking", Type: FieldBool},
				{Name: "closes", Type: FieldString},
			}},
		},
	},
	PilotReview: {
		Name:     PilotReview,
		OpenTag:  "<OPEN_PILOT_REVIEW>",
		CloseTag: "</OPEN_PILOT_REVIEW>",
		Fields: []Field{
			{Name: "status", Type: FieldEnum, Required: true, Enum: []string{"approved", "changes_required"}},
			{Name: "actions_count", Type: FieldNonNegativeInt, Required: true},
		},
	},
}

// Lookup returns the built-in descriptor registered under name.
func Lookup(name string) (*Descriptor, error) {
	desc, ok := builtins[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSchema, "%q", name)
	}
	return desc, nil
}

// Builtins returns the names of all registered descriptors.
func Builtins() []string {
	return []string{CommitRecommendation, PilotReview}
}
