// Package extract locates a tagged structured block inside arbitrary agent
// output, parses the block body against a schema descriptor, and returns a
// validated record or a tagged error. Extraction is deterministic and has
// no side effects beyond warnings logged through the context logger, so
// concurrent calls over different documents need no coordination.
package extract

import (
	"context"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/safepilot/safepilot/pkg/logger"
	"github.com/safepilot/safepilot/pkg/schema"
	"github.com/safepilot/safepilot/pkg/types/recommendation"
)

// Defensive ceilings applied when no override is configured.
const (
	DefaultMaxDocumentSize = 4 << 20   // 4 MiB of surrounding agent output
	DefaultMaxBlockSize    = 256 << 10 // 256 KiB of block body
)

type options struct {
	openTag         string
	closeTag        string
	maxDocumentSize int
	maxBlockSize    int
}

// Option configures a single extraction call.
type Option func(*options)

// WithTags overrides the descriptor's default tag pair.
func WithTags(open, close string) Option {
	return func(o *options) {
		o.openTag = open
		o.closeTag = close
	}
}

// WithMaxDocumentSize overrides the document size ceiling.
func WithMaxDocumentSize(n int) Option {
	return func(o *options) {
		o.maxDocumentSize = n
	}
}

// WithMaxBlockSize overrides the block body size ceiling.
func WithMaxBlockSize(n int) Option {
	return func(o *options) {
		o.maxBlockSize = n
	}
}

func buildOptions(desc *schema.Descriptor, opts []Option) options {
	o := options{
		openTag:         desc.OpenTag,
		closeTag:        desc.CloseTag,
		maxDocumentSize: DefaultMaxDocumentSize,
		maxBlockSize:    DefaultMaxBlockSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Extract locates a commit recommendation block in document, validates it
// against the commit_recommendation schema, and returns the typed record.
// Failures are tagged per the error taxonomy: ErrNotFound, ErrEmpty,
// MalformedError, InvariantViolationError, TooLargeError, or
// schema.ErrUnknownSchema for caller misconfiguration.
func Extract(ctx context.Context, document string, desc *schema.Descriptor, opts ...Option) (*recommendation.Recommendation, error) {
	if desc == nil || desc.Name != schema.CommitRecommendation {
		return nil, errors.Wrap(schema.ErrUnknownSchema, "Extract requires the commit_recommendation schema")
	}

	fields, err := extractFields(ctx, document, desc, buildOptions(desc, opts))
	if err != nil {
		return nil, err
	}

	var rec recommendation.Recommendation
	if err := decodeFields(fields, &rec); err != nil {
		return nil, err
	}

	if err := validateRecommendation(&rec); err != nil {
		return nil, err
	}

	warnLongSubjects(ctx, &rec)

	return &rec, nil
}

// ExtractReview is the reduced-schema variant: status plus action count,
// no commit list.
func ExtractReview(ctx context.Context, document string, desc *schema.Descriptor, opts ...Option) (*recommendation.ReviewSummary, error) {
	if desc == nil || desc.Name != schema.PilotReview {
		return nil, errors.Wrap(schema.ErrUnknownSchema, "ExtractReview requires the pilot_review schema")
	}

	fields, err := extractFields(ctx, document, desc, buildOptions(desc, opts))
	if err != nil {
		return nil, err
	}

	var summary recommendation.ReviewSummary
	if err := decodeFields(fields, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

func decodeFields(fields map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: target,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build field decoder")
	}
	if err := decoder.Decode(fields); err != nil {
		return errors.Wrap(err, "failed to decode validated fields")
	}
	return nil
}

// extractFields runs the schema-independent pipeline: locate the tag pair,
// bound the sizes, parse the body as YAML, and validate the node tree
// against the descriptor. The result is a generic map whose values are
// already coerced to their declared types.
func extractFields(ctx context.Context, document string, desc *schema.Descriptor, o options) (map[string]any, error) {
	body, err := locateBlock(document, o)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}
	if len(doc.Content) == 0 {
		return nil, errors.Wrap(ErrEmpty, "block parses to an empty document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &MalformedError{Reason: "block body must be a key/value mapping", Line: root.Line}
	}

	return walkMapping(ctx, root, desc.Fields)
}

func locateBlock(document string, o options) (string, error) {
	if len(document) > o.maxDocumentSize {
		return "", &TooLargeError{What: "document", Limit: o.maxDocumentSize, Actual: len(document)}
	}

	start := strings.Index(document, o.openTag)
	if start == -1 {
		return "", errors.Wrapf(ErrNotFound, "open tag %q does not occur", o.openTag)
	}

	rest := document[start+len(o.openTag):]
	end := strings.Index(rest, o.closeTag)
	if end == -1 {
		return "", errors.Wrapf(ErrNotFound, "no close tag %q after open tag", o.closeTag)
	}

	body := strings.TrimSpace(rest[:end])
	if body == "" {
		return "", errors.Wrapf(ErrEmpty, "nothing between %q and %q", o.openTag, o.closeTag)
	}
	if len(body) > o.maxBlockSize {
		return "", &TooLargeError{What: "block body", Limit: o.maxBlockSize, Actual: len(body)}
	}

	return body, nil
}

// walkMapping validates a mapping node against a field set. Unrecognized
// keys are logged and skipped; missing required keys are fatal.
func walkMapping(ctx context.Context, node *yaml.Node, fields []schema.Field) (map[string]any, error) {
	result := make(map[string]any, len(fields))

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		field := fieldByName(fields, keyNode.Value)
		if field == nil {
			logger.G(ctx).WithField("key", keyNode.Value).Warn("ignoring unrecognized key")
			continue
		}

		value, err := coerceValue(ctx, field, valueNode)
		if err != nil {
			return nil, err
		}
		result[field.Name] = value
	}

	for _, field := range fields {
		if field.Required {
			if _, ok := result[field.Name]; !ok {
				return nil, &MalformedError{Reason: "missing required key", Key: field.Name, Line: node.Line}
			}
		}
	}

	return result, nil
}

func fieldByName(fields []schema.Field, name string) *schema.Field {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

func coerceValue(ctx context.Context, field *schema.Field, node *yaml.Node) (any, error) {
	switch field.Type {
	case schema.FieldString:
		if node.Kind != yaml.ScalarNode {
			return nil, &MalformedError{Reason: "expected a scalar value", Key: field.Name, Line: node.Line}
		}
		return node.Value, nil

	case schema.FieldEnum:
		if node.Kind != yaml.ScalarNode {
			return nil, &MalformedError{Reason: "expected a scalar value", Key: field.Name, Line: node.Line}
		}
		for _, allowed := range field.Enum {
			if node.Value == allowed {
				return node.Value, nil
			}
		}
		return nil, &MalformedError{
			Reason: "expected one of [" + strings.Join(field.Enum, ", ") + "], found " + strconv.Quote(node.Value),
			Key:    field.Name,
			Line:   node.Line,
		}

	case schema.FieldBool:
		if node.Kind != yaml.ScalarNode {
			return nil, &MalformedError{Reason: "expected a scalar value", Key: field.Name, Line: node.Line}
		}
		switch strings.ToLower(node.Value) {
		case "true", "yes", "pass":
			return true, nil
		case "false", "no", "fail":
			return false, nil
		}
		return nil, &MalformedError{
			Reason: "expected a boolean or pass/fail, found " + strconv.Quote(node.Value),
			Key:    field.Name,
			Line:   node.Line,
		}

	case schema.FieldNonNegativeInt:
		if node.Kind != yaml.ScalarNode {
			return nil, &MalformedError{Reason: "expected a scalar value", Key: field.Name, Line: node.Line}
		}
		n, err := strconv.Atoi(node.Value)
		if err != nil {
			return nil, &MalformedError{
				Reason: "expected an integer, found " + strconv.Quote(node.Value),
				Key:    field.Name,
				Line:   node.Line,
			}
		}
		if n < 0 {
			return nil, &MalformedError{
				Reason: "expected a non-negative integer, found " + node.Value,
				Key:    field.Name,
				Line:   node.Line,
			}
		}
		return n, nil

	case schema.FieldStringList:
		if node.Kind != yaml.SequenceNode {
			return nil, &MalformedError{Reason: "expected a sequence", Key: field.Name, Line: node.Line}
		}
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, &MalformedError{Reason: "expected a sequence of scalars", Key: field.Name, Line: item.Line}
			}
			items = append(items, item.Value)
		}
		return items, nil

	case schema.FieldRecordList:
		if node.Kind != yaml.SequenceNode {
			return nil, &MalformedError{Reason: "expected a sequence", Key: field.Name, Line: node.Line}
		}
		records := make([]map[string]any, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return nil, &MalformedError{Reason: "expected a sequence of mappings", Key: field.Name, Line: item.Line}
			}
			record, err := walkMapping(ctx, item, field.Record)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		return records, nil
	}

	return nil, &MalformedError{Reason: "unsupported field type", Key: field.Name, Line: node.Line}
}

// validateRecommendation applies the semantic consistency rules after
// structural parsing. Violations are never repaired; all broken rules are
// reported together so the caller sees the full picture at once.
func validateRecommendation(rec *recommendation.Recommendation) error {
	var merr *multierror.Error
	proceed := rec.Proceed()

	if rec.IssuesFound > 0 && proceed {
		merr = multierror.Append(merr, &InvariantViolationError{
			Rule:   "issues-require-blocked-status",
			Reason: "issues_found is " + strconv.Itoa(rec.IssuesFound) + " but status is " + strconv.Quote(rec.Status),
		})
	}
	if !proceed && len(rec.Commits) > 0 {
		merr = multierror.Append(merr, &InvariantViolationError{
			Rule:   "blocked-recommendation-has-commits",
			Reason: "status is " + strconv.Quote(rec.Status) + " but " + strconv.Itoa(len(rec.Commits)) + " commit(s) are proposed",
		})
	}
	if proceed && len(rec.Commits) != rec.CommitsProposed {
		merr = multierror.Append(merr, &InvariantViolationError{
			Rule:   "commit-count-mismatch",
			Reason: "commits_proposed is " + strconv.Itoa(rec.CommitsProposed) + " but " + strconv.Itoa(len(rec.Commits)) + " commit(s) are listed",
		})
	}

	seen := make(map[int]bool, len(rec.Commits))
	for _, commit := range rec.Commits {
		if commit.ID <= 0 {
			merr = multierror.Append(merr, &InvariantViolationError{
				Rule:   "commit-id-not-positive",
				Reason: "commit id " + strconv.Itoa(commit.ID) + " must be a positive integer",
			})
		} else if seen[commit.ID] {
			merr = multierror.Append(merr, &InvariantViolationError{
				Rule:   "duplicate-commit-id",
				Reason: "commit id " + strconv.Itoa(commit.ID) + " appears more than once",
			})
		}
		seen[commit.ID] = true

		if strings.TrimSpace(commit.Subject) == "" {
			merr = multierror.Append(merr, &InvariantViolationError{
				Rule:   "empty-commit-subject",
				Reason: "commit " + strconv.Itoa(commit.ID) + " has an empty subject",
			})
		}
		if len(commit.Files) == 0 {
			merr = multierror.Append(merr, &InvariantViolationError{
				Rule:   "empty-commit-files",
				Reason: "commit " + strconv.Itoa(commit.ID) + " lists no files",
			})
		}
	}

	return merr.ErrorOrNil()
}

func warnLongSubjects(ctx context.Context, rec *recommendation.Recommendation) {
	for _, commit := range rec.Commits {
		if len(commit.Subject) > recommendation.SubjectSoftLimit {
			logger.G(ctx).WithFields(map[string]any{
				"commit":  commit.ID,
				"length":  len(commit.Subject),
				"subject": commit.Subject,
			}).Warn("commit subject exceeds recommended length")
		}
	}
}
