// Package plan turns a validated Recommendation into an ordered sequence of
// git staging and commit steps. Planning never executes anything; the
// caller owns process access and must obtain explicit approval before
// running any produced command.
package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/safepilot/safepilot/pkg/types/recommendation"
)

// StepKind distinguishes staging from commit creation.
type StepKind int

const (
	// StepStage stages a commit's file list.
	StepStage StepKind = iota
	// StepCommit creates a commit with a formatted message.
	StepCommit
)

// Step is one planned git operation.
type Step struct {
	Kind    StepKind
	Files   []string // StepStage
	Message string   // StepCommit
}

// ActionPlan is the caller-presentable result of planning. A blocked
// recommendation yields no steps and a BlockedReason; a safe one yields a
// stage step followed by a commit step per proposed commit, in original
// order.
type ActionPlan struct {
	Steps         []Step
	BlockedReason string
}

// Blocked reports whether the plan carries no executable steps.
func (p *ActionPlan) Blocked() bool {
	return p.BlockedReason != ""
}

// Build derives an ActionPlan from a Recommendation already validated by
// the extractor. Commits are never reordered or merged.
func Build(rec *recommendation.Recommendation) *ActionPlan {
	if !rec.Proceed() {
		return &ActionPlan{
			BlockedReason: fmt.Sprintf("recommendation is %s: %d issue(s) found, resolve them before committing", rec.Status, rec.IssuesFound),
		}
	}

	steps := make([]Step, 0, 2*len(rec.Commits))
	for _, commit := range rec.Commits {
		steps = append(steps,
			Step{Kind: StepStage, Files: commit.Files},
			Step{Kind: StepCommit, Message: FormatMessage(commit)},
		)
	}

	return &ActionPlan{Steps: steps}
}

// FormatMessage composes a conventional commit message: "type(scope):
// subject", then body, BREAKING CHANGE marker, and closes reference as
// blank-line separated sections.
func FormatMessage(commit recommendation.CommitEntry) string {
	subject := string(commit.Type)
	if commit.Scope != "" {
		subject += "(" + commit.Scope + ")"
	}
	subject += ": " + commit.Subject

	parts := []string{subject}

	if body := strings.TrimSpace(commit.Body); body != "" {
		parts = append(parts, "", body)
	}
	if commit.Breaking {
		parts = append(parts, "", "BREAKING CHANGE: "+commit.Subject)
	}
	if commit.Closes != "" {
		parts = append(parts, "", commit.Closes)
	}

	return strings.Join(parts, "\n")
}

// GitCommands renders the plan as argv vectors, one per step. Returning
// argument vectors instead of shell strings keeps file paths and messages
// safe without quoting rules.
func (p *ActionPlan) GitCommands() [][]string {
	commands := make([][]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		switch step.Kind {
		case StepStage:
			commands = append(commands, append([]string{"git", "add"}, step.Files...))
		case StepCommit:
			commands = append(commands, []string{"git", "commit", "-m", step.Message})
		}
	}
	return commands
}

// RenderCommand formats one argv vector for display, quoting arguments
// that contain whitespace or quotes.
func RenderCommand(argv []string) string {
	rendered := make([]string, 0, len(argv))
	for _, arg := range argv {
		if strings.ContainsAny(arg, " \t\n\"'") {
			rendered = append(rendered, strconv.Quote(arg))
		} else {
			rendered = append(rendered, arg)
		}
	}
	return strings.Join(rendered, " ")
}
