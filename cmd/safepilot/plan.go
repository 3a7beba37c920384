package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/safepilot/safepilot/pkg/extract"
	"github.com/safepilot/safepilot/pkg/plan"
	"github.com/safepilot/safepilot/pkg/presenter"
	"github.com/safepilot/safepilot/pkg/schema"
	"github.com/safepilot/safepilot/pkg/types/recommendation"
)

type PlanConfig struct {
	OpenTag   string
	CloseTag  string
	MaxSize   int
	Execute   bool
	NoConfirm bool
}

func NewPlanConfig() *PlanConfig {
	return &PlanConfig{
		OpenTag:   "",
		CloseTag:  "",
		MaxSize:   0,
		Execute:   false,
		NoConfirm: false,
	}
}

var planCmd = &cobra.Command{
	Use:   "plan [file]",
	Short: "Extract a commit recommendation and plan the git commands",
	Long: `Extract the <COMMIT_RECOMMENDATION> block from agent output (a file or
stdin), validate it, and print the git staging and commit commands it
implies. With --execute, apply the commands after explicit confirmation.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getPlanConfigFromFlags(cmd)

		document, err := readDocument(args)
		if err != nil {
			presenter.Error(err, "Failed to read agent output")
			os.Exit(1)
		}

		desc, err := schema.Lookup(schema.CommitRecommendation)
		if err != nil {
			presenter.Error(err, "Failed to resolve schema")
			os.Exit(1)
		}

		rec, err := extract.Extract(ctx, document, desc, extractOptions(config.OpenTag, config.CloseTag, config.MaxSize)...)
		if err != nil {
			presenter.Error(err, "Failed to extract commit recommendation")
			os.Exit(1)
		}

		printSummary(rec)

		p := plan.Build(rec)
		if p.Blocked() {
			presenter.Warning(p.BlockedReason)
			os.Exit(1)
		}

		if len(p.Steps) == 0 {
			presenter.Info("No commits proposed.")
			return
		}

		presenter.Section("Git commands")
		for _, argv := range p.GitCommands() {
			presenter.Info(plan.RenderCommand(argv))
		}

		if !config.Execute {
			presenter.Warning("Review the commands above, then re-run with --execute to apply them.")
			return
		}

		if !config.NoConfirm {
			response := presenter.Prompt(fmt.Sprintf("Apply %d commit(s)?", len(rec.Commits)), "y/N")
			if resp := strings.ToLower(response); resp != "y" && resp != "yes" {
				presenter.Info("Aborted.")
				return
			}
		}

		if err := executePlan(ctx, p); err != nil {
			presenter.Error(err, "Failed to apply the plan")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Applied %d commit(s)", len(rec.Commits)))
	},
}

func init() {
	defaults := NewPlanConfig()
	planCmd.Flags().String("open-tag", defaults.OpenTag, "Override the open tag to search for")
	planCmd.Flags().String("close-tag", defaults.CloseTag, "Override the close tag to search for")
	planCmd.Flags().Int("max-size", defaults.MaxSize, "Maximum document size in bytes (0 uses the default ceiling)")
	planCmd.Flags().Bool("execute", defaults.Execute, "Apply the planned git commands after confirmation")
	planCmd.Flags().Bool("no-confirm", defaults.NoConfirm, "Skip the confirmation prompt when executing")
}

func getPlanConfigFromFlags(cmd *cobra.Command) *PlanConfig {
	config := NewPlanConfig()

	if openTag, err := cmd.Flags().GetString("open-tag"); err == nil {
		config.OpenTag = openTag
	}
	if closeTag, err := cmd.Flags().GetString("close-tag"); err == nil {
		config.CloseTag = closeTag
	}
	if maxSize, err := cmd.Flags().GetInt("max-size"); err == nil {
		config.MaxSize = maxSize
	}
	if execute, err := cmd.Flags().GetBool("execute"); err == nil {
		config.Execute = execute
	}
	if noConfirm, err := cmd.Flags().GetBool("no-confirm"); err == nil {
		config.NoConfirm = noConfirm
	}

	return config
}

func extractOptions(openTag, closeTag string, maxSize int) []extract.Option {
	var opts []extract.Option
	if openTag != "" && closeTag != "" {
		opts = append(opts, extract.WithTags(openTag, closeTag))
	}
	if maxSize > 0 {
		opts = append(opts, extract.WithMaxDocumentSize(maxSize))
	}
	return opts
}

// readDocument reads the agent output from the file argument, or stdin
// when no argument is given.
func readDocument(args []string) (string, error) {
	if len(args) > 0 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", errors.Wrapf(err, "failed to read %s", args[0])
		}
		return string(content), nil
	}

	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read stdin")
	}
	return string(content), nil
}

func printSummary(rec *recommendation.Recommendation) {
	presenter.Section("Commit recommendation")
	presenter.Info(fmt.Sprintf("Status: %s", strings.ToUpper(rec.Status)))

	scan := "FAIL"
	if rec.SecurityScanPassed {
		scan = "PASS"
	}
	presenter.Info(fmt.Sprintf("Security scan: %s", scan))
	presenter.Info(fmt.Sprintf("Issues found: %d", rec.IssuesFound))
	presenter.Info(fmt.Sprintf("Commits proposed: %d", rec.CommitsProposed))

	for _, commit := range rec.Commits {
		presenter.Separator()
		presenter.Info(fmt.Sprintf("Commit %d: %s", commit.ID, plan.FormatMessage(commit)))
		presenter.Info(fmt.Sprintf("Files (%d):", len(commit.Files)))
		for _, file := range commit.Files {
			presenter.Info("  - " + file)
		}
		if commit.Breaking {
			presenter.Warning("BREAKING CHANGE")
		}
	}
}

// executePlan runs the staging and commit steps in order. Commit messages
// go through a temp file so multi-line bodies survive intact.
func executePlan(ctx context.Context, p *plan.ActionPlan) error {
	for _, step := range p.Steps {
		switch step.Kind {
		case plan.StepStage:
			cmd := exec.CommandContext(ctx, "git", append([]string{"add"}, step.Files...)...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if err := cmd.Run(); err != nil {
				return errors.Wrapf(err, "failed to stage %s", strings.Join(step.Files, " "))
			}
		case plan.StepCommit:
			if err := createCommit(ctx, step.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

func createCommit(ctx context.Context, message string) error {
	tempFile, err := os.CreateTemp("", "safepilot-commit-*.txt")
	if err != nil {
		return errors.Wrap(err, "error creating temporary file")
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.WriteString(message); err != nil {
		return errors.Wrap(err, "error writing to temporary file")
	}
	tempFile.Close()

	cmd := exec.CommandContext(ctx, "git", "commit", "-F", tempFile.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
