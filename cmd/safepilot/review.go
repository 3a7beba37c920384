package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safepilot/safepilot/pkg/extract"
	"github.com/safepilot/safepilot/pkg/presenter"
	"github.com/safepilot/safepilot/pkg/schema"
)

type ReviewConfig struct {
	OpenTag  string
	CloseTag string
	MaxSize  int
}

func NewReviewConfig() *ReviewConfig {
	return &ReviewConfig{
		OpenTag:  "",
		CloseTag: "",
		MaxSize:  0,
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Extract a pilot review verdict from agent output",
	Long: `Extract the <OPEN_PILOT_REVIEW> block from agent output (a file or
stdin) and report the verdict. Exits non-zero when the review requires
changes, so the command can gate a pipeline.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getReviewConfigFromFlags(cmd)

		document, err := readDocument(args)
		if err != nil {
			presenter.Error(err, "Failed to read agent output")
			os.Exit(1)
		}

		desc, err := schema.Lookup(schema.PilotReview)
		if err != nil {
			presenter.Error(err, "Failed to resolve schema")
			os.Exit(1)
		}

		summary, err := extract.ExtractReview(ctx, document, desc, extractOptions(config.OpenTag, config.CloseTag, config.MaxSize)...)
		if err != nil {
			presenter.Error(err, "Failed to extract pilot review")
			os.Exit(1)
		}

		presenter.Section("Pilot review")
		presenter.Info(fmt.Sprintf("Status: %s", strings.ToUpper(summary.Status)))
		presenter.Info(fmt.Sprintf("Actions: %d", summary.ActionsCount))

		if !summary.Proceed() {
			presenter.Warning("Review requires changes before proceeding")
			os.Exit(1)
		}

		presenter.Success("Review approved")
	},
}

func init() {
	defaults := NewReviewConfig()
	reviewCmd.Flags().String("open-tag", defaults.OpenTag, "Override the open tag to search for")
	reviewCmd.Flags().String("close-tag", defaults.CloseTag, "Override the close tag to search for")
	reviewCmd.Flags().Int("max-size", defaults.MaxSize, "Maximum document size in bytes (0 uses the default ceiling)")
}

func getReviewConfigFromFlags(cmd *cobra.Command) *ReviewConfig {
	config := NewReviewConfig()

	if openTag, err := cmd.Flags().GetString("open-tag"); err == nil {
		config.OpenTag = openTag
	}
	if closeTag, err := cmd.Flags().GetString("close-tag"); err == nil {
		config.CloseTag = closeTag
	}
	if maxSize, err := cmd.Flags().GetInt("max-size"); err == nil {
		config.MaxSize = maxSize
	}

	return config
}
