package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"riskbot/internal/helper"
)

var (
	detectDocID string
	detectText  string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run HRCI / NPPI extraction on an indexed document or raw text",
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectDocID, "doc-id", "", "indexed document id; findings are stored")
	detectCmd.Flags().StringVar(&detectText, "text", "", "raw text; nothing is stored")
	detectCmd.MarkFlagsMutuallyExclusive("doc-id", "text")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	if detectDocID == "" && detectText == "" {
		return errors.New("either --doc-id or --text is required")
	}

	ctx := context.Background()
	a := mustBuildApp(ctx)
	defer a.close(ctx)

	if detectText != "" {
		helper.PrettyPrint(a.detector.DetectText(ctx, detectText))
		return nil
	}
	helper.PrettyPrint(a.detector.Detect(ctx, detectDocID))
	return nil
}
