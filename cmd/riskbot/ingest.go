package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"riskbot/internal/helper"
	"riskbot/internal/ingest"
	"riskbot/internal/models"
)

var (
	ingestFile   string
	ingestDocID  string
	ingestDetect bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index a local file",
	Long: `Extracts, chunks and indexes a .txt, .xlsx or .xls file. Re-using an
existing --doc-id replaces the previous records of that document.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "path to the document file")
	ingestCmd.Flags().StringVar(&ingestDocID, "doc-id", "", "document id (generated when empty)")
	ingestCmd.Flags().BoolVar(&ingestDetect, "detect", false, "run HRCI / NPPI extraction after indexing")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestFile == "" {
		return errors.New("--file is required")
	}

	ctx := context.Background()
	a := mustBuildApp(ctx)
	defer a.close(ctx)

	pipeline := a.pipeline
	if !ingestDetect {
		pipeline = ingest.NewPipeline(cfg, a.store, nil)
	}

	res, err := pipeline.IngestFile(ctx, ingestFile, ingestDocID)
	if err != nil {
		return err
	}
	if res.Findings == nil {
		res.Findings = []models.Finding{}
	}
	helper.PrettyPrint(res)
	return nil
}
