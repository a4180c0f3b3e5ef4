package main

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"riskbot/internal/config"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a snapshot of the vector collection",
	Long: `Exports the collection to a single file, encrypted when rag.encryption_key
is set. An in-memory deployment imports the same file on startup.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "snapshot path (defaults to rag.export_path, then {db_path}/{collection}.chromem)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustBuildApp(ctx)
	defer a.close(ctx)

	vectors := a.store.Vectors()
	out := snapshotPath(&cfg.RAG, exportPath)
	if err := vectors.ExportTo(ctx, out); err != nil {
		return err
	}
	log.Info().Str("path", out).Int("records", vectors.Count()).Msg("Exported collection")
	return nil
}

func snapshotPath(rag *config.RAGConfig, out string) string {
	if out != "" {
		return out
	}
	if rag.ExportPath != "" {
		return rag.ExportPath
	}
	return filepath.Join(rag.DBPath, rag.CollectionName+".chromem")
}
