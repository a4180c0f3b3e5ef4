package main

import (
	"context"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage indexed documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a := mustBuildApp(ctx)
		defer a.close(ctx)

		docs, err := a.store.Registry().ListDocuments(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			cmd.Println("No documents indexed.")
			return nil
		}
		for _, d := range docs {
			cmd.Printf("%s  %-30s chunks=%d findings=%t  %s\n",
				d.ID, d.FileName, d.ChunkCount, d.HasFindings, d.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document's chunks, findings and registry row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a := mustBuildApp(ctx)
		defer a.close(ctx)

		if err := a.store.DeleteDocument(ctx, args[0]); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	documentsCmd.AddCommand(documentsListCmd, documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}
