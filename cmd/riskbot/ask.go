package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"riskbot/internal/models"
	"riskbot/internal/rag"
)

var (
	askDocID    string
	askQuestion string
	askSource   string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about an indexed document",
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askDocID, "doc-id", "", "indexed document id")
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question, e.g. \"show only NPPI\"")
	askCmd.Flags().StringVar(&askSource, "source", string(rag.SourceContext), "answer from the document \"context\" or its stored \"findings\"")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askDocID == "" || askQuestion == "" {
		return errors.New("--doc-id and --question are required")
	}
	source, err := rag.ParseSource(askSource)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a := mustBuildApp(ctx)
	defer a.close(ctx)

	answer, err := a.responder.Answer(ctx, askDocID, askQuestion, source)
	if errors.Is(err, rag.ErrNotFound) {
		answer = models.NotFoundAnswer
	} else if err != nil {
		return err
	}
	cmd.Println(answer)
	return nil
}
