package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Divas-Gupta30/adaptive-rag/internal/judge"
	"github.com/Divas-Gupta30/adaptive-rag/internal/llm"
)

var verifyPromptsCmd = &cobra.Command{
	Use:   "verify-prompts",
	Short: "Check the routing and relevance prompts against the configured model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chat, err := llm.New(cmd.Context(), cfg.LLMClientConfig())
		if err != nil {
			return err
		}
		if err := judge.VerifyPrompts(cmd.Context(), judge.New(chat, logger), logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Prompts OK.")
		return nil
	},
}
