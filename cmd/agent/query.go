package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
)

var (
	queryText  string
	maxRetries int
	showTrace  bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Answer one question",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		retries := cfg.Agent.MaxRetries
		if cmd.Flags().Changed("max-retries") {
			retries = maxRetries
		}

		ctx := cmd.Context()
		if d := cfg.RunTimeout(); d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		c, err := build(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer c.close()

		res, err := c.engine.Run(ctx, queryText, retries)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Outcome: %s (attempts: %d)\n", outcomeString(res.Outcome), res.Attempts)
		if showTrace {
			nodes := make([]string, len(res.Trace))
			for i, n := range res.Trace {
				nodes[i] = n.String()
			}
			fmt.Fprintln(out, color.CyanString("Trace: %s", strings.Join(nodes, " -> ")))
		}
		fmt.Fprintln(out, "Answer:", res.Answer)
		return nil
	},
}

func outcomeString(o graph.Outcome) string {
	switch o {
	case graph.Accepted:
		return color.GreenString(string(o))
	case graph.Aborted:
		return color.YellowString(string(o))
	default:
		return color.RedString(string(o))
	}
}
