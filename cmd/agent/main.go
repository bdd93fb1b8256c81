package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/config"
	"github.com/Divas-Gupta30/adaptive-rag/internal/logging"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Adaptive RAG agent",
	Long: `Answers questions from a local document index or the web.

Questions are routed to the vector store or web search, retrieved passages
are graded for relevance, and every generated answer is checked for
grounding before it is returned. Ungrounded answers trigger a fresh web
search until the retry ceiling is reached.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Debug = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger, err = logging.New(cfg.Logging.Debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "agent.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	indexCmd.Flags().StringVar(&indexPath, "path", "./data", "Folder to index")
	indexGDriveCmd.Flags().StringVar(&driveFolder, "folder", "", "Google Drive folder ID (default from config)")
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "Question to answer (required)")
	queryCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "Retry ceiling (default from config)")
	queryCmd.Flags().BoolVar(&showTrace, "trace", false, "Print the visited nodes")
	_ = queryCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(indexURLsCmd)
	rootCmd.AddCommand(indexGDriveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(verifyPromptsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
