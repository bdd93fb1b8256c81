package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/ingestion"
	"github.com/Divas-Gupta30/adaptive-rag/internal/processing"
)

var (
	indexPath   string
	driveFolder string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a local folder of documents",
	Long: `Walks --path and indexes text, markdown, HTML, PDF and image files.
PDFs without a text layer and images go through OCR.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd, func(ix *ingestion.Indexer) (ingestion.Stats, error) {
			logger.Info("starting indexing", zap.String("path", indexPath))
			return ix.IndexFiles(cmd.Context(), indexPath)
		})
	},
}

var indexURLsCmd = &cobra.Command{
	Use:   "index-urls [url...]",
	Short: "Index web pages",
	Long:  "Fetches each URL and indexes its text. With no arguments the URLs from the config file are used.",
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if len(urls) == 0 {
			urls = cfg.Ingestion.URLs
		}
		if len(urls) == 0 {
			return errors.New("no URLs given and none configured")
		}
		return runIndex(cmd, func(ix *ingestion.Indexer) (ingestion.Stats, error) {
			return ix.IndexURLs(cmd.Context(), urls)
		})
	},
}

var indexGDriveCmd = &cobra.Command{
	Use:   "index-gdrive",
	Short: "Index the files of a Google Drive folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := driveFolder
		if folder == "" {
			folder = cfg.Ingestion.DriveFolder
		}
		if folder == "" {
			return errors.New("--folder is required (or set ingestion.gdrive_folder)")
		}
		loader, err := ingestion.NewDriveLoader(cmd.Context(), ingestion.DriveConfig{
			CredentialsFile: cfg.Ingestion.CredentialsFile,
		})
		if err != nil {
			return err
		}
		return runIndex(cmd, func(ix *ingestion.Indexer) (ingestion.Stats, error) {
			docs, err := loader.Load(cmd.Context(), folder, func(name string, err error) {
				logger.Warn("skipping drive file", zap.String("name", name), zap.Error(err))
			})
			if err != nil {
				return ingestion.Stats{}, err
			}
			return ix.IndexDocuments(cmd.Context(), processing.SourceGDrive, docs)
		})
	},
}

func runIndex(cmd *cobra.Command, pass func(*ingestion.Indexer) (ingestion.Stats, error)) error {
	store, embedder, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := pass(ingestion.NewIndexer(embedder, store, logger))
	if err != nil {
		return err
	}
	total, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("indexing complete",
		zap.Int("documents", st.Documents),
		zap.Int("chunks", st.Chunks),
		zap.Int("skipped", st.Skipped),
		zap.Int64("total_chunks", total))
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents (%d chunks, %d skipped).\n", st.Documents, st.Chunks, st.Skipped)
	return nil
}
