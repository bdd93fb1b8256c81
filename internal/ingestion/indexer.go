// Package ingestion loads documents from local folders, web pages and
// Google Drive and indexes them into the vector store.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/adaptive-rag/internal/processing"
)

var errNoText = errors.New("no text")

type ChunkEmbedder interface {
	EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error)
}

// ChunkWriter stores all chunks of a document or none of them.
type ChunkWriter interface {
	InsertChunks(ctx context.Context, filename, source string, chunks []string, embeddings [][]float32) error
}

// Stats summarizes one indexing pass.
type Stats struct {
	Documents int
	Chunks    int
	Skipped   int
}

// Indexer runs extract, chunk, embed and insert for each document.
type Indexer struct {
	embedder ChunkEmbedder
	store    ChunkWriter
	log      *zap.Logger
}

func NewIndexer(e ChunkEmbedder, w ChunkWriter, log *zap.Logger) *Indexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Indexer{embedder: e, store: w, log: log}
}

// IndexText chunks, embeds and stores one document. It returns the number
// of chunks written, which is zero on any error.
func (ix *Indexer) IndexText(ctx context.Context, meta processing.Metadata, text string) (int, error) {
	chunks := processing.ChunkText(text)
	if len(chunks) == 0 {
		return 0, nil
	}
	embs, err := ix.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", meta.Path, err)
	}
	if len(embs) != len(chunks) {
		return 0, fmt.Errorf("embed %s: got %d embeddings for %d chunks", meta.Path, len(embs), len(chunks))
	}
	if err := ix.store.InsertChunks(ctx, meta.Path, meta.Source, chunks, embs); err != nil {
		return 0, err
	}
	ix.log.Debug("indexed document",
		zap.String("path", meta.Path),
		zap.String("source", meta.Source),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// IndexFiles indexes every supported file under root. Files that fail to
// extract or embed are logged and skipped; context cancellation stops the pass.
func (ix *Indexer) IndexFiles(ctx context.Context, root string) (Stats, error) {
	files, err := LoadLocalFiles(root)
	if err != nil {
		return Stats{}, fmt.Errorf("load files: %w", err)
	}
	var st Stats
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		text, err := ExtractText(f)
		if err != nil {
			ix.skip(&st, f, err)
			continue
		}
		ix.add(ctx, &st, processing.Metadata{Path: f, Source: processing.SourceLocal, ImportedAt: time.Now()}, text)
	}
	return st, ctx.Err()
}

// IndexURLs fetches and indexes each web page.
func (ix *Indexer) IndexURLs(ctx context.Context, urls []string) (Stats, error) {
	var st Stats
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		text, err := FetchURL(ctx, u)
		if err != nil {
			ix.skip(&st, u, err)
			continue
		}
		ix.add(ctx, &st, processing.Metadata{Path: u, Source: processing.SourceWeb, ImportedAt: time.Now()}, text)
	}
	return st, ctx.Err()
}

// IndexDocuments indexes already loaded documents, such as a Drive folder.
func (ix *Indexer) IndexDocuments(ctx context.Context, source string, docs []Document) (Stats, error) {
	var st Stats
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		ix.add(ctx, &st, processing.Metadata{Path: d.Name, Source: source, ImportedAt: time.Now(), Title: d.Source}, d.Text)
	}
	return st, ctx.Err()
}

func (ix *Indexer) add(ctx context.Context, st *Stats, meta processing.Metadata, text string) {
	if strings.TrimSpace(text) == "" {
		ix.skip(st, meta.Path, errNoText)
		return
	}
	n, err := ix.IndexText(ctx, meta, text)
	st.Chunks += n
	if err != nil {
		ix.skip(st, meta.Path, err)
		return
	}
	st.Documents++
}

func (ix *Indexer) skip(st *Stats, name string, err error) {
	st.Skipped++
	ix.log.Warn("skipping document", zap.String("path", name), zap.Error(err))
}
