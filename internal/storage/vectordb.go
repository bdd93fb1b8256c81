package storage

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

type Document struct {
	ID       int64
	Filename string
	Source   string
	Content  string
}

// InsertChunks stores the chunks of one document with their embeddings in a
// single transaction, so a failed insert leaves none of them behind.
func (s *Store) InsertChunks(ctx context.Context, filename, source string, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("insert %s: %d chunks but %d embeddings", filename, len(chunks), len(embeddings))
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert of %s: %w", filename, err)
	}
	defer tx.Rollback(ctx)

	for i := range chunks {
		_, err := tx.Exec(ctx,
			"INSERT INTO documents (filename, source, content, embedding) VALUES ($1, $2, $3, $4)",
			filename, source, chunks[i], pgvector.NewVector(embeddings[i]))
		if err != nil {
			return fmt.Errorf("insert chunk %d of %s: %w", i, filename, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert of %s: %w", filename, err)
	}
	return nil
}

// QuerySimilar returns the topK nearest chunks by L2 distance.
func (s *Store) QuerySimilar(ctx context.Context, queryEmb []float32, topK int) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, filename, source, content FROM documents ORDER BY embedding <-> $1 LIMIT $2",
		pgvector.NewVector(queryEmb), topK)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Source, &doc.Content); err != nil {
			return nil, err
		}
		results = append(results, doc)
	}
	return results, rows.Err()
}

// Count reports how many chunks are indexed.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
