package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/OptionalMoth/Document-Chatbot/internal/domain"
	"github.com/OptionalMoth/Document-Chatbot/internal/port"
)

// PostgresStore implements port.VectorStore on Postgres with the pgvector
// extension. Cosine similarity is computed as 1 - (embedding <=> query).
type PostgresStore struct {
	db        *sql.DB
	dimension int
}

var _ port.VectorStore = (*PostgresStore)(nil)

// NewPostgresStore opens a connection pool and returns a store instance.
func NewPostgresStore(databaseURL string, dimension int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db, dimension: dimension}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// EnsureCollection creates the points table if absent and verifies the
// vector column's dimension when it already exists.
func (s *PostgresStore) EnsureCollection(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("%w: create vector extension: %v", port.ErrStore, err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS points (
			id          uuid PRIMARY KEY,
			chunk_id    text NOT NULL,
			document_id text NOT NULL,
			chunk_index int  NOT NULL,
			content     text NOT NULL,
			source      text NOT NULL,
			source_type text NOT NULL,
			metadata    jsonb,
			embedding   vector(%d) NOT NULL,
			created_at  timestamptz NOT NULL DEFAULT now()
		)`, s.dimension)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create points table: %v", port.ErrStore, err)
	}

	// pgvector stores the declared dimension in the column's typmod.
	var typmod int
	err := s.db.QueryRowContext(ctx,
		`SELECT atttypmod FROM pg_attribute
		 WHERE attrelid = 'points'::regclass AND attname = 'embedding'`,
	).Scan(&typmod)
	if err != nil {
		return fmt.Errorf("%w: inspect points table: %v", port.ErrStore, err)
	}
	if typmod != s.dimension {
		return fmt.Errorf("%w: points table has dimension %d, want %d",
			port.ErrStore, typmod, s.dimension)
	}
	return nil
}

// Upsert writes the batch inside one transaction so it becomes searchable
// all-or-nothing. Conflicting ids are replaced.
func (s *PostgresStore) Upsert(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", port.ErrStore, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (id, chunk_id, document_id, chunk_index, content, source, source_type, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)
		ON CONFLICT (id) DO UPDATE SET
			chunk_id    = EXCLUDED.chunk_id,
			document_id = EXCLUDED.document_id,
			chunk_index = EXCLUDED.chunk_index,
			content     = EXCLUDED.content,
			source      = EXCLUDED.source,
			source_type = EXCLUDED.source_type,
			metadata    = EXCLUDED.metadata,
			embedding   = EXCLUDED.embedding`)
	if err != nil {
		return fmt.Errorf("%w: prepare upsert: %v", port.ErrStore, err)
	}
	defer stmt.Close()

	for _, p := range points {
		meta, err := metadataJSON(p.Payload.Metadata)
		if err != nil {
			return fmt.Errorf("%w: encode metadata for %s: %v", port.ErrStore, p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Payload.ChunkID, p.Payload.DocumentID, p.Payload.Index,
			p.Payload.Text, p.Payload.Source, p.Payload.SourceType, meta,
			pgvector.NewVector(p.Vector),
		); err != nil {
			return fmt.Errorf("%w: insert point %s: %v", port.ErrStore, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", port.ErrStore, err)
	}
	return nil
}

// Search performs a cosine similarity search, filtering by threshold and
// breaking score ties by insertion time.
func (s *PostgresStore) Search(ctx context.Context, vector []float32, topK int, threshold float64) ([]domain.SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}

	query := `
		SELECT chunk_id, document_id, chunk_index, content, source, source_type, metadata,
		       1 - (embedding <=> $1::vector) AS score
		FROM points
		WHERE 1 - (embedding <=> $1::vector) >= $2
		ORDER BY embedding <=> $1::vector, created_at
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(vector), threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search points: %v", port.ErrStore, err)
	}
	defer rows.Close()

	var hits []domain.SearchHit
	for rows.Next() {
		var (
			hit  domain.SearchHit
			meta []byte
		)
		if err := rows.Scan(
			&hit.Payload.ChunkID, &hit.Payload.DocumentID, &hit.Payload.Index,
			&hit.Payload.Text, &hit.Payload.Source, &hit.Payload.SourceType,
			&meta, &hit.Score,
		); err != nil {
			return nil, fmt.Errorf("%w: scan hit: %v", port.ErrStore, err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &hit.Payload.Metadata); err != nil {
				return nil, fmt.Errorf("%w: decode metadata: %v", port.ErrStore, err)
			}
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate hits: %v", port.ErrStore, err)
	}
	return hits, nil
}

// Count reports the number of stored points.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM points`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count points: %v", port.ErrStore, err)
	}
	return count, nil
}

// Drop removes the points table entirely.
func (s *PostgresStore) Drop(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS points`); err != nil {
		return fmt.Errorf("%w: drop points table: %v", port.ErrStore, err)
	}
	return nil
}

func metadataJSON(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
