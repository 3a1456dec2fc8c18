package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/lumenboard/lumenboard/internal/domain"
)

// dbtx abstracts a pgx pool or transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EmbeddingRepository persists embedding records, one row per entity.
// Upsert replaces a single row, so ingestion never rewrites the store.
type EmbeddingRepository struct {
	db dbtx
}

func NewEmbeddingRepository(pool *pgxpool.Pool) *EmbeddingRepository {
	return &EmbeddingRepository{db: pool}
}

func NewEmbeddingRepositoryWithTx(tx pgx.Tx) *EmbeddingRepository {
	return &EmbeddingRepository{db: tx}
}

// Upsert replaces any existing record with the same entity ID.
func (r *EmbeddingRepository) Upsert(ctx context.Context, rec *domain.EmbeddingRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO embedding_records
			(entity_id, source_id, name, description, entity_type, domain, embedding, created_at, updated_at)
		 VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (entity_id) DO UPDATE SET
			source_id = EXCLUDED.source_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			entity_type = EXCLUDED.entity_type,
			domain = EXCLUDED.domain,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`,
		rec.EntityID,
		nullableString(rec.SourceID),
		rec.Metadata.Name,
		rec.Metadata.Description,
		rec.Metadata.EntityType,
		rec.Metadata.Domain,
		pgvector.NewVector(rec.Vector),
		createdAt,
		updatedAt,
	)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to upsert embedding record", err)
	}
	return nil
}

// GetByEntityID returns the record for the given entity ID.
func (r *EmbeddingRepository) GetByEntityID(ctx context.Context, entityID string) (*domain.EmbeddingRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT entity_id, source_id, name, description, entity_type, domain, embedding, created_at, updated_at
		 FROM embedding_records WHERE entity_id = $1`,
		entityID,
	)

	rec, err := scanEmbeddingRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to read embedding record", err)
	}
	return rec, nil
}

// ListAll streams every record, ordered by entity ID for deterministic
// index loads.
func (r *EmbeddingRepository) ListAll(ctx context.Context) ([]*domain.EmbeddingRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT entity_id, source_id, name, description, entity_type, domain, embedding, created_at, updated_at
		 FROM embedding_records ORDER BY entity_id`,
	)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to list embedding records", err)
	}
	defer rows.Close()

	var records []*domain.EmbeddingRecord
	for rows.Next() {
		rec, err := scanEmbeddingRecord(rows)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to scan embedding record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to list embedding records", err)
	}

	return records, nil
}

// DeleteBySourceID removes every record ingested under the given source.
func (r *EmbeddingRepository) DeleteBySourceID(ctx context.Context, sourceID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM embedding_records WHERE source_id = $1`, sourceID)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to delete embedding records", err)
	}
	return nil
}

func scanEmbeddingRecord(row pgx.Row) (*domain.EmbeddingRecord, error) {
	var rec domain.EmbeddingRecord
	var sourceID *string
	var vec pgvector.Vector

	err := row.Scan(
		&rec.EntityID,
		&sourceID,
		&rec.Metadata.Name,
		&rec.Metadata.Description,
		&rec.Metadata.EntityType,
		&rec.Metadata.Domain,
		&vec,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sourceID != nil {
		rec.SourceID = *sourceID
	}
	rec.Vector = vec.Slice()
	return &rec, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
