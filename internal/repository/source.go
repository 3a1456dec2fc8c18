package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenboard/lumenboard/internal/domain"
)

// SourceRepository persists knowledge-source ingestion status in the
// external metadata store. The core only reads and writes status plus the
// last-updated timestamp; it never stores embeddings here.
type SourceRepository struct {
	db dbtx
}

func NewSourceRepository(pool *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{db: pool}
}

func NewSourceRepositoryWithTx(tx pgx.Tx) *SourceRepository {
	return &SourceRepository{db: tx}
}

// SetStatus records the given status for a source, creating the row if the
// source was never registered. Last writer wins.
func (r *SourceRepository) SetStatus(ctx context.Context, sourceID string, status domain.SourceStatus) error {
	if sourceID == "" {
		return domain.ErrMissingSourceID
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_sources (source_id, status, last_updated)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (source_id) DO UPDATE SET
			status = EXCLUDED.status,
			last_updated = EXCLUDED.last_updated`,
		sourceID, status, time.Now().UTC(),
	)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to update source status", err)
	}
	return nil
}

// GetByID returns the ingestion status of a source.
func (r *SourceRepository) GetByID(ctx context.Context, sourceID string) (*domain.KnowledgeSource, error) {
	var src domain.KnowledgeSource
	err := r.db.QueryRow(ctx,
		`SELECT source_id, status, last_updated FROM knowledge_sources WHERE source_id = $1`,
		sourceID,
	).Scan(&src.SourceID, &src.Status, &src.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSourceNotFound
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to read source status", err)
	}
	return &src, nil
}
