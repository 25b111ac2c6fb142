package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/logging"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/taxonomy"
)

type taxonomyWriter interface {
	UpsertTx(ctx context.Context, tx *sql.Tx, it *domain.TaxonomyItem) (uuid.UUID, error)
}

type TaxonomySyncService struct {
	repo taxonomyWriter
	db   *sql.DB
}

func NewTaxonomySyncService(repo taxonomyWriter, db *sql.DB) *TaxonomySyncService {
	return &TaxonomySyncService{repo: repo, db: db}
}

// Sync upserts the registry in one transaction. Items already stored under
// the same natural key keep their id, so existing mappings stay valid.
func (s *TaxonomySyncService) Sync(ctx context.Context, items []domain.TaxonomyItem) (int, error) {
	log := logging.FromContext(ctx)

	if err := taxonomy.Validate(items); err != nil {
		return 0, fmt.Errorf("Sync: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("Sync: begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range items {
		id, err := s.repo.UpsertTx(ctx, tx, &items[i])
		if err != nil {
			return 0, fmt.Errorf("Sync: %s: %w", items[i].ItemName, err)
		}
		if id != items[i].ID {
			log.Debug("taxonomy item kept stored id", "item_name", items[i].ItemName, "id", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("Sync: commit: %w", err)
	}

	log.Info("taxonomy synced", "items", len(items))
	return len(items), nil
}
