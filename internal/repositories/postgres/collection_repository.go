package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tablemate/tablemate/internal/models"
	"github.com/tablemate/tablemate/internal/repositories"
)

type CollectionRepository struct {
	pool *pgxpool.Pool
}

func NewCollectionRepository(pool *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

func (r *CollectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	settings, err := json.Marshal(collection.Settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	query := `
        INSERT INTO collections (id, chat, uuid, active, settings, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err = r.pool.Exec(ctx, query,
		collection.ID,
		collection.Chat,
		collection.UUID,
		collection.Active,
		settings,
		collection.CreatedAt,
	)
	return err
}

func (r *CollectionRepository) GetActiveByChat(ctx context.Context, chat int64) (*models.Collection, error) {
	query := `
        SELECT id, chat, uuid, active, settings, created_at
        FROM collections
        WHERE chat = $1 AND active
        ORDER BY created_at DESC
        LIMIT 1
    `
	return r.scanOne(r.pool.QueryRow(ctx, query, chat))
}

func (r *CollectionRepository) GetByUUID(ctx context.Context, uuid string) (*models.Collection, error) {
	query := `
        SELECT id, chat, uuid, active, settings, created_at
        FROM collections
        WHERE uuid = $1
    `
	return r.scanOne(r.pool.QueryRow(ctx, query, uuid))
}

func (r *CollectionRepository) scanOne(row pgx.Row) (*models.Collection, error) {
	collection := &models.Collection{}
	var settings []byte
	err := row.Scan(
		&collection.ID,
		&collection.Chat,
		&collection.UUID,
		&collection.Active,
		&settings,
		&collection.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &collection.Settings); err != nil {
			return nil, fmt.Errorf("decoding settings: %w", err)
		}
	}
	return collection, nil
}

func (r *CollectionRepository) SetActive(ctx context.Context, uuid string, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE collections SET active = $2 WHERE uuid = $1`, uuid, active)
	return err
}

func (r *CollectionRepository) UpdateSettings(ctx context.Context, uuid string, settings models.Settings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = r.pool.Exec(ctx, `UPDATE collections SET settings = $2 WHERE uuid = $1`, uuid, encoded)
	return err
}

func (r *CollectionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM collections`).Scan(&count)
	return count, err
}

func (r *CollectionRepository) Delete(ctx context.Context, uuid string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM collections WHERE uuid = $1`, uuid)
	return err
}
