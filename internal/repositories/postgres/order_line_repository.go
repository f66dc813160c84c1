package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tablemate/tablemate/internal/models"
)

type OrderLineRepository struct {
	pool *pgxpool.Pool
}

func NewOrderLineRepository(pool *pgxpool.Pool) *OrderLineRepository {
	return &OrderLineRepository{pool: pool}
}

func (r *OrderLineRepository) Create(ctx context.Context, line *models.OrderLine) error {
	query := `
        INSERT INTO order_lines (id, collection_uuid, "user", order_text, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.pool.Exec(ctx, query,
		line.ID,
		line.CollectionUUID,
		line.User,
		line.Text,
		line.CreatedAt,
	)
	return err
}

func (r *OrderLineRepository) BulkCreate(ctx context.Context, lines []*models.OrderLine) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"order_lines"},
		[]string{"id", "collection_uuid", "user", "order_text", "created_at"},
		pgx.CopyFromSlice(len(lines), func(i int) ([]interface{}, error) {
			return []interface{}{
				lines[i].ID,
				lines[i].CollectionUUID,
				lines[i].User,
				lines[i].Text,
				lines[i].CreatedAt,
			}, nil
		}),
	)
	return err
}

func (r *OrderLineRepository) GetByCollection(ctx context.Context, collectionUUID string) ([]*models.OrderLine, error) {
	query := `
        SELECT id, collection_uuid, "user", order_text, created_at
        FROM order_lines
        WHERE collection_uuid = $1
        ORDER BY created_at, id
    `
	rows, err := r.pool.Query(ctx, query, collectionUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*models.OrderLine
	for rows.Next() {
		line := &models.OrderLine{}
		err := rows.Scan(
			&line.ID,
			&line.CollectionUUID,
			&line.User,
			&line.Text,
			&line.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *OrderLineRepository) DeleteLastByUser(ctx context.Context, collectionUUID, user string) error {
	query := `
        DELETE FROM order_lines
        WHERE id = (
            SELECT id FROM order_lines
            WHERE collection_uuid = $1 AND "user" = $2
            ORDER BY created_at DESC, id DESC
            LIMIT 1
        )
    `
	_, err := r.pool.Exec(ctx, query, collectionUUID, user)
	return err
}

func (r *OrderLineRepository) DeleteByCollection(ctx context.Context, collectionUUID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM order_lines WHERE collection_uuid = $1`, collectionUUID)
	return err
}

func (r *OrderLineRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM order_lines`).Scan(&count)
	return count, err
}
