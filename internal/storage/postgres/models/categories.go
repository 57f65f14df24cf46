package models

import (
	"context"
	"errors"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
	"reviewhub/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryModel struct {
	DB *pgxpool.Pool
}

func (m *CategoryModel) Insert(ctx context.Context, name, slug string) (*models.Category, error) {
	rows, _ := m.DB.Query(
		ctx,
		"INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id, name, slug",
		name,
		slug,
	)
	category, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Category])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &category, nil
}

func (m *CategoryModel) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	rows, _ := m.DB.Query(ctx, "SELECT id, name, slug FROM categories WHERE slug = $1", slug)
	category, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Category])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (m *CategoryModel) List(ctx context.Context, search string, filters filters.Filters) ([]models.Category, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER(), id, name, slug FROM categories
		WHERE (name ILIKE '%' || $1 || '%' OR $1 = '')
		ORDER BY name ASC, id ASC
		LIMIT $2 OFFSET $3`,
		search,
		filters.Limit(),
		filters.Offset(),
	)
	type row struct {
		Count int
		models.Category
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Category{}, 0, nil
	}
	categories := make([]models.Category, 0, len(outputRows))
	for _, row := range outputRows {
		categories = append(categories, row.Category)
	}
	return categories, outputRows[0].Count, nil
}

// Delete removes the category; titles referencing it keep existing with a
// null category (SET NULL on the foreign key).
func (m *CategoryModel) Delete(ctx context.Context, slug string) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM categories WHERE slug = $1", slug)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
