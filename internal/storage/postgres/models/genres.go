package models

import (
	"context"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
	"reviewhub/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GenreModel struct {
	DB *pgxpool.Pool
}

func (m *GenreModel) Insert(ctx context.Context, name, slug string) (*models.Genre, error) {
	rows, _ := m.DB.Query(
		ctx,
		"INSERT INTO genres (name, slug) VALUES ($1, $2) RETURNING id, name, slug",
		name,
		slug,
	)
	genre, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Genre])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &genre, nil
}

// GetBySlugs resolves genre slugs in one query, preserving input order.
// A slug without a matching row yields ErrNotFound.
func (m *GenreModel) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	rows, _ := m.DB.Query(ctx, "SELECT id, name, slug FROM genres WHERE slug = ANY($1)", slugs)
	genres, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Genre])
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]models.Genre, len(genres))
	for _, g := range genres {
		bySlug[g.Slug] = g
	}
	ordered := make([]models.Genre, 0, len(slugs))
	for _, slug := range slugs {
		g, ok := bySlug[slug]
		if !ok {
			return nil, storage.ErrNotFound
		}
		ordered = append(ordered, g)
	}
	return ordered, nil
}

func (m *GenreModel) List(ctx context.Context, search string, filters filters.Filters) ([]models.Genre, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER(), id, name, slug FROM genres
		WHERE (name ILIKE '%' || $1 || '%' OR $1 = '')
		ORDER BY name ASC, id ASC
		LIMIT $2 OFFSET $3`,
		search,
		filters.Limit(),
		filters.Offset(),
	)
	type row struct {
		Count int
		models.Genre
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Genre{}, 0, nil
	}
	genres := make([]models.Genre, 0, len(outputRows))
	for _, row := range outputRows {
		genres = append(genres, row.Genre)
	}
	return genres, outputRows[0].Count, nil
}

// Delete removes the genre; the genre_title link rows cascade away while
// the linked titles stay untouched.
func (m *GenreModel) Delete(ctx context.Context, slug string) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM genres WHERE slug = $1", slug)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
