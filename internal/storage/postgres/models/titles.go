package models

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
	"reviewhub/proj/internal/storage/postgres"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TitleModel struct {
	DB *pgxpool.Pool
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// titleRow flattens the titles/categories join; the category columns are
// nullable because a title may have no category at all.
type titleRow struct {
	ID           int64   `db:"id"`
	Name         string  `db:"name"`
	Year         int32   `db:"year"`
	Description  *string `db:"description"`
	CategoryID   *int64  `db:"category_id"`
	CategoryName *string `db:"category_name"`
	CategorySlug *string `db:"category_slug"`
}

const titleSelectColumns = `t.id, t.name, t.year, t.description,
	c.id AS category_id, c.name AS category_name, c.slug AS category_slug`

func (r *titleRow) toTitle() models.Title {
	title := models.Title{
		ID:          r.ID,
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Genres:      []models.Genre{},
	}
	if r.CategoryID != nil {
		title.Category = &models.Category{ID: *r.CategoryID, Name: *r.CategoryName, Slug: *r.CategorySlug}
	}
	return title
}

func (m *TitleModel) Get(ctx context.Context, id int64) (*models.Title, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT "+titleSelectColumns+" FROM titles t LEFT JOIN categories c ON c.id = t.category_id WHERE t.id = $1",
		id,
	)
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[titleRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	title := row.toTitle()
	genresByTitle, err := m.genresFor(ctx, []int64{title.ID})
	if err != nil {
		return nil, err
	}
	if genres, ok := genresByTitle[title.ID]; ok {
		title.Genres = genres
	}
	return &title, nil
}

func (m *TitleModel) List(ctx context.Context, f filters.TitleFilters) ([]models.Title, int, error) {
	query := psql.Select("count(*) OVER() AS count", titleSelectColumns).
		From("titles t").
		LeftJoin("categories c ON c.id = t.category_id")
	if len(f.Genres) > 0 {
		query = query.Where(
			`EXISTS (SELECT 1 FROM genre_title gt JOIN genres g ON g.id = gt.genre_id
			WHERE gt.title_id = t.id AND g.slug = ANY(?))`,
			f.Genres,
		)
	}
	if len(f.Categories) > 0 {
		query = query.Where(sq.Eq{"c.slug": f.Categories})
	}
	if f.Name != "" {
		query = query.Where(sq.ILike{"t.name": "%" + f.Name + "%"})
	}
	if f.Year != nil {
		query = query.Where(sq.Eq{"t.year": *f.Year})
	}
	query = query.
		OrderBy(fmt.Sprintf("t.%s %s, t.id ASC", f.SortColumn(), f.SortDirection())).
		Limit(uint64(f.Limit())).
		Offset(uint64(f.Offset()))
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, _ := m.DB.Query(ctx, sql, args...)
	type row struct {
		Count int `db:"count"`
		titleRow
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Title{}, 0, nil
	}
	titles := make([]models.Title, 0, len(outputRows))
	ids := make([]int64, 0, len(outputRows))
	for _, row := range outputRows {
		titles = append(titles, row.toTitle())
		ids = append(ids, row.ID)
	}
	genresByTitle, err := m.genresFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range titles {
		if genres, ok := genresByTitle[titles[i].ID]; ok {
			titles[i].Genres = genres
		}
	}
	return titles, outputRows[0].Count, nil
}

func (m *TitleModel) Insert(ctx context.Context, name string, year int32, description *string, categoryID *int64, genreIDs []int64) (*models.Title, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	var id int64
	err = tx.QueryRow(
		ctx,
		"INSERT INTO titles (name, year, description, category_id) VALUES ($1, $2, $3, $4) RETURNING id",
		name,
		year,
		description,
		categoryID,
	).Scan(&id)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	if err := insertGenreLinks(ctx, tx, id, genreIDs); err != nil {
		return nil, postgres.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m.Get(ctx, id)
}

func (m *TitleModel) Update(ctx context.Context, title *models.Title, genreIDs []int64, replaceGenres bool) (*models.Title, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	var categoryID *int64
	if title.Category != nil {
		categoryID = &title.Category.ID
	}
	status, err := tx.Exec(
		ctx,
		"UPDATE titles SET name = $1, year = $2, description = $3, category_id = $4 WHERE id = $5",
		title.Name,
		title.Year,
		title.Description,
		categoryID,
		title.ID,
	)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	if replaceGenres {
		if _, err := tx.Exec(ctx, "DELETE FROM genre_title WHERE title_id = $1", title.ID); err != nil {
			return nil, err
		}
		if err := insertGenreLinks(ctx, tx, title.ID, genreIDs); err != nil {
			return nil, postgres.MapError(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m.Get(ctx, title.ID)
}

func (m *TitleModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM titles WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func insertGenreLinks(ctx context.Context, tx pgx.Tx, titleID int64, genreIDs []int64) error {
	for _, genreID := range genreIDs {
		_, err := tx.Exec(
			ctx,
			"INSERT INTO genre_title (genre_id, title_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			genreID,
			titleID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *TitleModel) genresFor(ctx context.Context, titleIDs []int64) (map[int64][]models.Genre, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT gt.title_id, g.id, g.name, g.slug FROM genre_title gt
		JOIN genres g ON g.id = gt.genre_id
		WHERE gt.title_id = ANY($1)
		ORDER BY g.name ASC, g.id ASC`,
		titleIDs,
	)
	type row struct {
		TitleID int64 `db:"title_id"`
		models.Genre
	}
	linkRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, err
	}
	result := make(map[int64][]models.Genre, len(titleIDs))
	for _, link := range linkRows {
		result[link.TitleID] = append(result[link.TitleID], link.Genre)
	}
	return result, nil
}
