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

type ReviewModel struct {
	DB *pgxpool.Pool
}

const reviewSelectColumns = `r.id, r.title_id, r.author_id, u.username AS author, r.text, r.score, r.pub_date`

func (m *ReviewModel) Insert(ctx context.Context, titleID, authorID int64, text string, score int) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`WITH inserted AS (
			INSERT INTO reviews (title_id, author_id, text, score) VALUES ($1, $2, $3, $4) RETURNING *
		)
		SELECT `+reviewSelectColumns+` FROM inserted r JOIN users u ON u.id = r.author_id`,
		titleID,
		authorID,
		text,
		score,
	)
	return collectReview(rows)
}

func (m *ReviewModel) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT "+reviewSelectColumns+" FROM reviews r JOIN users u ON u.id = r.author_id WHERE r.id = $1 AND r.title_id = $2",
		reviewID,
		titleID,
	)
	return collectReview(rows)
}

func (m *ReviewModel) ListForTitle(ctx context.Context, titleID int64, filters filters.Filters) ([]models.Review, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER(), `+reviewSelectColumns+` FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.title_id = $1
		ORDER BY r.pub_date DESC, r.id DESC
		LIMIT $2 OFFSET $3`,
		titleID,
		filters.Limit(),
		filters.Offset(),
	)
	type row struct {
		Count int
		models.Review
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Review{}, 0, nil
	}
	reviews := make([]models.Review, 0, len(outputRows))
	for _, row := range outputRows {
		reviews = append(reviews, row.Review)
	}
	return reviews, outputRows[0].Count, nil
}

// ScoresForTitle feeds the rating aggregator; it is a fresh scan on every
// call so the derived rating can never go stale.
func (m *ReviewModel) ScoresForTitle(ctx context.Context, titleID int64) ([]int, error) {
	rows, _ := m.DB.Query(ctx, "SELECT score FROM reviews WHERE title_id = $1", titleID)
	scores, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (m *ReviewModel) ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(
		ctx,
		"SELECT EXISTS (SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)",
		titleID,
		authorID,
	).Scan(&exists)
	return exists, err
}

func (m *ReviewModel) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`WITH updated AS (
			UPDATE reviews SET text = $1, score = $2 WHERE id = $3 RETURNING *
		)
		SELECT `+reviewSelectColumns+` FROM updated r JOIN users u ON u.id = r.author_id`,
		review.Text,
		review.Score,
		review.ID,
	)
	return collectReview(rows)
}

func (m *ReviewModel) Delete(ctx context.Context, titleID, reviewID int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM reviews WHERE id = $1 AND title_id = $2", reviewID, titleID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func collectReview(rows pgx.Rows) (*models.Review, error) {
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, postgres.MapError(err)
	}
	return &review, nil
}
