package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Files are loaded in dependency order so foreign keys resolve.
var loadOrder = []string{
	"users.csv",
	"category.csv",
	"genre.csv",
	"titles.csv",
	"genre_title.csv",
	"review.csv",
	"comments.csv",
}

type Loader struct {
	log     *slog.Logger
	db      *pgxpool.Pool
	dataDir string
}

func NewLoader(log *slog.Logger, db *pgxpool.Pool, dataDir string) *Loader {
	return &Loader{log: log, db: db, dataDir: dataDir}
}

func (l *Loader) Run(ctx context.Context) error {
	const op = "loader.Run"
	log := l.log.With("op", op)
	inserters := map[string]func(context.Context, row) error{
		"users.csv":       l.insertUser,
		"category.csv":    l.insertCategory,
		"genre.csv":       l.insertGenre,
		"titles.csv":      l.insertTitle,
		"genre_title.csv": l.insertGenreLink,
		"review.csv":      l.insertReview,
		"comments.csv":    l.insertComment,
	}
	for _, name := range loadOrder {
		n, err := l.loadFile(ctx, filepath.Join(l.dataDir, name), inserters[name])
		if err != nil {
			return fmt.Errorf("%s: load %s: %w", op, name, err)
		}
		log.Info("File loaded", "file", name, "rows", n)
	}
	if err := l.resetSequences(ctx); err != nil {
		return fmt.Errorf("%s: reset sequences: %w", op, err)
	}
	log.Info("All data loaded")
	return nil
}

// row maps a csv record by its header column names.
type row map[string]string

func (r row) int(key string) (int64, error) {
	v, err := strconv.ParseInt(r[key], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", key, err)
	}
	return v, nil
}

func (l *Loader) loadFile(ctx context.Context, path string, insert func(context.Context, row) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, err
	}
	var count int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		rec := make(row, len(header))
		for i, col := range header {
			rec[col] = record[i]
		}
		if err := insert(ctx, rec); err != nil {
			return count, fmt.Errorf("row %d: %w", count+2, err)
		}
		count++
	}
	return count, nil
}

func (l *Loader) insertUser(ctx context.Context, r row) error {
	id, err := r.int("id")
	if err != nil {
		return err
	}
	role := r["role"]
	if role == "" {
		role = "user"
	}
	_, err = l.db.Exec(ctx, `
		INSERT INTO users (id, username, email, role, bio, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`,
		id, r["username"], r["email"], role, r["bio"], r["first_name"], r["last_name"],
	)
	return err
}

func (l *Loader) insertCategory(ctx context.Context, r row) error {
	id, err := r.int("id")
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `
		INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		id, r["name"], r["slug"],
	)
	return err
}

func (l *Loader) insertGenre(ctx context.Context, r row) error {
	id, err := r.int("id")
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `
		INSERT INTO genres (id, name, slug) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		id, r["name"], r["slug"],
	)
	return err
}

func (l *Loader) insertTitle(ctx context.Context, r row) error {
	id, err := r.int("id")
	if err != nil {
		return err
	}
	year, err := r.int("year")
	if err != nil {
		return err
	}
	var categoryID *int64
	if r["category"] != "" {
		v, err := r.int("category")
		if err != nil {
			return err
		}
		categoryID = &v
	}
	_, err = l.db.Exec(ctx, `
		INSERT INTO titles (id, name, year, category_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`,
		id, r["name"], year, categoryID,
	)
	return err
}

func (l *Loader) insertGenreLink(ctx context.Context, r row) error {
	titleID, err := r.int("title_id")
	if err != nil {
		return err
	}
	genreID, err := r.int("genre_id")
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `
		INSERT INTO genre_title (title_id, genre_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		titleID, genreID,
	)
	return err
}

func (l *Loader) insertReview(ctx context.Context, r row) error {
	id, err := r.int("id")
	if err != nil {
		return err
	}
	titleID, err := r.int("title_id")
	if err != nil {
		return err
	}
	authorID, err := r.int("author")
	if err != nil {
		return err
	}
	score, err := r.int("score")
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `
		INSERT INTO reviews (id, title_id, author_id, text, score, pub_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`,
		id, titleID, authorID, r["text"], score, r["pub_date"],
	)
	return err
}

func (l *Loader) insertComment(ctx context.Context, r row) error {
	id, err := r.int("id")
	if err != nil {
		return err
	}
	reviewID, err := r.int("review_id")
	if err != nil {
		return err
	}
	authorID, err := r.int("author")
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `
		INSERT INTO comments (id, review_id, author_id, text, pub_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING`,
		id, reviewID, authorID, r["text"], r["pub_date"],
	)
	return err
}

// resetSequences moves each serial past the explicit ids just inserted,
// otherwise the next api-side insert collides with seeded rows.
func (l *Loader) resetSequences(ctx context.Context) error {
	for _, table := range []string{"users", "categories", "genres", "titles", "reviews", "comments"} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s`,
			table, table,
		)
		if _, err := l.db.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
