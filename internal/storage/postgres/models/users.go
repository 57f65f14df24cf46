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

type UserModel struct {
	DB *pgxpool.Pool
}

const userColumns = "id, username, email, first_name, last_name, bio, role, is_superuser, confirmation_code, created_at"

func (m *UserModel) GetByID(ctx context.Context, id int64) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return collectUser(rows)
}

func (m *UserModel) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	return collectUser(rows)
}

func (m *UserModel) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO users (username, email, first_name, last_name, bio, role, is_superuser, confirmation_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+userColumns,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.IsSuperuser,
		user.ConfirmationCode,
	)
	return collectUser(rows)
}

// GetOrCreate backs self-registration: an existing (username, email) pair is
// returned as-is, otherwise a fresh row is inserted. A collision on only one
// of the two unique columns surfaces as ErrConflict from the unique indexes.
func (m *UserModel) GetOrCreate(ctx context.Context, username, email string, confirmationCode int) (*models.User, bool, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1 AND email = $2",
		username,
		email,
	)
	user, err := collectUser(rows)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}
	user, err = m.Insert(ctx, &models.User{
		Username:         username,
		Email:            email,
		ConfirmationCode: &confirmationCode,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (m *UserModel) List(ctx context.Context, search string, filters filters.Filters) ([]models.User, int, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT count(*) OVER(), `+userColumns+` FROM users
		WHERE (username ILIKE '%' || $1 || '%' OR $1 = '')
		ORDER BY created_at DESC, username ASC
		LIMIT $2 OFFSET $3`,
		search,
		filters.Limit(),
		filters.Offset(),
	)
	type row struct {
		Count int
		models.User
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	if len(outputRows) == 0 {
		return []models.User{}, 0, nil
	}
	users := make([]models.User, 0, len(outputRows))
	for _, row := range outputRows {
		users = append(users, row.User)
	}
	return users, outputRows[0].Count, nil
}

func (m *UserModel) Update(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE users SET username = $1, email = $2, first_name = $3, last_name = $4, bio = $5, role = $6, confirmation_code = $7
		WHERE id = $8 RETURNING `+userColumns,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role,
		user.ConfirmationCode,
		user.ID,
	)
	return collectUser(rows)
}

func (m *UserModel) Delete(ctx context.Context, username string) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM users WHERE username = $1", username)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func collectUser(rows pgx.Rows) (*models.User, error) {
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, postgres.MapError(err)
	}
	return &user, nil
}
