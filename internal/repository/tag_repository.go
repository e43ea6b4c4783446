package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memestash/api/internal/models"
)

var (
	ErrTagNotFound  = errors.New("tag not found")
	ErrTagNameTaken = errors.New("tag name taken")
)

const tagColumns = `id, user_id, name, color, created_at, updated_at`

type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

func (r *TagRepository) Create(ctx context.Context, tag models.Tag) error {
	const query = `
		INSERT INTO tags (id, user_id, name, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, tag.ID, tag.UserID, tag.Name, tag.Color)
	if isUniqueViolation(err) {
		return ErrTagNameTaken
	}
	return err
}

// FindOrCreate resolves a tag by (owner, name), creating it atomically
// when absent. The no-op DO UPDATE makes RETURNING yield the surviving
// row, so two concurrent callers converge on the same tag.
func (r *TagRepository) FindOrCreate(ctx context.Context, userID string, name string, id string) (models.Tag, error) {
	const query = `
		INSERT INTO tags (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING ` + tagColumns

	row := r.pool.QueryRow(ctx, query, id, userID, name)
	var t models.Tag
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return models.Tag{}, err
	}
	return t, nil
}

func (r *TagRepository) GetByOwner(ctx context.Context, id string, userID string) (models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE id = $1 AND user_id = $2`
	row := r.pool.QueryRow(ctx, query, id, userID)

	var t models.Tag
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tag{}, ErrTagNotFound
		}
		return models.Tag{}, err
	}
	return t, nil
}

func (r *TagRepository) Update(ctx context.Context, tag models.Tag) error {
	const query = `
		UPDATE tags
		SET name = $3, color = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, tag.ID, tag.UserID, tag.Name, tag.Color)
	if isUniqueViolation(err) {
		return ErrTagNameTaken
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, id string, userID string) error {
	const query = `DELETE FROM tags WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (r *TagRepository) List(ctx context.Context, userID string, search string) ([]models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE user_id = $1`
	args := []any{userID}
	if search != "" {
		query += ` AND name ILIKE $2`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
