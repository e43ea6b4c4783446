package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memestash/api/internal/models"
)

var ErrMemeNotFound = errors.New("meme not found")

const memeColumns = `id, user_id, title, description, storage_key, content_type, size_bytes, original_filename, created_at, updated_at`

// MemeListQuery carries normalized list parameters. SortColumn must be one
// of the whitelisted column names produced by the service layer.
type MemeListQuery struct {
	Search     string
	CategoryID string
	TagID      string
	SortColumn string
	SortDesc   bool
	Limit      int
	Offset     int
}

type MemeRepository struct {
	pool *pgxpool.Pool
}

func NewMemeRepository(pool *pgxpool.Pool) *MemeRepository {
	return &MemeRepository{pool: pool}
}

func (r *MemeRepository) Create(ctx context.Context, meme models.Meme) error {
	const query = `
		INSERT INTO memes (
			id, user_id, title, description, storage_key, content_type, size_bytes, original_filename, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		meme.ID,
		meme.UserID,
		meme.Title,
		meme.Description,
		meme.StorageKey,
		meme.ContentType,
		meme.SizeBytes,
		meme.OriginalFilename,
	)
	return err
}

func (r *MemeRepository) GetByID(ctx context.Context, id string) (models.Meme, error) {
	query := `SELECT ` + memeColumns + ` FROM memes WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *MemeRepository) GetByOwner(ctx context.Context, id string, userID string) (models.Meme, error) {
	query := `SELECT ` + memeColumns + ` FROM memes WHERE id = $1 AND user_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *MemeRepository) Update(ctx context.Context, meme models.Meme) error {
	const query = `
		UPDATE memes
		SET title = $2,
		    description = $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, meme.ID, meme.Title, meme.Description)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMemeNotFound
	}
	return nil
}

// Delete removes the catalog record. Join rows and shareable links go with
// it via ON DELETE CASCADE; the backing object is the caller's concern.
func (r *MemeRepository) Delete(ctx context.Context, id string, userID string) error {
	const query = `DELETE FROM memes WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMemeNotFound
	}
	return nil
}

// List returns one page of the owner's memes plus the distinct total after
// all filters. Category/tag filters use EXISTS so the count is never
// multiplied by join expansion.
func (r *MemeRepository) List(ctx context.Context, userID string, q MemeListQuery) ([]models.Meme, int, error) {
	where := []string{"m.user_id = $1"}
	args := []any{userID}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(m.title ILIKE $%d OR m.description ILIKE $%d)", n, n))
	}
	if q.CategoryID != "" {
		args = append(args, q.CategoryID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM meme_categories mc WHERE mc.meme_id = m.id AND mc.category_id = $%d)", len(args)))
	}
	if q.TagID != "" {
		args = append(args, q.TagID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM meme_tags mt WHERE mt.meme_id = m.id AND mt.tag_id = $%d)", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := `SELECT COUNT(*) FROM memes m WHERE ` + whereClause
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	args = append(args, q.Limit, q.Offset)
	listQuery := fmt.Sprintf(
		`SELECT m.id, m.user_id, m.title, m.description, m.storage_key, m.content_type, m.size_bytes, m.original_filename, m.created_at, m.updated_at
		 FROM memes m
		 WHERE %s
		 ORDER BY m.%s %s
		 LIMIT $%d OFFSET $%d`,
		whereClause, q.SortColumn, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	memes, err := scanMemes(rows)
	if err != nil {
		return nil, 0, err
	}
	return memes, total, nil
}

// ReplaceCategories swaps the meme's category set for exactly the given
// ids inside one transaction.
func (r *MemeRepository) ReplaceCategories(ctx context.Context, memeID string, categoryIDs []string) error {
	return r.replaceJoin(ctx, memeID, categoryIDs, "meme_categories", "category_id")
}

func (r *MemeRepository) ReplaceTags(ctx context.Context, memeID string, tagIDs []string) error {
	return r.replaceJoin(ctx, memeID, tagIDs, "meme_tags", "tag_id")
}

func (r *MemeRepository) replaceJoin(ctx context.Context, memeID string, ids []string, table string, column string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE meme_id = $1`, table), memeID); err != nil {
		return err
	}
	for _, id := range ids {
		insert := fmt.Sprintf(`INSERT INTO %s (meme_id, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, column)
		if _, err := tx.Exec(ctx, insert, memeID, id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// LoadAssociations hydrates the category and tag sets of the given memes
// with two batched queries.
func (r *MemeRepository) LoadAssociations(ctx context.Context, memes []models.Meme) ([]models.Meme, error) {
	if len(memes) == 0 {
		return memes, nil
	}

	memeIDs := make([]string, len(memes))
	index := make(map[string]int, len(memes))
	for i, m := range memes {
		memeIDs[i] = m.ID
		index[m.ID] = i
		memes[i].Categories = []models.Category{}
		memes[i].Tags = []models.Tag{}
	}

	const categoryQuery = `
		SELECT mc.meme_id, c.id, c.user_id, c.name, c.description, c.color, c.icon, c.created_at, c.updated_at
		FROM meme_categories mc
		JOIN categories c ON c.id = mc.category_id
		WHERE mc.meme_id = ANY($1)
		ORDER BY c.name ASC
	`
	rows, err := r.pool.Query(ctx, categoryQuery, memeIDs)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var memeID string
		var c models.Category
		if err := rows.Scan(&memeID, &c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		i := index[memeID]
		memes[i].Categories = append(memes[i].Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const tagQuery = `
		SELECT mt.meme_id, t.id, t.user_id, t.name, t.color, t.created_at, t.updated_at
		FROM meme_tags mt
		JOIN tags t ON t.id = mt.tag_id
		WHERE mt.meme_id = ANY($1)
		ORDER BY t.name ASC
	`
	rows, err = r.pool.Query(ctx, tagQuery, memeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var memeID string
		var t models.Tag
		if err := rows.Scan(&memeID, &t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		i := index[memeID]
		memes[i].Tags = append(memes[i].Tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return memes, nil
}

// ExistsByStorageKey reports whether any catalog record references the
// given object key. Used by the orphan sweep.
func (r *MemeRepository) ExistsByStorageKey(ctx context.Context, key string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM memes WHERE storage_key = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, key).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *MemeRepository) scanOne(row pgx.Row) (models.Meme, error) {
	var meme models.Meme
	if err := row.Scan(
		&meme.ID,
		&meme.UserID,
		&meme.Title,
		&meme.Description,
		&meme.StorageKey,
		&meme.ContentType,
		&meme.SizeBytes,
		&meme.OriginalFilename,
		&meme.CreatedAt,
		&meme.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Meme{}, ErrMemeNotFound
		}
		return models.Meme{}, err
	}
	return meme, nil
}

func scanMemes(rows pgx.Rows) ([]models.Meme, error) {
	var memes []models.Meme
	for rows.Next() {
		var meme models.Meme
		if err := rows.Scan(
			&meme.ID,
			&meme.UserID,
			&meme.Title,
			&meme.Description,
			&meme.StorageKey,
			&meme.ContentType,
			&meme.SizeBytes,
			&meme.OriginalFilename,
			&meme.CreatedAt,
			&meme.UpdatedAt,
		); err != nil {
			return nil, err
		}
		memes = append(memes, meme)
	}
	return memes, rows.Err()
}
