package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memestash/api/internal/models"
)

var ErrLinkNotFound = errors.New("shareable link not found")

const linkColumns = `id, token, meme_id, user_id, expires_at, is_public, created_at`

type LinkRepository struct {
	pool *pgxpool.Pool
}

func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

func (r *LinkRepository) Create(ctx context.Context, link models.ShareableLink) error {
	const query = `
		INSERT INTO shareable_links (id, token, meme_id, user_id, expires_at, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Token,
		link.MemeID,
		link.UserID,
		link.ExpiresAt,
		link.IsPublic,
	)
	return err
}

func (r *LinkRepository) GetByToken(ctx context.Context, token string) (models.ShareableLink, error) {
	query := `SELECT ` + linkColumns + ` FROM shareable_links WHERE token = $1`
	row := r.pool.QueryRow(ctx, query, token)

	var link models.ShareableLink
	if err := row.Scan(&link.ID, &link.Token, &link.MemeID, &link.UserID, &link.ExpiresAt, &link.IsPublic, &link.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ShareableLink{}, ErrLinkNotFound
		}
		return models.ShareableLink{}, err
	}
	return link, nil
}

// DeleteByToken revokes a link. The owner filter keeps a guessed token
// useless to anyone but the issuer.
func (r *LinkRepository) DeleteByToken(ctx context.Context, token string, userID string) error {
	const query = `DELETE FROM shareable_links WHERE token = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, token, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// ListByMeme returns every link for the meme, expired ones included.
func (r *LinkRepository) ListByMeme(ctx context.Context, memeID string, userID string) ([]models.ShareableLink, error) {
	query := `SELECT ` + linkColumns + ` FROM shareable_links WHERE meme_id = $1 AND user_id = $2 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, memeID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.ShareableLink
	for rows.Next() {
		var link models.ShareableLink
		if err := rows.Scan(&link.ID, &link.Token, &link.MemeID, &link.UserID, &link.ExpiresAt, &link.IsPublic, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}
