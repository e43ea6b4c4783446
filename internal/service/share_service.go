package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"memestash/api/internal/apperr"
	"memestash/api/internal/cache"
	"memestash/api/internal/ids"
	"memestash/api/internal/models"
	"memestash/api/internal/repository"
	"memestash/api/internal/security"
	"memestash/api/internal/storage"
)

type ShareService struct {
	links      LinkCatalog
	memes      MemeCatalog
	store      AssetStore
	metadata   *cache.MetadataCache
	baseURL    string
	defaultTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewShareService(
	links LinkCatalog,
	memes MemeCatalog,
	store AssetStore,
	metadata *cache.MetadataCache,
	baseURL string,
	defaultTTL time.Duration,
	log zerolog.Logger,
) *ShareService {
	return &ShareService{
		links:      links,
		memes:      memes,
		store:      store,
		metadata:   metadata,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		defaultTTL: defaultTTL,
		log:        log,
		now:        time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *ShareService) WithClock(now func() time.Time) *ShareService {
	s.now = now
	return s
}

type CreateLinkInput struct {
	IsTemporary bool
	// ExpiresIn is the lifetime in seconds of a temporary link; nil means
	// the configured default. Ignored for permanent links.
	ExpiresIn *int64
	IsPublic  *bool
}

func (s *ShareService) CreateLink(ctx context.Context, memeID string, userID string, input CreateLinkInput) (models.ShareableLink, error) {
	if _, err := s.memes.GetByOwner(ctx, memeID, userID); err != nil {
		return models.ShareableLink{}, memeError(err)
	}

	token, err := security.NewShareToken(32)
	if err != nil {
		return models.ShareableLink{}, fmt.Errorf("share token: %w", err)
	}

	var expiresAt *time.Time
	if input.IsTemporary {
		ttl := s.defaultTTL
		if input.ExpiresIn != nil {
			ttl = time.Duration(*input.ExpiresIn) * time.Second
		}
		t := s.now().Add(ttl)
		expiresAt = &t
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	link := models.ShareableLink{
		ID:        ids.New(),
		Token:     token,
		MemeID:    memeID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		IsPublic:  isPublic,
		CreatedAt: s.now(),
	}

	if err := s.links.Create(ctx, link); err != nil {
		return models.ShareableLink{}, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

// ResolveLink exchanges a capability token for the referenced meme. The
// gate order is fixed: unknown token, then expiry (re-checked against the
// clock on every access), then visibility.
func (s *ShareService) ResolveLink(ctx context.Context, token string, requesterID string) (models.Meme, models.ShareableLink, error) {
	link, err := s.gate(ctx, token, requesterID)
	if err != nil {
		return models.Meme{}, models.ShareableLink{}, err
	}

	meme, err := s.memes.GetByID(ctx, link.MemeID)
	if err != nil {
		return models.Meme{}, models.ShareableLink{}, memeError(err)
	}
	hydrated, err := s.memes.LoadAssociations(ctx, []models.Meme{meme})
	if err != nil {
		return models.Meme{}, models.ShareableLink{}, fmt.Errorf("load associations: %w", err)
	}
	return hydrated[0], link, nil
}

// ResolveLinkFile applies the same gate as ResolveLink, then streams the
// backing asset.
func (s *ShareService) ResolveLinkFile(ctx context.Context, token string, requesterID string) ([]byte, models.Meme, error) {
	link, err := s.gate(ctx, token, requesterID)
	if err != nil {
		return nil, models.Meme{}, err
	}

	meme, err := s.memes.GetByID(ctx, link.MemeID)
	if err != nil {
		return nil, models.Meme{}, memeError(err)
	}

	data, err := s.store.Get(ctx, meme.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectMissing) {
			return nil, models.Meme{}, apperr.FileMissing("Meme file not found")
		}
		return nil, models.Meme{}, fmt.Errorf("fetch file: %w", err)
	}
	return data, meme, nil
}

func (s *ShareService) gate(ctx context.Context, token string, requesterID string) (models.ShareableLink, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return models.ShareableLink{}, apperr.NotFound("Shareable link not found")
		}
		return models.ShareableLink{}, err
	}

	if link.Expired(s.now()) {
		return models.ShareableLink{}, apperr.Gone("Shareable link has expired")
	}

	if !link.IsPublic && (requesterID == "" || requesterID != link.UserID) {
		return models.ShareableLink{}, apperr.Forbidden("This link is private")
	}

	return link, nil
}

func (s *ShareService) RevokeLink(ctx context.Context, token string, userID string) error {
	if err := s.links.DeleteByToken(ctx, token, userID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return apperr.NotFound("Shareable link not found")
		}
		return err
	}
	return nil
}

// ListLinks returns every link for the meme, expired ones included:
// expiry is a read-time gate, never a deletion trigger.
func (s *ShareService) ListLinks(ctx context.Context, memeID string, userID string) ([]models.ShareableLink, error) {
	if _, err := s.memes.GetByOwner(ctx, memeID, userID); err != nil {
		return nil, memeError(err)
	}
	return s.links.ListByMeme(ctx, memeID, userID)
}

// ShareURL builds the public URL for a token.
func (s *ShareService) ShareURL(token string) string {
	return s.baseURL + "/share/" + token
}

// MemeMetadata is the public, ownerless view of a meme used for social
// share previews.
type MemeMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	URL         string `json:"url"`
}

// Metadata serves the public metadata view through the write-through
// cache; cache failures degrade to catalog reads.
func (s *ShareService) Metadata(ctx context.Context, memeID string) (MemeMetadata, error) {
	var cached MemeMetadata
	hit, err := s.metadata.Get(ctx, memeID, &cached)
	if err != nil {
		s.log.Warn().Err(err).Str("meme_id", memeID).Msg("metadata cache read failed")
	} else if hit {
		return cached, nil
	}

	meme, err := s.memes.GetByID(ctx, memeID)
	if err != nil {
		return MemeMetadata{}, memeError(err)
	}

	description := "A meme from Meme Stash"
	if meme.Description != nil && *meme.Description != "" {
		description = *meme.Description
	}

	meta := MemeMetadata{
		Title:       meme.Title,
		Description: description,
		ImageURL:    fmt.Sprintf("%s/api/memes/%s/file", s.baseURL, meme.ID),
		URL:         fmt.Sprintf("%s/meme/%s", s.baseURL, meme.ID),
	}

	if err := s.metadata.Put(ctx, memeID, meta); err != nil {
		s.log.Warn().Err(err).Str("meme_id", memeID).Msg("metadata cache write failed")
	}
	return meta, nil
}
