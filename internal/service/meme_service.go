package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"memestash/api/internal/apperr"
	"memestash/api/internal/cache"
	"memestash/api/internal/ids"
	"memestash/api/internal/media"
	"memestash/api/internal/models"
	"memestash/api/internal/repository"
	"memestash/api/internal/storage"
)

type MemeService struct {
	memes      MemeCatalog
	categories CategoryCatalog
	tags       TagCatalog
	store      AssetStore
	metadata   *cache.MetadataCache
	maxBytes   int64
	log        zerolog.Logger
	now        func() time.Time
}

func NewMemeService(
	memes MemeCatalog,
	categories CategoryCatalog,
	tags TagCatalog,
	store AssetStore,
	metadata *cache.MetadataCache,
	maxBytes int64,
	log zerolog.Logger,
) *MemeService {
	return &MemeService{
		memes:      memes,
		categories: categories,
		tags:       tags,
		store:      store,
		metadata:   metadata,
		maxBytes:   maxBytes,
		log:        log,
		now:        time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *MemeService) WithClock(now func() time.Time) *MemeService {
	s.now = now
	return s
}

type UploadInput struct {
	UserID           string
	Title            string
	Description      *string
	Data             []byte
	DeclaredType     string
	OriginalFilename string
	CategoryIDs      []string
	TagNames         []string
}

// Upload validates and persists a new meme. The byte stream is stored
// before the catalog record; a failed record write triggers a
// compensating delete of the stored object so at most one of the two
// resources can leak, and only in the tolerated direction.
func (s *MemeService) Upload(ctx context.Context, input UploadInput) (models.Meme, error) {
	if strings.TrimSpace(input.Title) == "" {
		return models.Meme{}, apperr.Validation("Title is required")
	}
	if len(input.Data) == 0 {
		return models.Meme{}, apperr.Validation("No file uploaded")
	}
	if int64(len(input.Data)) > s.maxBytes {
		return models.Meme{}, apperr.PayloadTooLarge("File too large. Maximum size is %dMB", s.maxBytes/(1024*1024))
	}
	if !slices.Contains(models.AllowedMediaTypes, input.DeclaredType) {
		return models.Meme{}, apperr.UnsupportedMediaType(
			"Unsupported file type. Allowed types: %s", strings.Join(models.AllowedMediaTypes, ", "))
	}

	head := input.Data
	if len(head) > 512 {
		head = head[:512]
	}
	sniffed, err := media.DetectHead(head)
	if err != nil || sniffed.MIME != input.DeclaredType {
		return models.Meme{}, apperr.UnsupportedMediaType("File content does not match declared type %s", input.DeclaredType)
	}

	memeID := ids.New()
	key := s.buildStorageKey(memeID, input.OriginalFilename, sniffed.Type)

	if err := s.store.Put(ctx, key, input.Data, input.DeclaredType); err != nil {
		return models.Meme{}, fmt.Errorf("store upload: %w", err)
	}

	meme := models.Meme{
		ID:               memeID,
		UserID:           input.UserID,
		Title:            input.Title,
		Description:      input.Description,
		StorageKey:       key,
		ContentType:      input.DeclaredType,
		SizeBytes:        int64(len(input.Data)),
		OriginalFilename: input.OriginalFilename,
	}

	if err := s.memes.Create(ctx, meme); err != nil {
		if cleanupErr := s.store.Delete(ctx, key); cleanupErr != nil {
			s.log.Warn().Err(cleanupErr).
				Str("storage_key", key).
				Msg("compensating delete failed, object orphaned")
		}
		return models.Meme{}, fmt.Errorf("save meme: %w", err)
	}

	if len(input.CategoryIDs) > 0 {
		if err := s.applyCategories(ctx, input.UserID, memeID, input.CategoryIDs); err != nil {
			return models.Meme{}, err
		}
	}
	if len(input.TagNames) > 0 {
		if err := s.applyTags(ctx, input.UserID, memeID, input.TagNames); err != nil {
			return models.Meme{}, err
		}
	}

	return s.Get(ctx, memeID, input.UserID)
}

func (s *MemeService) Get(ctx context.Context, id string, userID string) (models.Meme, error) {
	meme, err := s.memes.GetByOwner(ctx, id, userID)
	if err != nil {
		return models.Meme{}, memeError(err)
	}
	hydrated, err := s.memes.LoadAssociations(ctx, []models.Meme{meme})
	if err != nil {
		return models.Meme{}, fmt.Errorf("load associations: %w", err)
	}
	return hydrated[0], nil
}

type UpdateInput struct {
	// Nil pointers mean "leave unchanged"; a present-but-empty category
	// or tag set clears the associations.
	Title       *string
	Description *string
	CategoryIDs *[]string
	TagNames    *[]string
}

func (s *MemeService) Update(ctx context.Context, id string, userID string, input UpdateInput) (models.Meme, error) {
	meme, err := s.memes.GetByOwner(ctx, id, userID)
	if err != nil {
		return models.Meme{}, memeError(err)
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		meme.Title = *input.Title
	}
	if input.Description != nil {
		if *input.Description == "" {
			meme.Description = nil
		} else {
			meme.Description = input.Description
		}
	}

	if err := s.memes.Update(ctx, meme); err != nil {
		return models.Meme{}, memeError(err)
	}

	if input.CategoryIDs != nil {
		if err := s.applyCategories(ctx, userID, id, *input.CategoryIDs); err != nil {
			return models.Meme{}, err
		}
	}
	if input.TagNames != nil {
		if err := s.applyTags(ctx, userID, id, *input.TagNames); err != nil {
			return models.Meme{}, err
		}
	}

	if err := s.metadata.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("meme_id", id).Msg("metadata cache invalidation failed")
	}

	return s.Get(ctx, id, userID)
}

// Delete removes the catalog record first, making the meme unreachable,
// then best-effort deletes the backing object. A failed object delete is
// logged and tolerated; the record removal is the authoritative deletion.
func (s *MemeService) Delete(ctx context.Context, id string, userID string) error {
	meme, err := s.memes.GetByOwner(ctx, id, userID)
	if err != nil {
		return memeError(err)
	}

	if err := s.memes.Delete(ctx, id, userID); err != nil {
		return memeError(err)
	}

	if err := s.store.Delete(ctx, meme.StorageKey); err != nil {
		s.log.Warn().Err(err).
			Str("meme_id", id).
			Str("storage_key", meme.StorageKey).
			Msg("file delete failed, object orphaned")
	}

	if err := s.metadata.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("meme_id", id).Msg("metadata cache invalidation failed")
	}

	return nil
}

type ListInput struct {
	Search     string
	CategoryID string
	TagID      string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

type Pagination struct {
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

func (s *MemeService) List(ctx context.Context, userID string, input ListInput) ([]models.Meme, Pagination, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	column, desc := normalizeSort(input.SortBy, input.SortOrder)

	memes, total, err := s.memes.List(ctx, userID, repository.MemeListQuery{
		Search:     input.Search,
		CategoryID: input.CategoryID,
		TagID:      input.TagID,
		SortColumn: column,
		SortDesc:   desc,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list memes: %w", err)
	}

	memes, err = s.memes.LoadAssociations(ctx, memes)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("load associations: %w", err)
	}

	return memes, Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// GetFile returns the backing asset bytes. A record whose object is gone
// from the store is a detectable desync, reported as FileMissing rather
// than NotFound.
func (s *MemeService) GetFile(ctx context.Context, id string, userID string) ([]byte, models.Meme, error) {
	meme, err := s.memes.GetByOwner(ctx, id, userID)
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

// normalizeSort maps the public sort parameters onto whitelisted columns,
// silently falling back to newest-first on anything unrecognized.
func normalizeSort(sortBy string, sortOrder string) (column string, desc bool) {
	switch sortBy {
	case "title":
		column = "title"
	case "fileSize":
		column = "size_bytes"
	case "createdAt":
		column = "created_at"
	default:
		return "created_at", true
	}

	switch strings.ToLower(sortOrder) {
	case "asc":
		return column, false
	case "desc":
		return column, true
	default:
		return "created_at", true
	}
}

// applyCategories resolves the requested ids to categories the user owns
// and replaces the meme's category set with that subset. Ids that do not
// resolve, or belong to someone else, are dropped without error.
func (s *MemeService) applyCategories(ctx context.Context, userID string, memeID string, categoryIDs []string) error {
	resolved, err := s.categories.ResolveOwned(ctx, userID, categoryIDs)
	if err != nil {
		return fmt.Errorf("resolve categories: %w", err)
	}
	resolvedIDs := make([]string, len(resolved))
	for i, c := range resolved {
		resolvedIDs[i] = c.ID
	}
	if err := s.memes.ReplaceCategories(ctx, memeID, resolvedIDs); err != nil {
		return fmt.Errorf("replace categories: %w", err)
	}
	return nil
}

// applyTags find-or-creates each named tag for the owner and replaces the
// meme's tag set. Names are matched case-sensitively.
func (s *MemeService) applyTags(ctx context.Context, userID string, memeID string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	var tagIDs []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		tag, err := s.tags.FindOrCreate(ctx, userID, name, ids.New())
		if err != nil {
			return fmt.Errorf("find or create tag %q: %w", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.memes.ReplaceTags(ctx, memeID, tagIDs); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	return nil
}

func (s *MemeService) buildStorageKey(memeID string, originalFilename string, mediaType media.MediaType) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == "" {
		ext = "." + string(mediaType)
	}
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, memeID+ext)
}

func memeError(err error) error {
	if errors.Is(err, repository.ErrMemeNotFound) {
		return apperr.NotFound("Meme not found")
	}
	return err
}
