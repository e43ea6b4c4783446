package service

import (
	"context"

	"memestash/api/internal/models"
	"memestash/api/internal/repository"
)

// Collaborator interfaces consumed by the services. The pgx repositories
// and the minio object store satisfy them in production; tests substitute
// in-memory fakes.

type MemeCatalog interface {
	Create(ctx context.Context, meme models.Meme) error
	GetByID(ctx context.Context, id string) (models.Meme, error)
	GetByOwner(ctx context.Context, id string, userID string) (models.Meme, error)
	Update(ctx context.Context, meme models.Meme) error
	Delete(ctx context.Context, id string, userID string) error
	List(ctx context.Context, userID string, q repository.MemeListQuery) ([]models.Meme, int, error)
	ReplaceCategories(ctx context.Context, memeID string, categoryIDs []string) error
	ReplaceTags(ctx context.Context, memeID string, tagIDs []string) error
	LoadAssociations(ctx context.Context, memes []models.Meme) ([]models.Meme, error)
}

type CategoryCatalog interface {
	Create(ctx context.Context, category models.Category) error
	GetByOwner(ctx context.Context, id string, userID string) (models.Category, error)
	Update(ctx context.Context, category models.Category) error
	Delete(ctx context.Context, id string, userID string) error
	List(ctx context.Context, userID string, search string) ([]models.Category, error)
	ResolveOwned(ctx context.Context, userID string, ids []string) ([]models.Category, error)
	NameExists(ctx context.Context, userID string, name string, excludeID string) (bool, error)
}

type TagCatalog interface {
	Create(ctx context.Context, tag models.Tag) error
	FindOrCreate(ctx context.Context, userID string, name string, id string) (models.Tag, error)
	GetByOwner(ctx context.Context, id string, userID string) (models.Tag, error)
	Update(ctx context.Context, tag models.Tag) error
	Delete(ctx context.Context, id string, userID string) error
	List(ctx context.Context, userID string, search string) ([]models.Tag, error)
}

type LinkCatalog interface {
	Create(ctx context.Context, link models.ShareableLink) error
	GetByToken(ctx context.Context, token string) (models.ShareableLink, error)
	DeleteByToken(ctx context.Context, token string, userID string) error
	ListByMeme(ctx context.Context, memeID string, userID string) ([]models.ShareableLink, error)
}

type UserCatalog interface {
	Create(ctx context.Context, user models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username string, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type AssetStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
