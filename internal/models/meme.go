package models

import "time"

// AllowedMediaTypes is the fixed set of MIME types a meme may declare.
var AllowedMediaTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"video/mp4",
	"video/quicktime",
}

type Meme struct {
	ID               string
	UserID           string
	Title            string
	Description      *string
	StorageKey       string
	ContentType      string
	SizeBytes        int64
	OriginalFilename string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Loaded association sets; nil when not hydrated.
	Categories []Category
	Tags       []Tag
}
