package media

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeJPEG      MediaType = "jpeg"
	TypePNG       MediaType = "png"
	TypeGIF       MediaType = "gif"
	TypeMP4       MediaType = "mp4"
	TypeQuicktime MediaType = "mov"
)

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

// DetectHead identifies the media type from the leading bytes of a file.
// Only the formats the service accepts are recognized.
func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	}
	if isGIF(head) {
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	}
	if isQuicktime(head) {
		return Result{Type: TypeQuicktime, MIME: "video/quicktime"}, nil
	}
	if isMP4(head) {
		return Result{Type: TypeMP4, MIME: "video/mp4"}, nil
	}

	return Result{}, ErrUnknownType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

// ISO base media files open with a size-prefixed "ftyp" box; the major
// brand distinguishes plain MP4 from QuickTime containers.
func hasFtyp(head []byte) bool {
	return len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp"))
}

func isQuicktime(head []byte) bool {
	return hasFtyp(head) && bytes.Equal(head[8:12], []byte("qt  "))
}

func isMP4(head []byte) bool {
	if !hasFtyp(head) {
		return false
	}
	brand := string(head[8:12])
	switch brand {
	case "isom", "iso2", "mp41", "mp42", "avc1", "M4V ", "M4A ", "dash":
		return true
	}
	return false
}

// MimeTypeFromHTTP strips any parameters from a Content-Type header.
func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
