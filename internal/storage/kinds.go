package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnknownKind     = errors.New("unknown media kind")
)

// Kind is the purpose an uploaded file serves
type Kind string

const (
	KindAvatar    Kind = "avatar"
	KindResume    Kind = "resume"
	KindCover     Kind = "cover"
	KindPostMedia Kind = "post"
)

// Media types recorded on posts
const (
	MediaTypePhoto = "Photo"
	MediaTypeVideo = "Video"
)

const megabyte = 1 << 20

type kindRule struct {
	extensions []string
	maxSize    int64
	// fixed keys overwrite the user's previous file of the same kind
	fixed bool
}

var rules = map[Kind]kindRule{
	KindAvatar:    {extensions: []string{".jpg", ".jpeg", ".png"}, maxSize: 5 * megabyte, fixed: true},
	KindResume:    {extensions: []string{".pdf", ".doc", ".docx"}, maxSize: 10 * megabyte, fixed: true},
	KindCover:     {extensions: []string{".jpg", ".jpeg", ".png"}, maxSize: 8 * megabyte, fixed: true},
	KindPostMedia: {extensions: []string{".jpg", ".jpeg", ".png", ".mp4", ".mov"}, maxSize: 100 * megabyte},
}

// AllowedExtensions lists the file extensions accepted for kind
func AllowedExtensions(kind Kind) []string {
	return rules[kind].extensions
}

// Validate checks a file's extension and size against the rules for kind
func Validate(kind Kind, header *multipart.FileHeader) error {
	rule, ok := rules[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowed := false
	for _, e := range rule.extensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedType, ext, strings.Join(rule.extensions, ", "))
	}

	if header.Size > rule.maxSize {
		return fmt.Errorf("%w: %s uploads must be under %dMB", ErrFileTooLarge, kind, rule.maxSize/megabyte)
	}
	return nil
}

// MediaType classifies a post attachment as a photo or a video by extension
func MediaType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4", ".mov":
		return MediaTypeVideo
	default:
		return MediaTypePhoto
	}
}

// objectKey returns the storage key for a file of kind owned by userID.
// Profile assets use one key per user; post media gets a fresh key per upload.
func objectKey(kind Kind, userID, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if rules[kind].fixed {
		return fmt.Sprintf("%ss/%s-%s%s", kind, kind, userID, ext)
	}
	return fmt.Sprintf("posts/%d/%02d/%s/%s%s", now.Year(), now.Month(), userID, uuid.NewString(), ext)
}

// getContentType returns the MIME type for a file extension
func getContentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
