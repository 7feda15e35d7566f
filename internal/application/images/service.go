package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"estate-backend/internal/domain"
	"estate-backend/internal/pkg/apperror"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp" // register WebP decoder
	"gorm.io/gorm"
)

// WebPQuality matches the original storage setting (lossy re-encode).
const WebPQuality = 75

// Upload is one file received with a request.
type Upload struct {
	FileName string
	Content  []byte
}

// Service persists listing and application attachments under MediaDir.
// Images are re-encoded to WebP on write unless the name already indicates
// that format; any encode or write failure aborts the whole attach.
type Service struct {
	DB       *gorm.DB
	MediaDir string
}

// AttachToListing stores one upload against a listing. Image content becomes
// a ListingImage row; video content replaces the listing's single video
// attachment and returns a nil image.
func (s *Service) AttachToListing(ctx context.Context, listing *domain.Listing, up Upload, position int) (*domain.ListingImage, error) {
	img, _, obsolete, err := s.attach(ctx, s.DB, listing, up, position)
	if err != nil {
		return nil, err
	}
	s.removeFile(obsolete)
	return img, nil
}

// AttachBatch stores uploads against a listing starting at position start.
// Row writes run in one transaction; a failing upload attaches nothing and
// the original attachments stay intact.
func (s *Service) AttachBatch(ctx context.Context, listing *domain.Listing, uploads []Upload, start int) error {
	var written, obsolete []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		written, obsolete, err = s.attachAll(ctx, tx, listing, uploads, start)
		return err
	})
	if err != nil {
		s.RemoveFiles(written)
		return err
	}
	s.RemoveFiles(obsolete)
	return nil
}

// ReplaceListingImages swaps the full image set of a listing for the uploads,
// in order. The delete and the attaches run in one transaction so a failing
// upload leaves the original set untouched; files on disk are only disposed
// of after the commit. Caller only invokes this with a non-empty list.
func (s *Service) ReplaceListingImages(ctx context.Context, listing *domain.Listing, uploads []Upload) error {
	var written, obsolete []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old []domain.ListingImage
		if err := tx.Where("listing_id = ?", listing.ID).Find(&old).Error; err != nil {
			return apperror.Internal(err)
		}
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&domain.ListingImage{}).Error; err != nil {
			return apperror.Internal(err)
		}
		w, obs, err := s.attachAll(ctx, tx, listing, uploads, 0)
		written = w
		if err != nil {
			return err
		}
		obsolete = obs
		for _, img := range old {
			obsolete = append(obsolete, img.FileName)
		}
		return nil
	})
	if err != nil {
		s.RemoveFiles(written)
		return err
	}
	s.RemoveFiles(obsolete)
	return nil
}

// AttachForCreate stores uploads for a freshly created listing using db,
// which is expected to be the transaction the listing row was created in.
// It returns every file written so the caller can remove them on rollback.
func (s *Service) AttachForCreate(ctx context.Context, db *gorm.DB, listing *domain.Listing, uploads []Upload) ([]string, error) {
	written, _, err := s.attachAll(ctx, db, listing, uploads, 0)
	return written, err
}

// attachAll runs attach for each upload in order against db, which may be a
// transaction in progress. written holds every file put on disk (the caller
// removes them if the transaction rolls back); obsolete holds files the
// attaches superseded (the caller removes them once the work is committed).
func (s *Service) attachAll(ctx context.Context, db *gorm.DB, listing *domain.Listing, uploads []Upload, start int) (written, obsolete []string, err error) {
	for i, up := range uploads {
		_, name, prev, err := s.attach(ctx, db, listing, up, start+i)
		if err != nil {
			return written, obsolete, err
		}
		written = append(written, name)
		if prev != "" {
			obsolete = append(obsolete, prev)
		}
	}
	return written, obsolete, nil
}

// attach stores one upload with row writes going through db. On success it
// reports the file written and any file the write made obsolete (a replaced
// video); disposal of both is the caller's problem. On failure the file it
// wrote, if any, is already gone.
func (s *Service) attach(ctx context.Context, db *gorm.DB, listing *domain.Listing, up Upload, position int) (*domain.ListingImage, string, string, error) {
	if len(up.Content) == 0 {
		return nil, "", "", apperror.FieldError("image", "Empty file")
	}
	sniffed := http.DetectContentType(up.Content)
	switch {
	case strings.HasPrefix(sniffed, "video/"):
		name := uuid.New().String() + strings.ToLower(filepath.Ext(up.FileName))
		if err := s.writeFile(name, up.Content); err != nil {
			return nil, "", "", err
		}
		previous := listing.VideoFile
		if err := db.WithContext(ctx).Model(listing).Update("video_file", name).Error; err != nil {
			s.removeFile(name)
			return nil, "", "", apperror.Internal(err)
		}
		listing.VideoFile = name
		return nil, name, previous, nil
	case strings.HasPrefix(sniffed, "image/"):
		name, err := s.storeImage(up)
		if err != nil {
			return nil, "", "", err
		}
		img := &domain.ListingImage{ListingID: listing.ID, FileName: name, Position: position}
		if err := db.WithContext(ctx).Create(img).Error; err != nil {
			s.removeFile(name)
			return nil, "", "", apperror.Internal(err)
		}
		return img, name, "", nil
	default:
		return nil, "", "", apperror.FieldError("image", fmt.Sprintf("Unsupported media type %q", sniffed))
	}
}

// StoreImage persists a standalone image upload (application attachments) and
// returns the stored file name.
func (s *Service) StoreImage(ctx context.Context, up Upload) (string, error) {
	if len(up.Content) == 0 {
		return "", apperror.FieldError("image", "Empty file")
	}
	if !strings.HasPrefix(http.DetectContentType(up.Content), "image/") {
		return "", apperror.FieldError("image", "File is not an image")
	}
	return s.storeImage(up)
}

// storeImage re-encodes to WebP unless the upload is already named .webp,
// then writes the file. Encoding happens fully in memory before any write so
// a failure never leaves a partial file behind.
func (s *Service) storeImage(up Upload) (string, error) {
	content := up.Content
	if !strings.HasSuffix(strings.ToLower(up.FileName), ".webp") {
		img, _, err := image.Decode(bytes.NewReader(content))
		if err != nil {
			return "", apperror.FieldError("image", "Invalid image file")
		}
		var buf bytes.Buffer
		if err := webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality}); err != nil {
			return "", apperror.Storage("Image encoding failed", err)
		}
		content = buf.Bytes()
	}
	name := uuid.New().String() + ".webp"
	if err := s.writeFile(name, content); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Service) writeFile(name string, content []byte) error {
	if err := os.MkdirAll(s.MediaDir, 0o755); err != nil {
		return apperror.Storage("Media directory unavailable", err)
	}
	if err := os.WriteFile(filepath.Join(s.MediaDir, name), content, 0o644); err != nil {
		return apperror.Storage("File write failed", err)
	}
	return nil
}

// RemoveFiles deletes stored media files, ignoring ones already gone.
func (s *Service) RemoveFiles(names []string) {
	for _, name := range names {
		s.removeFile(name)
	}
}

func (s *Service) removeFile(name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.MediaDir, name)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", name).Msg("Failed to remove media file")
	}
}
