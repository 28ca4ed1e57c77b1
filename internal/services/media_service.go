package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	ierr "bizdir/internal/errors"
	applog "bizdir/internal/log"
	"bizdir/internal/repos"
	"bizdir/internal/storage"
)

// MaxUploadBytes caps a single media upload.
const MaxUploadBytes = 5 << 20

// Upload targets.
const (
	UploadBusiness = "business"
	UploadProduct  = "product"
)

type UploadInput struct {
	Kind       string
	BusinessID string
	Data       []byte
}

// MediaService stores images for listings and products and hands back their URLs.
// It never checks that a URL stays reachable.
type MediaService struct {
	store   repos.Store
	gate    *AccessGate
	storage storage.Storage
}

func NewMediaService(store repos.Store, gate *AccessGate, st storage.Storage) *MediaService {
	return &MediaService{store: store, gate: gate, storage: st}
}

// Upload checks the bytes are an image and stores them under
// businesses/<id|general>/<uuid>.<ext> or products/<uuid>.<ext>.
func (s *MediaService) Upload(ctx context.Context, in UploadInput) (string, error) {
	u, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return "", err
	}
	if len(in.Data) == 0 {
		return "", invalidUpload("no file uploaded")
	}
	if len(in.Data) > MaxUploadBytes {
		return "", invalidUpload(fmt.Sprintf("file exceeds %d MB", MaxUploadBytes>>20))
	}
	kind, err := filetype.Match(in.Data)
	if err != nil || !filetype.IsImage(in.Data) {
		return "", invalidUpload("only image files are allowed")
	}

	var dir string
	switch strings.ToLower(in.Kind) {
	case "", UploadBusiness:
		dir = "businesses/general"
		if in.BusinessID != "" {
			b, err := s.store.Businesses().FindByID(ctx, in.BusinessID)
			if err != nil {
				if ierr.IsNotFound(err) {
					return "", errNotFoundOrDenied()
				}
				return "", err
			}
			if err := s.gate.RequireOwner(u, b); err != nil {
				return "", err
			}
			dir = "businesses/" + b.ID
		}
	case UploadProduct:
		dir = "products"
	default:
		return "", invalidUpload("unknown upload type " + in.Kind)
	}

	objectPath := fmt.Sprintf("%s/%s.%s", dir, uuid.NewString(), kind.Extension)
	url, err := s.storage.Store(ctx, bytes.NewReader(in.Data), objectPath, kind.MIME.Value)
	if err != nil {
		return "", ierr.Internal(err, "store upload")
	}
	applog.FromContext(ctx).Info("media.uploaded", "path", objectPath, "user_id", u.ID, "bytes", len(in.Data), "storage", s.storage.Name())
	return url, nil
}

func invalidUpload(reason string) error {
	return ierr.NewError("invalid upload: " + reason).
		WithHint(strings.ToUpper(reason[:1]) + reason[1:] + ".").
		Mark(ierr.ErrInvalidInput)
}
