package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// MaxImageSize bounds uploaded product images
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ImageUpload is a validated image ready to be stored
type ImageUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ImageStore persists product images and returns the URL they are served at
type ImageStore interface {
	Save(ctx context.Context, img *ImageUpload) (string, error)
	Delete(ctx context.Context, url string) error
}

// ReadImage reads a multipart file and accepts only jpeg, png and gif content
// up to MaxImageSize.
func ReadImage(fh *multipart.FileHeader) (*ImageUpload, error) {
	if fh.Size > MaxImageSize {
		return nil, validationf("Image must be at most %d MB", MaxImageSize>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return NewImageUpload(data)
}

// NewImageUpload sniffs data and names it product-<uuid><ext>
func NewImageUpload(data []byte) (*ImageUpload, error) {
	if len(data) > MaxImageSize {
		return nil, validationf("Image must be at most %d MB", MaxImageSize>>20)
	}

	mtype := mimetype.Detect(data)
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, validationf("Only image files (jpeg, jpg, png, gif) are allowed")
	}

	return &ImageUpload{
		Name:        "product-" + uuid.NewString() + ext,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// LocalImageStore keeps images on disk; the router serves Dir at URLPrefix
type LocalImageStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalImageStore(dir, urlPrefix string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalImageStore) Save(_ context.Context, img *ImageUpload) (string, error) {
	path := filepath.Join(s.Dir, img.Name)
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.URLPrefix + "/" + img.Name, nil
}

func (s *LocalImageStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, s.URLPrefix+"/") {
		return nil
	}
	// Base keeps the removal inside Dir
	name := filepath.Base(strings.TrimPrefix(url, s.URLPrefix+"/"))
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// GCSImageStore keeps images in a Google Cloud Storage bucket
type GCSImageStore struct {
	client *storage.Client
	bucket string
}

// NewGCSImageStore creates the storage client. credentialsFile may be empty
// to use application default credentials.
func NewGCSImageStore(ctx context.Context, bucket, credentialsFile string) (*GCSImageStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP storage client: %w", err)
	}
	return &GCSImageStore{client: client, bucket: bucket}, nil
}

func (s *GCSImageStore) publicPrefix() string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/", s.bucket)
}

func (s *GCSImageStore) Save(ctx context.Context, img *ImageUpload) (string, error) {
	writer := s.client.Bucket(s.bucket).Object(img.Name).NewWriter(ctx)
	writer.ContentType = img.ContentType

	if _, err := writer.Write(img.Data); err != nil {
		writer.Close()
		return "", fmt.Errorf("GCS upload failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("GCS upload finalization failed: %w", err)
	}
	return s.publicPrefix() + img.Name, nil
}

func (s *GCSImageStore) Delete(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.publicPrefix())
	if !ok || name == "" {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("GCS delete failed: %w", err)
	}
	return nil
}

// Close releases the storage client
func (s *GCSImageStore) Close() error {
	return s.client.Close()
}
