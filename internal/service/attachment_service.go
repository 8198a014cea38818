package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
	"clinic-api/internal/storage"
)

// ErrStorageDisabled is returned when no object storage bucket is configured.
var ErrStorageDisabled = errors.New("attachment storage is not configured")

// AttachmentConfig locates patient documents in the bucket.
type AttachmentConfig struct {
	Bucket        string
	KeyPrefix     string
	PresignExpiry time.Duration
}

// AttachmentService stores documents such as lab results for patients.
type AttachmentService interface {
	AttachmentRemover
	Upload(ctx context.Context, patientID int64, filename, contentType string, body io.Reader) (*domain.Attachment, error)
	List(ctx context.Context, patientID int64) ([]domain.Attachment, error)
}

type attachmentService struct {
	store    storage.Service
	patients repository.PatientRepository
	cfg      AttachmentConfig
}

// NewAttachmentService returns the attachment service. A nil store or an
// empty bucket disables every operation with ErrStorageDisabled.
func NewAttachmentService(store storage.Service, patients repository.PatientRepository, cfg AttachmentConfig) AttachmentService {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 15 * time.Minute
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &attachmentService{store: store, patients: patients, cfg: cfg}
}

func (s *attachmentService) enabled() bool {
	return s.store != nil && s.cfg.Bucket != ""
}

func (s *attachmentService) Upload(ctx context.Context, patientID int64, filename, contentType string, body io.Reader) (*domain.Attachment, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}
	name := sanitizeFilename(filename)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}

	key := s.patientPrefix(patientID) + uuid.NewString() + "-" + name
	if _, err := s.store.PutObject(ctx, body, storage.PutOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: contentType,
	}); err != nil {
		return nil, err
	}

	url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		return nil, err
	}
	return &domain.Attachment{Key: key, Name: name, URL: url}, nil
}

func (s *attachmentService) List(ctx context.Context, patientID int64) ([]domain.Attachment, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}

	prefix := s.patientPrefix(patientID)
	objects, err := s.store.ListObjects(ctx, s.cfg.Bucket, prefix)
	if err != nil {
		return nil, err
	}

	attachments := make([]domain.Attachment, 0, len(objects))
	for _, obj := range objects {
		url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, obj.Key, s.cfg.PresignExpiry)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, domain.Attachment{
			Key:          obj.Key,
			Name:         displayName(strings.TrimPrefix(obj.Key, prefix)),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          url,
		})
	}
	return attachments, nil
}

func (s *attachmentService) DeleteForPatient(ctx context.Context, patientID int64) error {
	if !s.enabled() {
		return nil
	}
	return s.store.DeletePrefix(ctx, s.cfg.Bucket, s.patientPrefix(patientID))
}

func (s *attachmentService) requirePatient(ctx context.Context, patientID int64) error {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPatientNotFound
		}
		return err
	}
	return nil
}

func (s *attachmentService) patientPrefix(patientID int64) string {
	prefix := fmt.Sprintf("patients/%d/", patientID)
	if s.cfg.KeyPrefix != "" {
		prefix = s.cfg.KeyPrefix + "/" + prefix
	}
	return prefix
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// displayName strips the uuid that prefixes every stored object name.
func displayName(object string) string {
	if len(object) > 37 && object[36] == '-' {
		if _, err := uuid.Parse(object[:36]); err == nil {
			return object[37:]
		}
	}
	return object
}
