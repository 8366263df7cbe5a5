package attachments

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/gymdeskhq/gymdesk-backend/pkg/config"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
)

// UploadInput registers a file about to be uploaded for a client.
type UploadInput struct {
	FileName         string    `json:"file_name" validate:"required"`
	ContentType      string    `json:"content_type" validate:"required"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadedByUserID uuid.UUID `json:"-"`
}

// UploadTicket pairs the created metadata row with the signed URL the
// browser PUTs the bytes to.
type UploadTicket struct {
	Attachment *models.Attachment `json:"attachment"`
	UploadURL  string             `json:"upload_url"`
}

// Service manages client file attachments.
type Service interface {
	RequestUpload(ctx context.Context, clientID uuid.UUID, input UploadInput) (*UploadTicket, error)
	DownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PurgeClient(ctx context.Context, clientID uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Attachment, error)
}

type objectStore interface {
	DefaultBucket() string
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

type clientStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

type service struct {
	repo    Repository
	clients clientStore
	store   objectStore
	cfg     config.AttachmentsConfig
	gcsCfg  config.GCSConfig
}

// ServiceParams bundles the attachments service dependencies.
type ServiceParams struct {
	Repo    Repository
	Clients clientStore
	Store   objectStore
	Config  config.AttachmentsConfig
	GCS     config.GCSConfig
}

// NewService wires an attachments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("attachments repository is required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client store is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	return &service{
		repo:    params.Repo,
		clients: params.Clients,
		store:   params.Store,
		cfg:     params.Config,
		gcsCfg:  params.GCS,
	}, nil
}

// RequestUpload creates the metadata row and signs an upload URL. The cap on
// attachments per client is enforced here, before any bytes move.
func (s *service) RequestUpload(ctx context.Context, clientID uuid.UUID, input UploadInput) (*UploadTicket, error) {
	if input.UploadedByUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploading user is required")
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if input.ContentType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type is required")
	}
	if maxBytes := int64(s.cfg.MaxUploadMB) << 20; maxBytes > 0 && input.SizeBytes > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d MB upload limit", s.cfg.MaxUploadMB))
	}

	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}

	count, err := s.repo.CountByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count attachments")
	}
	if s.cfg.MaxPerClient > 0 && count >= int64(s.cfg.MaxPerClient) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("client already has the maximum of %d attachments", s.cfg.MaxPerClient))
	}

	attachment := &models.Attachment{
		ID:               uuid.New(),
		ClientID:         clientID,
		ObjectKey:        objectKey(clientID, fileName),
		FileName:         fileName,
		ContentType:      input.ContentType,
		SizeBytes:        input.SizeBytes,
		UploadedByUserID: input.UploadedByUserID,
	}

	uploadURL, err := s.store.SignedURL(s.store.DefaultBucket(), attachment.ObjectKey, input.ContentType, s.gcsCfg.UploadURLExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	if err := s.repo.Create(ctx, attachment); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an attachment with this key already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create attachment")
	}

	return &UploadTicket{Attachment: attachment, UploadURL: uploadURL}, nil
}

func (s *service) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	attachment, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.SignedReadURL(s.store.DefaultBucket(), attachment.ObjectKey, s.gcsCfg.DownloadURLExpiry)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}
	return url, nil
}

// Delete removes the metadata row and then the stored object. A failed
// object delete after the row is gone is reported but leaves only an
// orphaned blob, never a dangling row.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete attachment")
	}

	if err := s.store.DeleteObject(ctx, s.store.DefaultBucket(), attachment.ObjectKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stored object")
	}
	return nil
}

// PurgeClient removes every attachment a client has, metadata first. Object
// deletes keep going past individual failures so one bad blob does not
// strand the rest.
func (s *service) PurgeClient(ctx context.Context, clientID uuid.UUID) error {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list attachments")
	}

	var errs error
	for _, attachment := range rows {
		if err := s.repo.Delete(ctx, attachment.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete row %s: %w", attachment.ID, err))
			continue
		}
		if err := s.store.DeleteObject(ctx, s.store.DefaultBucket(), attachment.ObjectKey); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete object %s: %w", attachment.ObjectKey, err))
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "purge client attachments")
	}
	return nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Attachment, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list attachments")
	}
	return rows, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load attachment")
	}
	return attachment, nil
}

// objectKey namespaces stored objects per client; the uuid prefix keeps
// repeated uploads of the same filename distinct.
func objectKey(clientID uuid.UUID, fileName string) string {
	return path.Join("clients", clientID.String(), uuid.NewString()+"_"+path.Base(fileName))
}
