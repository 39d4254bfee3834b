package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fatemameem/technest-backend/internal/compress"
	"github.com/fatemameem/technest-backend/internal/events"
	"github.com/fatemameem/technest-backend/internal/metrics"
	"github.com/fatemameem/technest-backend/internal/models"
	"github.com/fatemameem/technest-backend/internal/storage"
	"github.com/fatemameem/technest-backend/internal/utils"
)

// MediaStore is the slice of the media repository the pipeline writes to.
type MediaStore interface {
	Insert(ctx context.Context, m *models.MediaRecord) error
	GetByID(ctx context.Context, id string) (*models.MediaRecord, error)
}

// FileStore is the cloud file-storage backend holding originals.
type FileStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (*storage.FileRef, error)
	FreshViewURL(ctx context.Context, fileID string) (string, error)
}

// ImageCDN is the image backend holding the compressed rendition.
type ImageCDN interface {
	UploadImage(ctx context.Context, filename string, data []byte) (*storage.UploadedImage, error)
}

// Publisher emits media lifecycle events; best-effort.
type Publisher interface {
	Publish(ctx context.Context, ev events.MediaEvent) error
}

const (
	insertAttempts     = 3
	insertBackoffStart = 500 * time.Millisecond
)

// UploadInput is one validated multipart upload.
type UploadInput struct {
	Filename    string
	ContentType string
	Alt         string
	Actor       string
	Data        []byte
}

// MediaService runs the ingestion pipeline: original to the drive store,
// compressed rendition to the image CDN, one MediaRecord tying both together.
type MediaService struct {
	repo     MediaStore
	drive    FileStore
	cdn      ImageCDN
	producer Publisher
	opts     compress.Options
	backoff  time.Duration
	log      *zap.SugaredLogger
}

func NewMediaService(repo MediaStore, drive FileStore, cdn ImageCDN, producer Publisher, opts compress.Options, log *zap.SugaredLogger) *MediaService {
	// Normalize once so the floor check below compares against the values the
	// encoder actually uses, not the caller's zero fields.
	return &MediaService{repo: repo, drive: drive, cdn: cdn, producer: producer, opts: opts.WithDefaults(), backoff: insertBackoffStart, log: log}
}

// Upload runs the pipeline steps sequentially. A drive failure aborts before
// anything else happens; a CDN failure after a successful drive write is
// surfaced as a hard error with no compensating delete, leaving the drive
// object for the audit sweep to reconcile.
func (s *MediaService) Upload(ctx context.Context, in UploadInput) (*models.MediaRecord, error) {
	id := utils.NewID()
	name := id + "_" + in.Filename

	ref, err := s.drive.Upload(ctx, name, in.ContentType, in.Data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("drive_error").Inc()
		return nil, fmt.Errorf("drive upload: %w", err)
	}

	res, err := compress.Encode(in.Data, s.opts)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("encode_error").Inc()
		return nil, fmt.Errorf("compress: %w", err)
	}
	metrics.CompressionQuality.Observe(float64(res.Quality))
	if res.Quality == s.opts.QualityFloor && int64(len(res.Data)) > int64(s.opts.TargetKB)*1024 {
		s.log.Warnw("compression target unreachable",
			"filename", in.Filename, "bytes", len(res.Data), "target_kb", s.opts.TargetKB)
	}

	img, err := s.cdn.UploadImage(ctx, name+"."+res.Format, res.Data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("cdn_error").Inc()
		return nil, fmt.Errorf("cdn upload: %w", err)
	}

	rec := &models.MediaRecord{
		ID:       id,
		Alt:      in.Alt,
		Filename: in.Filename,
		MimeType: in.ContentType,
		CloudImage: models.CloudImage{
			PublicID:  img.PublicID,
			SecureURL: img.SecureURL,
			Width:     img.Width,
			Height:    img.Height,
			Bytes:     img.Bytes,
			Quality:   res.Quality,
			Format:    res.Format,
		},
		DriveFile: models.DriveFile{
			FileID:      ref.FileID,
			ViewURL:     ref.ViewURL,
			DownloadURL: ref.DownloadURL,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.insertWithRetry(ctx, rec); err != nil {
		metrics.UploadsTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("persist media record: %w", err)
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()

	if s.producer != nil {
		if err := s.producer.Publish(ctx, events.MediaEvent{
			Type:      events.TypeMediaUploaded,
			MediaID:   rec.ID,
			PublicID:  rec.CloudImage.PublicID,
			DriveFile: rec.DriveFile.FileID,
			Actor:     in.Actor,
		}); err != nil {
			s.log.Warnw("publish media.uploaded failed", "media_id", rec.ID, "err", err)
		}
	}

	return rec, nil
}

// GetByID loads a record and replaces its drive URLs with ones valid now.
// On a private bucket the stored URLs are presigned GETs from upload time and
// may have expired since.
func (s *MediaService) GetByID(ctx context.Context, id string) (*models.MediaRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.drive.FreshViewURL(ctx, rec.DriveFile.FileID)
	if err != nil {
		return nil, fmt.Errorf("refresh drive url: %w", err)
	}
	rec.DriveFile.ViewURL = u
	rec.DriveFile.DownloadURL = u
	return rec, nil
}

// insertWithRetry retries the record insert on transient datastore errors
// only, with exponential backoff. Validation or duplicate-key failures are
// returned straight away.
func (s *MediaService) insertWithRetry(ctx context.Context, rec *models.MediaRecord) error {
	backoff := s.backoff
	var err error
	for attempt := 1; attempt <= insertAttempts; attempt++ {
		err = s.repo.Insert(ctx, rec)
		if err == nil {
			return nil
		}
		if !isTransient(err) || attempt == insertAttempts {
			return err
		}
		s.log.Warnw("transient insert failure, retrying",
			"media_id", rec.ID, "attempt", attempt, "backoff", backoff, "err", err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return err
}

func isTransient(err error) bool {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") || se.HasErrorLabel("RetryableWriteError")
	}
	return false
}
