package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fatemameem/technest-backend/internal/compress"
	"github.com/fatemameem/technest-backend/internal/events"
	"github.com/fatemameem/technest-backend/internal/models"
	"github.com/fatemameem/technest-backend/internal/storage"
)

type fakeRepo struct {
	inserted  []*models.MediaRecord
	insertErr []error // consumed per attempt; nil entry means success
	calls     int
}

func (f *fakeRepo) Insert(_ context.Context, m *models.MediaRecord) error {
	f.calls++
	if len(f.insertErr) > 0 {
		err := f.insertErr[0]
		f.insertErr = f.insertErr[1:]
		if err != nil {
			return err
		}
	}
	f.inserted = append(f.inserted, m)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*models.MediaRecord, error) {
	for _, m := range f.inserted {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

type fakeDrive struct {
	err      error
	calls    int
	gotLen   int
	signed   int
	freshErr error
}

func (f *fakeDrive) Upload(_ context.Context, name, _ string, data []byte) (*storage.FileRef, error) {
	f.calls++
	f.gotLen = len(data)
	if f.err != nil {
		return nil, f.err
	}
	return &storage.FileRef{
		FileID:      "technest/original/" + name,
		ViewURL:     "https://drive.example.com/view/" + name,
		DownloadURL: "https://drive.example.com/dl/" + name,
	}, nil
}

func (f *fakeDrive) FreshViewURL(_ context.Context, fileID string) (string, error) {
	f.signed++
	if f.freshErr != nil {
		return "", f.freshErr
	}
	return fmt.Sprintf("https://drive.example.com/signed/%s?n=%d", fileID, f.signed), nil
}

type fakeCDN struct {
	err   error
	calls int
}

func (f *fakeCDN) UploadImage(_ context.Context, filename string, data []byte) (*storage.UploadedImage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &storage.UploadedImage{
		PublicID:  "technest/" + filename,
		SecureURL: "https://cdn.example.com/" + filename,
		Width:     100,
		Height:    80,
		Bytes:     int64(len(data)),
		Format:    "jpeg",
	}, nil
}

type fakePublisher struct {
	published []events.MediaEvent
}

func (f *fakePublisher) Publish(_ context.Context, ev events.MediaEvent) error {
	f.published = append(f.published, ev)
	return nil
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 64, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)))
	return buf.Bytes()
}

func testOpts() compress.Options {
	return compress.Options{TargetKB: 150, MaxWidth: 1600, MaxHeight: 1600, QualityFloor: 40, QualityCeiling: 90}
}

func newTestService(repo *fakeRepo, drive *fakeDrive, cdn *fakeCDN, pub Publisher) *MediaService {
	s := NewMediaService(repo, drive, cdn, pub, testOpts(), zap.NewNop().Sugar())
	s.backoff = time.Millisecond
	return s
}

func TestUploadSuccess(t *testing.T) {
	repo := &fakeRepo{}
	drive := &fakeDrive{}
	cdn := &fakeCDN{}
	pub := &fakePublisher{}
	svc := newTestService(repo, drive, cdn, pub)

	data := testImage(t)
	rec, err := svc.Upload(context.Background(), UploadInput{
		Filename:    "team.jpg",
		ContentType: "image/jpeg",
		Alt:         "the team",
		Actor:       "admin@technest.org",
		Data:        data,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "the team", rec.Alt)
	assert.Equal(t, len(data), drive.gotLen, "original goes to the drive verbatim")
	assert.Contains(t, rec.DriveFile.FileID, "team.jpg")
	assert.NotEmpty(t, rec.CloudImage.PublicID)
	assert.NotEmpty(t, rec.CloudImage.SecureURL)
	assert.Equal(t, "jpeg", rec.CloudImage.Format)
	assert.GreaterOrEqual(t, rec.CloudImage.Quality, 40)
	assert.LessOrEqual(t, rec.CloudImage.Quality, 90)

	require.Len(t, repo.inserted, 1)
	require.Len(t, pub.published, 1)
	assert.Equal(t, events.TypeMediaUploaded, pub.published[0].Type)
	assert.Equal(t, rec.ID, pub.published[0].MediaID)
}

func TestUploadDriveFailureAborts(t *testing.T) {
	repo := &fakeRepo{}
	drive := &fakeDrive{err: errors.New("quota exceeded")}
	cdn := &fakeCDN{}
	svc := newTestService(repo, drive, cdn, &fakePublisher{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "x.jpg", ContentType: "image/jpeg", Data: testImage(t),
	})
	require.Error(t, err)

	assert.Zero(t, cdn.calls, "no CDN call after drive failure")
	assert.Zero(t, repo.calls, "no record persisted")
}

func TestUploadCDNFailureLeavesNoRecord(t *testing.T) {
	repo := &fakeRepo{}
	drive := &fakeDrive{}
	cdn := &fakeCDN{err: errors.New("service unavailable")}
	svc := newTestService(repo, drive, cdn, &fakePublisher{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "x.jpg", ContentType: "image/jpeg", Data: testImage(t),
	})
	require.Error(t, err)

	assert.Equal(t, 1, drive.calls, "drive write already happened")
	assert.Zero(t, repo.calls, "no partial record persisted")
}

func TestUploadCorruptImage(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeDrive{}, &fakeCDN{}, &fakePublisher{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "x.jpg", ContentType: "image/jpeg", Data: []byte("garbage"),
	})
	require.Error(t, err)
	assert.Zero(t, repo.calls)
}

func TestInsertRetriesTransientErrors(t *testing.T) {
	transient := mongo.CommandError{Labels: []string{"TransientTransactionError"}, Message: "write conflict"}
	repo := &fakeRepo{insertErr: []error{transient, transient, nil}}
	svc := newTestService(repo, &fakeDrive{}, &fakeCDN{}, &fakePublisher{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "x.jpg", ContentType: "image/jpeg", Data: testImage(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)
}

func TestInsertDoesNotRetryPermanentErrors(t *testing.T) {
	repo := &fakeRepo{insertErr: []error{errors.New("validation failed")}}
	svc := newTestService(repo, &fakeDrive{}, &fakeCDN{}, &fakePublisher{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "x.jpg", ContentType: "image/jpeg", Data: testImage(t),
	})
	require.Error(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestGetByIDRefreshesDriveURLs(t *testing.T) {
	repo := &fakeRepo{}
	drive := &fakeDrive{}
	svc := newTestService(repo, drive, &fakeCDN{}, &fakePublisher{})

	rec, err := svc.Upload(context.Background(), UploadInput{
		Filename: "x.jpg", ContentType: "image/jpeg", Data: testImage(t),
	})
	require.NoError(t, err)
	stale := rec.DriveFile.ViewURL

	got, err := svc.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.NotEqual(t, stale, got.DriveFile.ViewURL, "stored URL may have expired; reads mint a new one")
	assert.Equal(t, got.DriveFile.ViewURL, got.DriveFile.DownloadURL)
	assert.Contains(t, got.DriveFile.ViewURL, rec.DriveFile.FileID)
}

func TestGetByIDSignFailure(t *testing.T) {
	repo := &fakeRepo{}
	drive := &fakeDrive{}
	svc := newTestService(repo, drive, &fakeCDN{}, &fakePublisher{})

	rec, err := svc.Upload(context.Background(), UploadInput{
		Filename: "x.jpg", ContentType: "image/jpeg", Data: testImage(t),
	})
	require.NoError(t, err)

	drive.freshErr = errors.New("credentials expired")
	_, err = svc.GetByID(context.Background(), rec.ID)
	require.Error(t, err)
}

func TestNewMediaServiceDefaultsOptions(t *testing.T) {
	svc := NewMediaService(&fakeRepo{}, &fakeDrive{}, &fakeCDN{}, nil, compress.Options{}, zap.NewNop().Sugar())

	assert.Equal(t, compress.DefaultTargetKB, svc.opts.TargetKB)
	assert.Equal(t, compress.DefaultFloor, svc.opts.QualityFloor)
	assert.Equal(t, compress.DefaultCeiling, svc.opts.QualityCeiling)
}

func TestInsertGivesUpAfterMaxAttempts(t *testing.T) {
	transient := mongo.CommandError{Labels: []string{"TransientTransactionError"}, Message: "write conflict"}
	repo := &fakeRepo{insertErr: []error{transient, transient, transient}}
	svc := newTestService(repo, &fakeDrive{}, &fakeCDN{}, &fakePublisher{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "x.jpg", ContentType: "image/jpeg", Data: testImage(t),
	})
	require.Error(t, err)
	assert.Equal(t, 3, repo.calls)
}
