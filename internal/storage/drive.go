package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// FileRef identifies an object stored in the drive backend.
type FileRef struct {
	FileID      string
	ViewURL     string
	DownloadURL string
}

// DriveStore is the cloud file-storage backend holding the original,
// uncompressed uploads. Backed by an S3-compatible object store; every upload
// goes under the configured parent folder.
type DriveStore struct {
	client     *s3.Client
	uploader   *manager.Uploader
	bucket     string
	region     string
	folder     string
	publicRead bool
	presignTTL time.Duration
}

func NewDriveStore(ctx context.Context, region, bucket, folder string, publicRead bool, presignTTL time.Duration) (*DriveStore, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &DriveStore{
		client:     client,
		uploader:   manager.NewUploader(client),
		bucket:     bucket,
		region:     region,
		folder:     strings.Trim(folder, "/"),
		publicRead: publicRead,
		presignTTL: presignTTL,
	}, nil
}

// Upload writes data verbatim under the parent folder and returns the created
// object's identifiers. With public_read enabled the object gets a public-read
// ACL and stable URLs; otherwise the URLs are presigned GETs.
func (d *DriveStore) Upload(ctx context.Context, name, contentType string, data []byte) (*FileRef, error) {
	key := d.folder + "/" + name
	in := &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if d.publicRead {
		in.ACL = types.ObjectCannedACLPublicRead
	}
	if _, err := d.uploader.Upload(ctx, in); err != nil {
		return nil, fmt.Errorf("drive upload %q: %w", key, err)
	}

	view, err := d.FreshViewURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &FileRef{FileID: key, ViewURL: view, DownloadURL: view}, nil
}

// FreshViewURL returns a URL valid at call time for a stored object: the
// stable public URL when the bucket is world-readable, a new presigned GET
// otherwise. Private-bucket URLs minted at upload time expire after the
// presign TTL, so reads must go through here rather than reuse stored URLs.
func (d *DriveStore) FreshViewURL(ctx context.Context, fileID string) (string, error) {
	if d.publicRead {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.bucket, d.region, url.PathEscape(fileID)), nil
	}
	return d.PresignURL(ctx, fileID)
}

// Delete removes an object by its file id. Unused by the sweeper on purpose:
// the reference behavior leaves backend objects in place (see DESIGN.md).
func (d *DriveStore) Delete(ctx context.Context, fileID string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		return fmt.Errorf("drive delete %q: %w", fileID, err)
	}
	return nil
}

func (d *DriveStore) PresignURL(ctx context.Context, key string) (string, error) {
	p := s3.NewPresignClient(d.client)
	req, err := p.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(d.presignTTL))
	if err != nil {
		return "", fmt.Errorf("drive presign %q: %w", key, err)
	}
	return req.URL, nil
}
