package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// UploadedImage is the CDN's description of a stored image.
type UploadedImage struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int64  `json:"bytes"`
	Format    string `json:"format"`
}

// CDNClient talks to the image CDN's upload API. Calls go through a circuit
// breaker so a misbehaving provider fails fast instead of tying up upload
// requests on timeouts.
type CDNClient struct {
	baseURL    string
	apiKey     string
	folder     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

func NewCDNClient(baseURL, apiKey, folder string, logger *zap.SugaredLogger) *CDNClient {
	st := gobreaker.Settings{
		Name:    "image-cdn",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnw("circuit breaker state", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &CDNClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		folder:     folder,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cb:         gobreaker.NewCircuitBreaker(st),
	}
}

// UploadImage sends the compressed bytes as a multipart POST to the CDN's
// upload endpoint and returns the identifiers of the stored image.
func (c *CDNClient) UploadImage(ctx context.Context, filename string, data []byte) (*UploadedImage, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.doUpload(ctx, filename, data)
	})
	if err != nil {
		return nil, err
	}
	return out.(*UploadedImage), nil
}

func (c *CDNClient) doUpload(ctx context.Context, filename string, data []byte) (*UploadedImage, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.WriteField("folder", c.folder); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("cdn request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cdn upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cdn upload: status %d: %s", resp.StatusCode, msg)
	}

	var img UploadedImage
	if err := json.NewDecoder(resp.Body).Decode(&img); err != nil {
		return nil, fmt.Errorf("cdn upload: decode response: %w", err)
	}
	return &img, nil
}

// DeleteImage removes an image from the CDN by public id. Kept for operator
// tooling; the sweeper deliberately does not call it (see DESIGN.md).
func (c *CDNClient) DeleteImage(ctx context.Context, publicID string) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/image/"+publicID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("cdn delete request failed: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("cdn delete: status %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}
