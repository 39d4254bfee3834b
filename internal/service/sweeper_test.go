package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatemameem/technest-backend/internal/models"
)

type fakeMediaStore struct {
	ids        []string
	listErr    error
	failDelete map[string]error
	deleted    []string
	lastCutoff time.Time
}

func (f *fakeMediaStore) ListIDsOlderThan(_ context.Context, cutoff time.Time, _ int64) ([]string, error) {
	f.lastCutoff = cutoff
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ids, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, id string) error {
	if err, ok := f.failDelete[id]; ok {
		return err
	}
	f.deleted = append(f.deleted, id)
	remaining := make([]string, 0, len(f.ids))
	for _, v := range f.ids {
		if v != id {
			remaining = append(remaining, v)
		}
	}
	f.ids = remaining
	return nil
}

type fakeContent struct {
	posts   []models.BlogPost
	events  []models.Event
	casts   []models.PodcastEpisode
	team    []models.TeamMember
	scanErr error
}

func (f *fakeContent) ListBlogPosts(context.Context, int64) ([]models.BlogPost, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.posts, nil
}
func (f *fakeContent) ListEvents(context.Context, int64) ([]models.Event, error) {
	return f.events, nil
}
func (f *fakeContent) ListPodcastEpisodes(context.Context, int64) ([]models.PodcastEpisode, error) {
	return f.casts, nil
}
func (f *fakeContent) ListTeamMembers(context.Context, int64) ([]models.TeamMember, error) {
	return f.team, nil
}

func newTestSweeper(media *fakeMediaStore, content *fakeContent) *Sweeper {
	return NewSweeper(media, content, nil, SweeperConfig{GracePeriod: time.Hour, PageLimit: 10000}, zap.NewNop().Sugar())
}

func TestSweeperKeepsReferencedMedia(t *testing.T) {
	media := &fakeMediaStore{ids: []string{"cover", "og", "block", "photo", "orphan"}}
	content := &fakeContent{
		posts: []models.BlogPost{{
			ID:           "p1",
			CoverImageID: "cover",
			SEO:          models.SEO{OGImageID: "og"},
			Blocks: []models.Block{
				{Kind: models.BlockParagraph, Text: "hello"},
				{Kind: models.BlockImage, MediaID: "block"},
			},
		}},
		team: []models.TeamMember{{ID: "t1", PhotoID: "photo"}},
	}

	sum, err := newTestSweeper(media, content).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, SweepSummary{Found: 1, Deleted: 1, Errors: 0}, sum)
	assert.Equal(t, []string{"orphan"}, media.deleted)
}

func TestSweeperIdempotent(t *testing.T) {
	media := &fakeMediaStore{ids: []string{"orphan1", "orphan2"}}
	content := &fakeContent{}
	sw := newTestSweeper(media, content)

	first, err := sw.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, SweepSummary{Found: 2, Deleted: 2}, first)

	second, err := sw.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, SweepSummary{}, second)
}

func TestSweeperCountsDeleteFailures(t *testing.T) {
	media := &fakeMediaStore{
		ids:        []string{"a", "b", "c"},
		failDelete: map[string]error{"b": errors.New("write conflict")},
	}

	sum, err := newTestSweeper(media, &fakeContent{}).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, SweepSummary{Found: 3, Deleted: 2, Errors: 1}, sum)
	assert.ElementsMatch(t, []string{"a", "c"}, media.deleted)
}

func TestSweeperDryRun(t *testing.T) {
	media := &fakeMediaStore{ids: []string{"a", "b"}}

	sum, err := newTestSweeper(media, &fakeContent{}).Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, SweepSummary{Found: 2}, sum)
	assert.Empty(t, media.deleted)
}

func TestSweeperScanErrorAborts(t *testing.T) {
	media := &fakeMediaStore{ids: []string{"a"}}
	content := &fakeContent{scanErr: errors.New("cursor timeout")}

	_, err := newTestSweeper(media, content).Run(context.Background(), false)
	assert.Error(t, err)
	assert.Empty(t, media.deleted)
}

func TestSweeperListErrorAborts(t *testing.T) {
	media := &fakeMediaStore{listErr: errors.New("down")}

	_, err := newTestSweeper(media, &fakeContent{}).Run(context.Background(), false)
	assert.Error(t, err)
}

func TestSweeperGracePeriodCutoff(t *testing.T) {
	media := &fakeMediaStore{}
	start := time.Now().UTC()

	_, err := newTestSweeper(media, &fakeContent{}).Run(context.Background(), false)
	require.NoError(t, err)

	// cutoff must sit one grace period in the past
	assert.WithinDuration(t, start.Add(-time.Hour), media.lastCutoff, 2*time.Second)
}
