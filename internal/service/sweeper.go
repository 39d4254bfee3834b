package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fatemameem/technest-backend/internal/events"
	"github.com/fatemameem/technest-backend/internal/metrics"
	"github.com/fatemameem/technest-backend/internal/models"
)

// MediaSweepStore is the slice of the media repository the sweeper needs.
type MediaSweepStore interface {
	ListIDsOlderThan(ctx context.Context, cutoff time.Time, limit int64) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// ContentSource yields every content collection that can reference media.
type ContentSource interface {
	ListBlogPosts(ctx context.Context, limit int64) ([]models.BlogPost, error)
	ListEvents(ctx context.Context, limit int64) ([]models.Event, error)
	ListPodcastEpisodes(ctx context.Context, limit int64) ([]models.PodcastEpisode, error)
	ListTeamMembers(ctx context.Context, limit int64) ([]models.TeamMember, error)
}

// SweepSummary reports one sweep run.
type SweepSummary struct {
	Found   int `json:"found"`
	Deleted int `json:"deleted"`
	Errors  int `json:"errors"`
}

// SweeperConfig: GracePeriod keeps freshly uploaded records out of the
// candidate set, closing the window where a record exists before its owning
// document is saved. PageLimit bounds every collection scan.
type SweeperConfig struct {
	GracePeriod time.Duration
	PageLimit   int64
}

// Sweeper deletes media records no content document references. Backend
// objects in the drive store and CDN are left in place; only the database
// record goes away.
type Sweeper struct {
	media    MediaSweepStore
	content  ContentSource
	producer Publisher
	cfg      SweeperConfig
	log      *zap.SugaredLogger
}

func NewSweeper(media MediaSweepStore, content ContentSource, producer Publisher, cfg SweeperConfig, log *zap.SugaredLogger) *Sweeper {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 10000
	}
	return &Sweeper{media: media, content: content, producer: producer, cfg: cfg, log: log}
}

// Run executes one scan-and-delete cycle. Scan errors abort the sweep;
// per-record delete errors are counted and the sweep continues. With dryRun
// set nothing is deleted and Found reports what a real run would remove.
func (s *Sweeper) Run(ctx context.Context, dryRun bool) (SweepSummary, error) {
	var sum SweepSummary

	cutoff := time.Now().UTC().Add(-s.cfg.GracePeriod)
	ids, err := s.media.ListIDsOlderThan(ctx, cutoff, s.cfg.PageLimit)
	if err != nil {
		return sum, fmt.Errorf("list media ids: %w", err)
	}

	referenced, err := s.referencedIDs(ctx)
	if err != nil {
		return sum, err
	}

	var orphaned []string
	for _, id := range ids {
		if !referenced[id] {
			orphaned = append(orphaned, id)
		}
	}
	sum.Found = len(orphaned)

	if dryRun {
		s.log.Infow("sweep dry run", "found", sum.Found)
		return sum, nil
	}

	for _, id := range orphaned {
		if err := s.media.Delete(ctx, id); err != nil {
			sum.Errors++
			s.log.Errorw("delete orphaned media failed", "media_id", id, "err", err)
			continue
		}
		sum.Deleted++
		metrics.SweepDeletedTotal.Inc()
		if s.producer != nil {
			if err := s.producer.Publish(ctx, events.MediaEvent{Type: events.TypeMediaDeleted, MediaID: id}); err != nil {
				s.log.Warnw("publish media.deleted failed", "media_id", id, "err", err)
			}
		}
	}

	s.log.Infow("sweep complete", "found", sum.Found, "deleted", sum.Deleted, "errors", sum.Errors)
	return sum, nil
}

// referencedIDs unions every media reference across the content collections:
// direct cover/photo fields, nested SEO og-images, and image blocks inside
// blog bodies.
func (s *Sweeper) referencedIDs(ctx context.Context) (map[string]bool, error) {
	refs := make(map[string]bool)
	add := func(ids []string) {
		for _, id := range ids {
			refs[id] = true
		}
	}

	posts, err := s.content.ListBlogPosts(ctx, s.cfg.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("scan blog posts: %w", err)
	}
	for i := range posts {
		add(posts[i].MediaRefs())
	}

	evs, err := s.content.ListEvents(ctx, s.cfg.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	for i := range evs {
		add(evs[i].MediaRefs())
	}

	eps, err := s.content.ListPodcastEpisodes(ctx, s.cfg.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("scan podcast episodes: %w", err)
	}
	for i := range eps {
		add(eps[i].MediaRefs())
	}

	members, err := s.content.ListTeamMembers(ctx, s.cfg.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("scan team members: %w", err)
	}
	for i := range members {
		add(members[i].MediaRefs())
	}

	return refs, nil
}
