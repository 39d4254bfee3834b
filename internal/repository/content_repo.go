package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fatemameem/technest-backend/internal/models"
)

// ContentRepo reads and writes the four content collections. The sweeper only
// needs the List* methods; the admin CRUD handlers use the rest.
type ContentRepo struct {
	blogs    *mongo.Collection
	events   *mongo.Collection
	podcasts *mongo.Collection
	team     *mongo.Collection
}

func NewContentRepo(db *mongo.Database) *ContentRepo {
	return &ContentRepo{
		blogs:    db.Collection("blog_posts"),
		events:   db.Collection("events"),
		podcasts: db.Collection("podcast_episodes"),
		team:     db.Collection("team_members"),
	}
}

func (r *ContentRepo) ListBlogPosts(ctx context.Context, limit int64) ([]models.BlogPost, error) {
	return findAll[models.BlogPost](ctx, r.blogs, limit)
}

func (r *ContentRepo) ListEvents(ctx context.Context, limit int64) ([]models.Event, error) {
	return findAll[models.Event](ctx, r.events, limit)
}

func (r *ContentRepo) ListPodcastEpisodes(ctx context.Context, limit int64) ([]models.PodcastEpisode, error) {
	return findAll[models.PodcastEpisode](ctx, r.podcasts, limit)
}

func (r *ContentRepo) ListTeamMembers(ctx context.Context, limit int64) ([]models.TeamMember, error) {
	return findAll[models.TeamMember](ctx, r.team, limit)
}

func (r *ContentRepo) InsertBlogPost(ctx context.Context, p *models.BlogPost) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	_, err := r.blogs.InsertOne(ctx, p)
	return err
}

func (r *ContentRepo) GetBlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var p models.BlogPost
	if err := r.blogs.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ContentRepo) DeleteBlogPost(ctx context.Context, id string) error {
	return deleteByID(ctx, r.blogs, id)
}

func (r *ContentRepo) InsertEvent(ctx context.Context, e *models.Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.events.InsertOne(ctx, e)
	return err
}

func (r *ContentRepo) DeleteEvent(ctx context.Context, id string) error {
	return deleteByID(ctx, r.events, id)
}

func (r *ContentRepo) InsertPodcastEpisode(ctx context.Context, p *models.PodcastEpisode) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.podcasts.InsertOne(ctx, p)
	return err
}

func (r *ContentRepo) DeletePodcastEpisode(ctx context.Context, id string) error {
	return deleteByID(ctx, r.podcasts, id)
}

func (r *ContentRepo) InsertTeamMember(ctx context.Context, m *models.TeamMember) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.team.InsertOne(ctx, m)
	return err
}

func (r *ContentRepo) DeleteTeamMember(ctx context.Context, id string) error {
	return deleteByID(ctx, r.team, id)
}

func findAll[T any](ctx context.Context, col *mongo.Collection, limit int64) ([]T, error) {
	cur, err := col.Find(ctx, bson.M{}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []T
	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cur.Err()
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
