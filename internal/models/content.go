package models

import (
	"strings"
	"time"
)

// Block kinds used in blog post bodies.
const (
	BlockParagraph = "paragraph"
	BlockHeading   = "heading"
	BlockQuote     = "quote"
	BlockImage     = "image"
	BlockEmbed     = "embed"
)

// Block is one element of a blog post body. Image blocks reference a
// MediaRecord by ID; text-bearing blocks carry their content inline.
type Block struct {
	Kind     string `bson:"kind" json:"kind"`
	Text     string `bson:"text,omitempty" json:"text,omitempty"`
	Level    int    `bson:"level,omitempty" json:"level,omitempty"`
	MediaID  string `bson:"media_id,omitempty" json:"mediaId,omitempty"`
	EmbedURL string `bson:"embed_url,omitempty" json:"embedUrl,omitempty"`
	Caption  string `bson:"caption,omitempty" json:"caption,omitempty"`
}

// SEO is the nested metadata group shared by content documents.
type SEO struct {
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	OGImageID   string `bson:"og_image_id,omitempty" json:"ogImageId,omitempty"`
}

type BlogPost struct {
	ID           string    `bson:"_id" json:"id"`
	Title        string    `bson:"title" json:"title"`
	Slug         string    `bson:"slug" json:"slug"`
	Author       string    `bson:"author" json:"author"`
	Excerpt      string    `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	CoverImageID string    `bson:"cover_image_id,omitempty" json:"coverImageId,omitempty"`
	SEO          SEO       `bson:"seo,omitempty" json:"seo,omitempty"`
	Blocks       []Block   `bson:"blocks" json:"blocks"`
	Published    bool      `bson:"published" json:"published"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

type Event struct {
	ID           string    `bson:"_id" json:"id"`
	Title        string    `bson:"title" json:"title"`
	Slug         string    `bson:"slug" json:"slug"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	Location     string    `bson:"location,omitempty" json:"location,omitempty"`
	StartsAt     time.Time `bson:"starts_at" json:"startsAt"`
	EndsAt       time.Time `bson:"ends_at,omitempty" json:"endsAt,omitempty"`
	RegisterURL  string    `bson:"register_url,omitempty" json:"registerUrl,omitempty"`
	CoverImageID string    `bson:"cover_image_id,omitempty" json:"coverImageId,omitempty"`
	SEO          SEO       `bson:"seo,omitempty" json:"seo,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

type PodcastEpisode struct {
	ID           string    `bson:"_id" json:"id"`
	Title        string    `bson:"title" json:"title"`
	Slug         string    `bson:"slug" json:"slug"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	Episode      int       `bson:"episode" json:"episode"`
	AudioURL     string    `bson:"audio_url" json:"audioUrl"`
	SpotifyURL   string    `bson:"spotify_url,omitempty" json:"spotifyUrl,omitempty"`
	CoverImageID string    `bson:"cover_image_id,omitempty" json:"coverImageId,omitempty"`
	PublishedAt  time.Time `bson:"published_at" json:"publishedAt"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

type TeamMember struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	RoleTitle   string    `bson:"role_title" json:"roleTitle"`
	Bio         string    `bson:"bio,omitempty" json:"bio,omitempty"`
	PhotoID     string    `bson:"photo_id,omitempty" json:"photoId,omitempty"`
	LinkedInURL string    `bson:"linkedin_url,omitempty" json:"linkedinUrl,omitempty"`
	TwitterURL  string    `bson:"twitter_url,omitempty" json:"twitterUrl,omitempty"`
	Order       int       `bson:"order" json:"order"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// AdminUser is one entry of the role allow-list consulted by the auth
// middleware. Role is admin or moderator.
type AdminUser struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// MediaRefs returns every MediaRecord ID referenced by the post: the cover
// image, the SEO og-image, and any image blocks in the body.
func (p *BlogPost) MediaRefs() []string {
	refs := appendRef(nil, p.CoverImageID)
	refs = appendRef(refs, p.SEO.OGImageID)
	for _, b := range p.Blocks {
		if b.Kind == BlockImage {
			refs = appendRef(refs, b.MediaID)
		}
	}
	return refs
}

func (e *Event) MediaRefs() []string {
	return appendRef(appendRef(nil, e.CoverImageID), e.SEO.OGImageID)
}

func (p *PodcastEpisode) MediaRefs() []string {
	return appendRef(nil, p.CoverImageID)
}

func (m *TeamMember) MediaRefs() []string {
	return appendRef(nil, m.PhotoID)
}

func appendRef(refs []string, id string) []string {
	if id == "" {
		return refs
	}
	return append(refs, id)
}

const wordsPerMinute = 200

// ReadingTime estimates the post's reading time in whole minutes from the
// word count of its text-bearing blocks. Never returns less than 1.
func (p *BlogPost) ReadingTime() int {
	words := 0
	for _, b := range p.Blocks {
		switch b.Kind {
		case BlockParagraph, BlockHeading, BlockQuote:
			words += len(strings.Fields(b.Text))
		}
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
