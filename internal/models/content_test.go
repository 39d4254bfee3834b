package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlogPostMediaRefs(t *testing.T) {
	p := BlogPost{
		CoverImageID: "cover",
		SEO:          SEO{OGImageID: "og"},
		Blocks: []Block{
			{Kind: BlockParagraph, Text: "intro"},
			{Kind: BlockImage, MediaID: "inline-1"},
			{Kind: BlockEmbed, EmbedURL: "https://youtu.be/x"},
			{Kind: BlockImage, MediaID: "inline-2"},
			{Kind: BlockImage}, // image block without media attached
		},
	}
	assert.ElementsMatch(t, []string{"cover", "og", "inline-1", "inline-2"}, p.MediaRefs())
}

func TestBlogPostMediaRefsEmpty(t *testing.T) {
	var p BlogPost
	assert.Empty(t, p.MediaRefs())
}

func TestEventMediaRefs(t *testing.T) {
	e := Event{CoverImageID: "c", SEO: SEO{OGImageID: "og"}}
	assert.ElementsMatch(t, []string{"c", "og"}, e.MediaRefs())

	assert.Empty(t, (&Event{}).MediaRefs())
}

func TestPodcastAndTeamMediaRefs(t *testing.T) {
	p := PodcastEpisode{CoverImageID: "cast"}
	assert.Equal(t, []string{"cast"}, p.MediaRefs())

	m := TeamMember{PhotoID: "face"}
	assert.Equal(t, []string{"face"}, m.MediaRefs())
}

func TestReadingTime(t *testing.T) {
	cases := []struct {
		name  string
		words int
		want  int
	}{
		{"empty post", 0, 1},
		{"short note", 50, 1},
		{"exactly one page", 200, 1},
		{"two minutes", 350, 2},
		{"long read", 1000, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := BlogPost{Blocks: []Block{
				{Kind: BlockParagraph, Text: strings.TrimSpace(strings.Repeat("word ", tc.words))},
				{Kind: BlockImage, MediaID: "m"}, // images contribute no words
			}}
			assert.Equal(t, tc.want, p.ReadingTime())
		})
	}
}
