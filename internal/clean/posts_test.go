package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/marketing-cli/internal/model"
)

func TestParseEngagement(t *testing.T) {
	tests := []struct {
		name                    string
		blob                    string
		likes, comments, shares *int64
	}{
		{"all labels", "Likes: 12, Comments:3 | shares : 1", i64(12), i64(3), i64(1)},
		{"mixed case", "LIKES:4 comments: 0", i64(4), i64(0), nil},
		{"first wins", "likes: 2, likes: 7", i64(2), nil, nil},
		{"no labels", "great post!", nil, nil, nil},
		{"empty", "", nil, nil, nil},
		{"label without count", "likes: many, shares: 5", nil, nil, i64(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			likes, comments, shares := ParseEngagement(tt.blob)
			assert.Equal(t, tt.likes, likes)
			assert.Equal(t, tt.comments, comments)
			assert.Equal(t, tt.shares, shares)
		})
	}
}

func TestCleanPosts_BlobWinsOverFlatColumns(t *testing.T) {
	out, _, err := CleanPosts([]model.RawPost{{
		PostID:           "P1",
		PostDate:         "2024-04-01",
		Platform:         "instagram",
		PostType:         "Reel",
		Impressions:      "240",
		EngagementString: "likes: 9, comments: 2, shares: 1",
		Likes:            "5",
		Comments:         "not a number",
		Shares:           "",
		LinkClicks:       "4",
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)

	p := out[0]
	assert.Equal(t, "Instagram", *p.Platform)
	assert.Equal(t, int64(9), *p.Likes)
	assert.Equal(t, int64(2), *p.Comments)
	assert.Equal(t, int64(1), *p.Shares)
	assert.Equal(t, int64(4), *p.LinkClicks)
	assert.Equal(t, int64(12), p.TotalEngagement)
	assert.Equal(t, 5.0, p.EngagementRatePct)
}

func TestCleanPosts_FlatColumnsFillGaps(t *testing.T) {
	out, _, err := CleanPosts([]model.RawPost{{
		PostID:           "P2",
		Impressions:      "0",
		EngagementString: "shares: 3",
		Likes:            "1,200",
		Comments:         "",
	}})
	require.NoError(t, err)

	p := out[0]
	assert.Equal(t, int64(1200), *p.Likes)
	assert.Nil(t, p.Comments)
	assert.Equal(t, int64(3), *p.Shares)
	assert.Equal(t, int64(1203), p.TotalEngagement)
	assert.Zero(t, p.EngagementRatePct)
}

func TestCleanPosts_BadFlatColumnWithoutBlobFails(t *testing.T) {
	_, _, err := CleanPosts([]model.RawPost{{PostID: "P3", Likes: "heaps"}})
	re, ok := AsRowError(err)
	require.True(t, ok)
	assert.Equal(t, "social_media_organic", re.Dataset)
	assert.Equal(t, "P3", re.Key)
	assert.Equal(t, "likes", re.Column)
}

func TestCleanPosts_NegativeFlatColumnFails(t *testing.T) {
	_, _, err := CleanPosts([]model.RawPost{{PostID: "P4", Shares: "-2"}})
	re, ok := AsRowError(err)
	require.True(t, ok)
	assert.Equal(t, "shares", re.Column)
	assert.Equal(t, "-2", re.Raw)
}

func TestSocialPosts_Clean(t *testing.T) {
	rows := [][]string{
		{"P2", "2024-04-02", "tiktok", "Video", "100", "", "1", "1", "1", ""},
		{"P1", "04/01/2024", "LINKEDIN", "Text", "", "Likes: 3", "", "", "", "2"},
		{"", "2024-04-03", "x", "Text", "1", "", "", "", "", ""},
	}
	res, err := SocialPosts{}.Clean(rows, Options{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	p1 := res.Rows[0]
	assert.Equal(t, "P1", p1[0])
	assert.Equal(t, day(2024, 4, 1), p1[1])
	assert.Equal(t, "Linkedin", p1[2])
	assert.Nil(t, p1[4])
	assert.Equal(t, int64(3), p1[5])
	assert.Equal(t, int64(3), p1[9])
	assert.Equal(t, 0.0, p1[10])

	p2 := res.Rows[1]
	assert.Equal(t, "Tiktok", p2[2])
	assert.Equal(t, int64(3), p2[9])
	assert.Equal(t, 3.0, p2[10])
	assert.Equal(t, 1, res.Stats.Dropped)
}
