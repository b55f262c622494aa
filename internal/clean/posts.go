package clean

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sells-group/marketing-cli/internal/model"
	"github.com/sells-group/marketing-cli/internal/normalize"
	"github.com/sells-group/marketing-cli/internal/warehouse"
)

const socialPostsName = "social_media_organic"

// SocialPosts cleans staging_social_media_organic into clean_social_media_organic.
type SocialPosts struct{}

func (SocialPosts) Name() string { return socialPostsName }

func (SocialPosts) Staging() warehouse.StagingSpec {
	return warehouse.StagingSpec{
		Table: "staging_social_media_organic",
		Columns: []string{
			"post_id", "post_date", "platform", "post_type", "impressions",
			"engagement_string", "likes", "comments", "shares", "link_clicks",
		},
	}
}

func (SocialPosts) Table() warehouse.TableSpec {
	return warehouse.TableSpec{
		Name: "clean_social_media_organic",
		Columns: []warehouse.Column{
			{Name: "post_id", Type: warehouse.TypeText, NotNull: true},
			{Name: "post_date", Type: warehouse.TypeDate},
			{Name: "platform", Type: warehouse.TypeText},
			{Name: "post_type", Type: warehouse.TypeText},
			{Name: "impressions", Type: warehouse.TypeInteger},
			{Name: "likes", Type: warehouse.TypeInteger},
			{Name: "comments", Type: warehouse.TypeInteger},
			{Name: "shares", Type: warehouse.TypeInteger},
			{Name: "link_clicks", Type: warehouse.TypeInteger},
			{Name: "total_engagement", Type: warehouse.TypeInteger, NotNull: true},
			{Name: "engagement_rate_pct", Type: warehouse.TypeFloat, NotNull: true},
		},
		Indexes: []string{"post_id", "platform", "post_date"},
	}
}

func (SocialPosts) Profile() warehouse.ProfileSpec {
	return warehouse.ProfileSpec{
		Table:       "clean_social_media_organic",
		Key:         "post_id",
		DateColumn:  "post_date",
		NullColumns: []string{"post_date", "impressions", "likes", "comments", "shares"},
	}
}

func (SocialPosts) Clean(rows [][]string, _ Options) (*Result, error) {
	raws := make([]model.RawPost, len(rows))
	for i, r := range rows {
		raws[i] = model.RawPost{
			PostID:           col(r, 0),
			PostDate:         col(r, 1),
			Platform:         col(r, 2),
			PostType:         col(r, 3),
			Impressions:      col(r, 4),
			EngagementString: col(r, 5),
			Likes:            col(r, 6),
			Comments:         col(r, 7),
			Shares:           col(r, 8),
			LinkClicks:       col(r, 9),
		}
	}

	posts, stats, err := CleanPosts(raws)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: stats, Rows: make([][]any, len(posts))}
	for i, p := range posts {
		res.Rows[i] = []any{
			p.PostID, cell(p.PostDate), cell(p.Platform), cell(p.PostType),
			cell(p.Impressions), cell(p.Likes), cell(p.Comments), cell(p.Shares), cell(p.LinkClicks),
			p.TotalEngagement, p.EngagementRatePct,
		}
	}
	return res, nil
}

// engagementLabel matches "label: 123" pairs inside an engagement blob such
// as "Likes: 12, Comments:3 | shares : 1".
var engagementLabel = regexp.MustCompile(`(?i)\b(likes|comments|shares)\s*:\s*(\d+)`)

// ParseEngagement extracts likes, comments and shares from an engagement
// blob. A label missing from the blob is nil. The first occurrence of a
// label wins.
func ParseEngagement(blob string) (likes, comments, shares *int64) {
	found := map[string]*int64{}
	for _, m := range engagementLabel.FindAllStringSubmatch(blob, -1) {
		label := strings.ToLower(m[1])
		if _, ok := found[label]; ok {
			continue
		}
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			continue
		}
		found[label] = &n
	}
	return found["likes"], found["comments"], found["shares"]
}

// preferBlob returns the blob value when present. Otherwise the flat column
// is parsed; it is never read when the blob wins.
func preferBlob(b *normalize.Builder, blob *int64, column, flat string) *int64 {
	if blob != nil {
		return blob
	}
	return b.Count(column, flat)
}

type postRow struct {
	raw model.RawPost
	rec model.Post
}

// CleanPosts types organic post rows. Engagement counts come from the
// engagement blob when it carries them and from the flat columns otherwise;
// a count absent from both stays NULL but adds 0 to total_engagement.
func CleanPosts(raws []model.RawPost) ([]model.Post, Stats, error) {
	stats := Stats{RowsIn: len(raws)}

	rows := make([]postRow, 0, len(raws))
	for _, raw := range raws {
		id := normalize.Text(raw.PostID)
		if !id.OK() {
			stats.Dropped++
			continue
		}

		likes, comments, shares := ParseEngagement(raw.EngagementString)

		var b normalize.Builder
		rec := model.Post{
			PostID:      id.Value,
			PostDate:    stats.date(&b, "post_date", raw.PostDate, defaultDates),
			Platform:    category(PostPlatforms, raw.Platform),
			PostType:    b.Text("post_type", raw.PostType),
			Impressions: b.Count("impressions", raw.Impressions),
			Likes:       preferBlob(&b, likes, "likes", raw.Likes),
			Comments:    preferBlob(&b, comments, "comments", raw.Comments),
			Shares:      preferBlob(&b, shares, "shares", raw.Shares),
			LinkClicks:  b.Count("link_clicks", raw.LinkClicks),
		}
		if err := rowError(socialPostsName, id.Value, &b); err != nil {
			return nil, stats, err
		}

		for _, n := range []*int64{rec.Likes, rec.Comments, rec.Shares} {
			if n != nil {
				rec.TotalEngagement += *n
			}
		}
		rec.EngagementRatePct = pct(rec.TotalEngagement, rec.Impressions)
		rows = append(rows, postRow{raw: raw, rec: rec})
	}

	slices.SortFunc(rows, func(a, b postRow) int {
		return cmp.Or(
			strings.Compare(a.rec.PostID, b.rec.PostID),
			slices.Compare(a.raw.Fields(), b.raw.Fields()),
		)
	})

	out := make([]model.Post, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	stats.RowsOut = len(out)
	return out, stats, nil
}
