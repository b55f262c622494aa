package model

import "time"

// RawPost is one staging_social_media_organic row.
type RawPost struct {
	PostID           string
	PostDate         string
	Platform         string
	PostType         string
	Impressions      string
	EngagementString string
	Likes            string
	Comments         string
	Shares           string
	LinkClicks       string
}

// Fields returns the columns in staging order.
func (p RawPost) Fields() []string {
	return []string{
		p.PostID,
		p.PostDate,
		p.Platform,
		p.PostType,
		p.Impressions,
		p.EngagementString,
		p.Likes,
		p.Comments,
		p.Shares,
		p.LinkClicks,
	}
}

// Post is one organic social post after cleaning.
type Post struct {
	PostID      string
	PostDate    *time.Time
	Platform    *string
	PostType    *string
	Impressions *int64
	Likes       *int64
	Comments    *int64
	Shares      *int64
	LinkClicks  *int64

	TotalEngagement   int64
	EngagementRatePct float64
}
