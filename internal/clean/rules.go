package clean

import (
	"regexp"

	"github.com/sells-group/marketing-cli/internal/normalize"
)

// Date layouts accepted per dataset, in priority order.
var (
	campaignDates = []normalize.DateLayout{normalize.ISODate, normalize.USSlash, normalize.DayFirst}
	adDates       = []normalize.DateLayout{normalize.ISODate, normalize.USDash}
	defaultDates  = normalize.AllLayout
)

// AdPlatforms canonicalizes paid-ad platform names.
var AdPlatforms = normalize.Rules{
	Rules: []normalize.Rule{
		{Match: normalize.Contains("google"), Value: "Google Ads"},
		{Match: normalize.Any(normalize.Contains("facebook"), normalize.Equals("fb")), Value: "Facebook"},
		{Match: normalize.Any(normalize.Contains("instagram"), normalize.Equals("ig")), Value: "Instagram"},
		{Match: normalize.Contains("linkedin"), Value: "LinkedIn"},
	},
	Fallback: normalize.Title,
}

// PostPlatforms title-cases organic post platforms.
var PostPlatforms = normalize.Rules{Fallback: normalize.Title}

// ReferralSources canonicalizes transaction referral sources.
var ReferralSources = normalize.Rules{
	Rules: []normalize.Rule{
		{Match: normalize.Contains("email"), Value: "Email"},
		{Match: normalize.Pattern(regexp.MustCompile(`paid.*search`)), Value: "Paid Search"},
		{Match: normalize.Contains("social"), Value: "Social"},
		{Match: normalize.Contains("organic"), Value: "Organic"},
		{Match: normalize.Equals("direct"), Value: "Direct"},
		{Match: normalize.Equals("", "unknown"), Value: "Unknown"},
	},
	Fallback: normalize.Title,
}

// referral maps a raw referral source; missing markers read as Unknown.
func referral(raw string) string {
	if normalize.IsMissing(raw) {
		return "Unknown"
	}
	return ReferralSources.Apply(raw)
}

// category applies rules to present text and leaves missing text nil.
func category(rules normalize.Rules, raw string) *string {
	if normalize.IsMissing(raw) {
		return nil
	}
	v := rules.Apply(raw)
	return &v
}

// Valid customer ages, inclusive.
const (
	minAge = 18
	maxAge = 100
)

// ageGroup buckets an age; nil reads as Unknown.
func ageGroup(age *int64) string {
	if age == nil {
		return "Unknown"
	}
	switch a := *age; {
	case a < 25:
		return "18-24"
	case a < 35:
		return "25-34"
	case a < 45:
		return "35-44"
	case a < 55:
		return "45-54"
	case a < 65:
		return "55-64"
	default:
		return "65+"
	}
}
