package extract

import "regexp"

// socialPatterns map each supported platform to its profile URL shape.
var socialPatterns = map[string]*regexp.Regexp{
	"facebook":  regexp.MustCompile(`https?://(?:www\.)?facebook\.com/[A-Za-z0-9_.\-]+`),
	"instagram": regexp.MustCompile(`https?://(?:www\.)?instagram\.com/[A-Za-z0-9_.]+`),
	"linkedin":  regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/in/[A-Za-z0-9\-_%]+`),
	"twitter":   regexp.MustCompile(`https?://(?:www\.)?(?:twitter|x)\.com/[A-Za-z0-9_]+`),
	"tiktok":    regexp.MustCompile(`https?://(?:www\.)?tiktok\.com/@[A-Za-z0-9_.]+`),
	"youtube":   regexp.MustCompile(`https?://(?:www\.)?youtube\.com/(?:@|c/|channel/)[A-Za-z0-9_\-]+`),
}

// SocialLinks extracts the first profile URL per platform from a document.
func SocialLinks(text string) map[string]string {
	links := make(map[string]string)
	for platform, re := range socialPatterns {
		if match := re.FindString(text); match != "" {
			links[platform] = match
		}
	}
	return links
}
