package views

import (
	"encoding/json"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/siteengine/sitedata"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// WebsiteJsonLD returns a JSON-LD block for a WebSite schema.
func WebsiteJsonLD(site Site) template.JS {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        site.Name,
		"url":         BuildURL(site.URL),
		"description": site.Description,
	}
	if site.Author != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Author,
		}
	}
	return marshalJS(data)
}

// BlogPostingJsonLD returns a JSON-LD block for a BlogPosting schema.
func BlogPostingJsonLD(post sitedata.BlogPost, site Site) template.JS {
	postURL := BuildURL(site.URL, "blog", post.Slug)
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Excerpt,
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if d, ok := PostTime(post); ok {
		data["datePublished"] = d.Format("2006-01-02")
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if site.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		}
	}
	if post.Image != "" {
		data["image"] = post.Image
	}
	if post.FocusKeyword != "" {
		data["keywords"] = post.FocusKeyword
	}
	return marshalJS(data)
}

// PostTime parses the display date stored on a post.
func PostTime(post sitedata.BlogPost) (time.Time, bool) {
	for _, layout := range []string{"January 2, 2006", "2006-01-02"} {
		if t, err := time.Parse(layout, post.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func marshalJS(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}

// RelatedPosts returns up to n posts other than current, newest first.
func RelatedPosts(current sitedata.BlogPost, posts []sitedata.BlogPost, n int) []sitedata.BlogPost {
	var out []sitedata.BlogPost
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}
