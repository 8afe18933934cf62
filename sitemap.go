package siteengine

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/siteengine/sitedata"
	"github.com/eringen/siteengine/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, posts []sitedata.BlogPost, projects []sitedata.Project) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: views.BuildURL(base), LastMod: a.LastModified().Format("2006-01-02")},
		{Loc: views.BuildURL(base, "privacy")},
	}
	for _, p := range posts {
		u := sitemapURL{Loc: views.BuildURL(base, "blog", p.Slug)}
		if t, ok := views.PostTime(p); ok {
			u.LastMod = t.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	for _, p := range projects {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, "portfolio", p.ID)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().Header().Set(echo.HeaderLastModified, a.LastModified().Format(http.TimeFormat))
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
