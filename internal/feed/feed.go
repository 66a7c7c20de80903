// Package feed generates the RSS feed and sitemap for published posts.
package feed

import (
	"encoding/xml"
	"strings"
	"time"

	"blogbuilder/internal/post"
)

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description,omitempty"`
	Author      string `xml:"author,omitempty"`
}

// Options identifies the site in feed headers.
type Options struct {
	Title       string
	BaseURL     string
	Description string
}

// RSS renders an RSS 2.0 document for the given posts (assumed newest-first;
// draft filtering is the caller's concern).
func RSS(opts Options, posts []*post.Post, now time.Time) ([]byte, error) {
	ch := channel{
		Title:         opts.Title,
		Link:          opts.BaseURL + "/",
		Description:   opts.Description,
		LastBuildDate: now.UTC().Format(time.RFC1123Z),
	}
	for _, p := range posts {
		link := absoluteURL(opts.BaseURL, p.PermalinkPath())
		ch.Items = append(ch.Items, item{
			Title:       p.Title,
			Link:        link,
			GUID:        link,
			PubDate:     p.Date.UTC().Format(time.RFC1123Z),
			Description: p.Summary,
			Author:      p.Author,
		})
	}

	out, err := xml.MarshalIndent(rss{Version: "2.0", Channel: ch}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

type urlSet struct {
	XMLName xml.Name  `xml:"urlset"`
	XMLNS   string    `xml:"xmlns,attr"`
	URLs    []siteURL `xml:"url"`
}

type siteURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap renders a sitemap.xml covering the index page and every post page.
func Sitemap(opts Options, posts []*post.Post) ([]byte, error) {
	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []siteURL{{Loc: opts.BaseURL + "/"}},
	}
	for _, p := range posts {
		u := siteURL{Loc: absoluteURL(opts.BaseURL, p.PermalinkPath())}
		switch {
		case !p.LastMod.IsZero():
			u.LastMod = p.LastMod.UTC().Format("2006-01-02")
		default:
			u.LastMod = p.Date.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func absoluteURL(base, rel string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rel, "/")
}
