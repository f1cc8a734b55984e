package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	sitemapLimit = 500
	feedLimit    = 20
)

// FeedHandler serves robots.txt, the sitemap and the RSS feed. Only
// publicly visible content is listed, whoever asks.
type FeedHandler struct {
	listing *services.PostListing
	siteURL string
}

func NewFeedHandler(listing *services.PostListing, siteURL string) *FeedHandler {
	return &FeedHandler{listing: listing, siteURL: siteURL}
}

func (h *FeedHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 表单与账号页面
Disallow: /auth/
Disallow: /profile/edit/
Disallow: /posts/create/

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML renders sitemap.xml from the public listing.
func (h *FeedHandler) SitemapXML(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	categories, err := h.listing.Categories(ctx)
	if err != nil {
		ServerError(c, err)
		return
	}
	posts, err := h.listing.Recent(ctx, sitemapLimit, now)
	if err != nil {
		ServerError(c, err)
		return
	}

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, sitemapURL{
		Loc:        h.siteURL + "/",
		LastMod:    now.Format("2006-01-02"),
		ChangeFreq: "daily",
		Priority:   "1.0",
	})
	for _, category := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/category/%s/", h.siteURL, category.Slug),
			ChangeFreq: "daily",
			Priority:   "0.8",
		})
	}
	for _, post := range posts {
		// posts from the last week rank higher
		priority, changefreq := "0.6", "weekly"
		if now.Sub(post.PubDate) < 7*24*time.Hour {
			priority, changefreq = "0.8", "daily"
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + postURL(post.ID),
			LastMod:    post.PubDate.Format("2006-01-02"),
			ChangeFreq: changefreq,
			Priority:   priority,
		})
	}

	writeXML(c, "application/xml; charset=utf-8", set)
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author,omitempty"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// RSSFeed renders an RSS 2.0 feed of recent public posts.
func (h *FeedHandler) RSSFeed(c *gin.Context) {
	now := time.Now()
	posts, err := h.listing.Recent(c.Request.Context(), feedLimit, now)
	if err != nil {
		ServerError(c, err)
		return
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "Blogicum",
			Link:          h.siteURL + "/",
			Description:   "Latest posts on Blogicum",
			LastBuildDate: now.Format(time.RFC1123Z),
		},
	}
	for _, post := range posts {
		link := h.siteURL + postURL(post.ID)
		item := rssItem{
			Title:       post.Title,
			Link:        link,
			Description: string(utils.RenderMarkdown(post.Text)),
			Author:      post.Author.Username,
			PubDate:     post.PubDate.Format(time.RFC1123Z),
			GUID:        link,
		}
		if post.Category != nil {
			item.Category = post.Category.Title
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}

	writeXML(c, "application/rss+xml; charset=utf-8", feed)
}

func writeXML(c *gin.Context, contentType string, v any) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		ServerError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
