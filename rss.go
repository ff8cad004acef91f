package rango

import (
	"encoding/xml"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	GUID        string `xml:"guid"`
}

// renderRSS writes the most viewed pages as an RSS 2.0 feed. Item links
// point at the page itself; the guid is the page's goto address on this site.
func (a *App) renderRSS(c echo.Context, pages []Page) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(pages))
	for _, p := range pages {
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        p.URL,
			Description: strconv.Itoa(p.Views) + " views",
			GUID:        BuildURL(base, "rango", "goto") + "?page_id=" + strconv.FormatInt(p.ID, 10),
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
