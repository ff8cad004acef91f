package rango

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/rango/")
}

// handleIndex lists the most liked categories and most viewed pages.
func (a *App) handleIndex(c echo.Context) error {
	visits := a.trackVisit(c)
	cats, err := a.Cache.TopCategories()
	if err != nil {
		return err
	}
	pages, err := a.Cache.TopPages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Index(viewer(c), cats, pages, visits))
}

func (a *App) handleAbout(c echo.Context) error {
	visits := a.trackVisit(c)
	return Render(c, a.Views.About(viewer(c), visits))
}

// handleCategory counts a view of one category and shows it with its pages.
// An unknown slug still renders the category view, with a nil category.
func (a *App) handleCategory(c echo.Context) error {
	cat, err := a.Store.ViewCategory(c.Param("slug"))
	if err == sql.ErrNoRows {
		return RenderStatus(c, http.StatusNotFound, a.Views.Category(viewer(c), nil, nil))
	}
	if err != nil {
		return err
	}
	pages, err := a.Store.ListPages(cat.ID)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Category(viewer(c), &cat, pages))
}

// handleGoto counts a click-through and redirects to the page's URL.
func (a *App) handleGoto(c echo.Context) error {
	id, err := strconv.ParseInt(c.QueryParam("page_id"), 10, 64)
	if err != nil {
		return c.Redirect(http.StatusFound, "/rango/")
	}
	page, err := a.Store.VisitPage(id)
	if err == sql.ErrNoRows {
		return c.Redirect(http.StatusFound, "/rango/")
	}
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusFound, page.URL)
}

// handleLikeCategory adds a like and answers with the new total as plain text.
func (a *App) handleLikeCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.QueryParam("category_id"), 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, "invalid category_id")
	}
	likes, err := a.Store.LikeCategory(id)
	if err == sql.ErrNoRows {
		return c.String(http.StatusNotFound, "no such category")
	}
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.String(http.StatusOK, strconv.Itoa(likes))
}

func (a *App) handleSitemap(c echo.Context) error {
	cats, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, cats)
}

func (a *App) handleFeed(c echo.Context) error {
	pages, err := a.Store.TopPages(20)
	if err != nil {
		return err
	}
	return a.renderRSS(c, pages)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /rango/goto/\nDisallow: /rango/restricted/\n\nSitemap: " +
		strings.TrimSuffix(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
