package rango

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

// Field limits for user-submitted content.
const (
	maxNameLen  = 128
	maxTitleLen = 128
	maxURLLen   = 200
)

func (a *App) handleAddCategoryForm(c echo.Context) error {
	return Render(c, a.Views.AddCategory(viewer(c), CategoryForm{}))
}

func (a *App) handleAddCategory(c echo.Context) error {
	form := CategoryForm{Name: strings.TrimSpace(c.FormValue("name"))}
	form.Errors = validateCategory(form)
	if len(form.Errors) == 0 {
		cat, err := a.Store.AddCategory(form.Name)
		switch {
		case errors.Is(err, ErrDuplicate):
			form.Errors = map[string]string{"name": "Category with this name already exists."}
		case err != nil:
			return err
		default:
			a.Cache.Invalidate()
			c.Logger().Infof("category added: %s", cat.Slug)
			return c.Redirect(http.StatusSeeOther, "/rango/")
		}
	}
	return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AddCategory(viewer(c), form))
}

func validateCategory(f CategoryForm) map[string]string {
	errs := map[string]string{}
	switch {
	case f.Name == "":
		errs["name"] = "Please enter the category name."
	case utf8.RuneCountInString(f.Name) > maxNameLen:
		errs["name"] = "Category name is too long."
	case Slugify(f.Name) == "":
		errs["name"] = "Category name needs at least one letter or digit."
	}
	return errs
}

func (a *App) categoryFromPath(c echo.Context) (Category, bool, error) {
	cat, err := a.Store.GetCategory(c.Param("slug"))
	if err == sql.ErrNoRows {
		return Category{}, false, nil
	}
	if err != nil {
		return Category{}, false, err
	}
	return cat, true, nil
}

func (a *App) handleAddPageForm(c echo.Context) error {
	cat, ok, err := a.categoryFromPath(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/rango/")
	}
	return Render(c, a.Views.AddPage(viewer(c), cat, PageForm{}))
}

func (a *App) handleAddPage(c echo.Context) error {
	cat, ok, err := a.categoryFromPath(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/rango/")
	}

	form := PageForm{
		Title: strings.TrimSpace(c.FormValue("title")),
		URL:   NormalizeURL(c.FormValue("url")),
	}
	form.Errors = validatePage(form)
	if len(form.Errors) == 0 {
		_, err := a.Store.AddPage(Page{CategoryID: cat.ID, Title: form.Title, URL: form.URL})
		switch {
		case errors.Is(err, ErrDuplicate):
			form.Errors = map[string]string{"title": "This category already has a page with that title."}
		case err != nil:
			return err
		default:
			a.Cache.Invalidate()
			return c.Redirect(http.StatusSeeOther, CategoryPath(cat.Slug))
		}
	}
	return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AddPage(viewer(c), cat, form))
}

func validatePage(f PageForm) map[string]string {
	errs := map[string]string{}
	switch {
	case f.Title == "":
		errs["title"] = "Please enter the title of the page."
	case utf8.RuneCountInString(f.Title) > maxTitleLen:
		errs["title"] = "Title is too long."
	}
	switch {
	case f.URL == "":
		errs["url"] = "Please enter the URL of the page."
	case len(f.URL) > maxURLLen:
		errs["url"] = "URL is too long."
	case !ValidLinkURL(f.URL):
		errs["url"] = "Enter a valid URL."
	}
	return errs
}
