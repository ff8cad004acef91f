package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/rango"
)

var testSite = rango.SiteConfig{Name: "Rango", URL: "http://example.com/", Description: "Links worth keeping."}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.String()
}

func TestIndexShowsVisitsAndListings(t *testing.T) {
	v := New(testSite)
	cats := []rango.Category{{ID: 1, Name: "Python", Slug: "python", Likes: 64}}
	pages := []rango.Page{{ID: 7, CategoryID: 1, Title: "Official Python Tutorial", URL: "http://docs.python.org/3/tutorial/", Views: 12}}

	html := render(t, v.Index(rango.Viewer{}, cats, pages, 3))

	for _, want := range []string{
		"Visits: 3",
		"<strong>Crunchy, creamy, cookie, candy, cupcake!</strong>",
		`href="/rango/category/python/"`,
		`href="/rango/goto/?page_id=7"`,
		"Official Python Tutorial",
		`<link rel="canonical" href="http://example.com/rango/">`,
		`href="/rango/login/"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestIndexEmpty(t *testing.T) {
	html := render(t, New(testSite).Index(rango.Viewer{}, nil, nil, 1))
	if !strings.Contains(html, "There are no categories present.") {
		t.Error("expected empty categories message")
	}
	if !strings.Contains(html, "There are no pages present.") {
		t.Error("expected empty pages message")
	}
}

func TestLayoutForLoggedInUser(t *testing.T) {
	v := rango.Viewer{User: &rango.User{ID: 1, Username: "leifos"}, CSRFToken: "tok123"}
	html := render(t, New(testSite).About(v, 1))

	if !strings.Contains(html, "Logout leifos") {
		t.Error("expected logout button with username")
	}
	if !strings.Contains(html, `name="_csrf" value="tok123"`) {
		t.Error("expected csrf token in logout form")
	}
	if !strings.Contains(html, "1 day.") {
		t.Error("expected singular day on about page")
	}
	if strings.Contains(html, `href="/rango/login/"`) {
		t.Error("login link should be hidden for a logged-in user")
	}
}

func TestCategoryNil(t *testing.T) {
	html := render(t, New(testSite).Category(rango.Viewer{}, nil, nil))
	if !strings.Contains(html, "The specified category does not exist.") {
		t.Error("expected not-found text for nil category")
	}
}

func TestCategoryLikeFormOnlyWhenLoggedIn(t *testing.T) {
	cat := &rango.Category{ID: 4, Name: "Django", Slug: "django", Likes: 32}
	views := New(testSite)

	anon := render(t, views.Category(rango.Viewer{}, cat, nil))
	if strings.Contains(anon, "like-form") {
		t.Error("anonymous viewer should not see the like form")
	}
	if !strings.Contains(anon, "No pages currently in category.") {
		t.Error("expected empty pages message")
	}

	user := render(t, views.Category(rango.Viewer{User: &rango.User{ID: 1, Username: "u"}}, cat, nil))
	if !strings.Contains(user, "category_id=4") {
		t.Error("expected like form for category 4")
	}
	if !strings.Contains(user, `href="/rango/category/django/add_page/"`) {
		t.Error("expected add page link")
	}
}

func TestFormErrorsAreEscaped(t *testing.T) {
	form := rango.CategoryForm{
		Name:   `<script>alert(1)</script>`,
		Errors: map[string]string{"name": "Category with this name already exists."},
	}
	html := render(t, New(testSite).AddCategory(rango.Viewer{}, form))

	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("form value was not escaped")
	}
	if !strings.Contains(html, "Category with this name already exists.") {
		t.Error("expected field error")
	}
}

func TestRegisterConfirmation(t *testing.T) {
	html := render(t, New(testSite).Register(rango.Viewer{}, rango.RegisterForm{Username: "bob"}, true))
	if !strings.Contains(html, "Thank you for registering, <strong>bob</strong>") {
		t.Error("expected registration confirmation")
	}
	if strings.Contains(html, `name="password"`) {
		t.Error("form should not be shown after registering")
	}
}

func TestErrorPages(t *testing.T) {
	v := New(testSite)
	if html := render(t, v.NotFound()); !strings.Contains(html, "Page not found") {
		t.Error("404 page missing heading")
	}
	if html := render(t, v.ServerError()); !strings.Contains(html, "Something went wrong") {
		t.Error("500 page missing heading")
	}
}
