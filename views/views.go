// Package views is the default set of rango pages. Each page is an
// html/template set sharing one layout, exposed as a templ.Component.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/rango"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFiles = []string{
	"index", "about", "category", "add_category", "add_page",
	"register", "login", "restricted", "not_found", "server_error",
}

// boldMessage is the index page greeting.
const boldMessage = "Crunchy, creamy, cookie, candy, cupcake!"

var funcs = template.FuncMap{
	"categoryPath": rango.CategoryPath,
	"gotoURL":      gotoURL,
	"fieldError":   fieldError,
	"plural":       plural,
}

// page is what every template receives.
type page struct {
	Site   rango.SiteConfig
	Meta   rango.PageMeta
	Viewer rango.Viewer
	Data   any
}

type set struct {
	site  rango.SiteConfig
	pages map[string]*template.Template
}

// New parses the embedded templates and returns the ViewFuncs that render
// them. It panics if a template fails to parse.
func New(site rango.SiteConfig) rango.ViewFuncs {
	s := &set{site: site, pages: make(map[string]*template.Template, len(pageFiles))}
	for _, name := range pageFiles {
		s.pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html"))
	}

	return rango.ViewFuncs{
		Index: func(v rango.Viewer, cats []rango.Category, pages []rango.Page, visits int) templ.Component {
			return s.render("index", "", "/rango/", v, struct {
				BoldMessage string
				Categories  []rango.Category
				Pages       []rango.Page
				Visits      int
			}{boldMessage, cats, pages, visits})
		},
		About: func(v rango.Viewer, visits int) templ.Component {
			return s.render("about", "About", "/rango/about/", v, struct{ Visits int }{visits})
		},
		Category: func(v rango.Viewer, cat *rango.Category, pages []rango.Page) templ.Component {
			title, path := "Unknown Category", ""
			if cat != nil {
				title, path = cat.Name, rango.CategoryPath(cat.Slug)
			}
			return s.render("category", title, path, v, struct {
				Category *rango.Category
				Pages    []rango.Page
			}{cat, pages})
		},
		AddCategory: func(v rango.Viewer, form rango.CategoryForm) templ.Component {
			return s.render("add_category", "Add a Category", "", v, struct{ Form rango.CategoryForm }{form})
		},
		AddPage: func(v rango.Viewer, cat rango.Category, form rango.PageForm) templ.Component {
			return s.render("add_page", "Add a Page", "", v, struct {
				Category rango.Category
				Form     rango.PageForm
			}{cat, form})
		},
		Register: func(v rango.Viewer, form rango.RegisterForm, registered bool) templ.Component {
			return s.render("register", "Register", "", v, struct {
				Form       rango.RegisterForm
				Registered bool
			}{form, registered})
		},
		Login: func(v rango.Viewer, message string) templ.Component {
			return s.render("login", "Login", "", v, struct{ Message string }{message})
		},
		Restricted: func(v rango.Viewer) templ.Component {
			return s.render("restricted", "Restricted", "", v, nil)
		},
		NotFound: func() templ.Component {
			return s.render("not_found", "Not Found", "", rango.Viewer{}, nil)
		},
		ServerError: func() templ.Component {
			return s.render("server_error", "Error", "", rango.Viewer{}, nil)
		},
	}
}

func (s *set) render(name, title, path string, v rango.Viewer, data any) templ.Component {
	p := page{Site: s.site, Meta: s.meta(title, path), Viewer: v, Data: data}
	t := s.pages[name]
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := t.ExecuteTemplate(w, "layout", p); err != nil {
			return fmt.Errorf("views: render %s: %w", name, err)
		}
		return nil
	})
}

func (s *set) meta(title, path string) rango.PageMeta {
	m := rango.PageMeta{Title: s.site.Name, Description: s.site.Description, OGType: "website"}
	if title != "" {
		m.Title = title + " | " + s.site.Name
	}
	if path != "" {
		m.URL = strings.TrimSuffix(s.site.URL, "/") + path
	}
	return m
}

func gotoURL(pageID int64) string {
	return "/rango/goto/?page_id=" + strconv.FormatInt(pageID, 10)
}

func fieldError(errs map[string]string, field string) string {
	return errs[field]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
