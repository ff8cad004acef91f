// Package rango is a small link-categorization site built with Go, Echo and templ.
// Users browse categories of pages, register, log in, add categories and pages,
// and see how many days they have come back.
//
// Templates are supplied by the caller through ViewFuncs; rango owns the
// handlers, middleware, SQLite storage and visit tracking.
package rango

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/rango/visit"
)

// Viewer is what every page knows about the person looking at it.
type Viewer struct {
	User      *User
	CSRFToken string
}

// ViewFuncs holds the templ components the handlers render. Callers own
// the markup; the views package ships a default set.
type ViewFuncs struct {
	Index       func(v Viewer, categories []Category, pages []Page, visits int) templ.Component
	About       func(v Viewer, visits int) templ.Component
	Category    func(v Viewer, category *Category, pages []Page) templ.Component
	AddCategory func(v Viewer, form CategoryForm) templ.Component
	AddPage     func(v Viewer, category Category, form PageForm) templ.Component
	Register    func(v Viewer, form RegisterForm, registered bool) templ.Component
	Login       func(v Viewer, message string) templ.Component
	Restricted  func(v Viewer) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central rango application. It wires together the store,
// cache, visit tracker, handlers, middleware and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *CategoryCache
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	tracker      *visit.Tracker
	visitStore   visit.Store
	clock        visit.Clock
	closers      []func()
	customRoutes []func(*App)
	staticDir    string
	initialized  bool
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
		clock:     visit.SystemClock,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the database and wires the cache, visit tracking, middleware
// and routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("rango: SessionSecret is required")
	}

	a.Echo.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("rango: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewCategoryCache(a.Store, a.Config.CacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.visitStore == nil {
		vs, err := a.newVisitStore()
		if err != nil {
			a.Close()
			return fmt.Errorf("rango: init visit store: %w", err)
		}
		a.visitStore = vs
	}
	a.tracker = visit.NewTracker(a.visitStore, a.clock)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the app and serves HTTP until the server stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("rango: listening on %s (visit store: %s)", a.Config.Addr, a.Config.VisitStore)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/rango.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/rango.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", handleRootRedirect)

	r := e.Group("/rango")
	r.GET("/", a.handleIndex)
	r.GET("/about/", a.handleAbout)
	r.GET("/category/:slug/", a.handleCategory)
	r.GET("/goto/", a.handleGoto)

	r.GET("/add_category/", a.handleAddCategoryForm, a.requireLogin)
	r.POST("/add_category/", a.handleAddCategory, a.requireLogin)
	r.GET("/category/:slug/add_page/", a.handleAddPageForm, a.requireLogin)
	r.POST("/category/:slug/add_page/", a.handleAddPage, a.requireLogin)
	r.POST("/like_category/", a.handleLikeCategory, a.requireLogin)

	r.GET("/register/", a.handleRegisterForm)
	r.POST("/register/", a.handleRegister)
	r.GET("/login/", a.handleLoginForm)
	r.POST("/login/", a.handleLogin)
	r.POST("/logout/", a.handleLogout, a.requireLogin)
	r.GET("/restricted/", a.handleRestricted, a.requireLogin)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func parseLogLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
