package rango

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a requested category, page or user does not exist.
	ErrNotFound = sql.ErrNoRows
	// ErrDuplicate is returned when a unique name is already taken.
	ErrDuplicate = errors.New("rango: already exists")
	// ErrInvalidCredentials is returned by Authenticate on a bad username or password.
	ErrInvalidCredentials = errors.New("rango: invalid username or password")
)

// Store wraps a SQLite database holding categories, pages, users and
// server-side session values.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// foreign_keys and busy_timeout are per connection, so they go in the DSN.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    slug TEXT NOT NULL UNIQUE,
    views INTEGER NOT NULL DEFAULT 0,
    likes INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    url TEXT NOT NULL,
    views INTEGER NOT NULL DEFAULT 0,
    UNIQUE (category_id, title)
);

CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    website TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_values (
    session_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (session_id, key)
);

CREATE INDEX IF NOT EXISTS idx_pages_category ON pages(category_id);
CREATE INDEX IF NOT EXISTS idx_pages_views ON pages(views);
CREATE INDEX IF NOT EXISTS idx_categories_likes ON categories(likes);
CREATE INDEX IF NOT EXISTS idx_session_values_updated ON session_values(updated_at);
`)
	return err
}

const categoryColumns = `id, name, slug, views, likes`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Views, &c.Likes)
	return c, err
}

func (s *Store) queryCategories(query string, args ...any) ([]Category, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories() ([]Category, error) {
	return s.queryCategories(`SELECT ` + categoryColumns + ` FROM categories ORDER BY name`)
}

// TopCategories returns up to limit categories with the most likes.
func (s *Store) TopCategories(limit int) ([]Category, error) {
	return s.queryCategories(`SELECT `+categoryColumns+` FROM categories ORDER BY likes DESC, name LIMIT ?`, limit)
}

// GetCategory returns the category with the given slug.
func (s *Store) GetCategory(slug string) (Category, error) {
	return scanCategory(s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug))
}

// GetCategoryByID returns the category with the given id.
func (s *Store) GetCategoryByID(id int64) (Category, error) {
	return scanCategory(s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
}

// AddCategory inserts a new category named name. It returns ErrDuplicate
// when the name or its slug is already taken.
func (s *Store) AddCategory(name string) (Category, error) {
	c := Category{Name: strings.TrimSpace(name), Slug: Slugify(name)}
	res, err := s.db.Exec(`INSERT INTO categories (name, slug, views, likes) VALUES (?, ?, 0, 0)`, c.Name, c.Slug)
	if err != nil {
		return Category{}, mapConstraint(err)
	}
	c.ID, err = res.LastInsertId()
	return c, err
}

// SaveCategory inserts c or, when a category with the same name exists,
// overwrites its views and likes. The slug is always derived from the name.
func (s *Store) SaveCategory(c Category) (Category, error) {
	return saveCategory(s.db, c)
}

// execQuerier is satisfied by both *sql.DB and *sql.Tx.
type execQuerier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func saveCategory(q execQuerier, c Category) (Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = Slugify(c.Name)
	_, err := q.Exec(`
INSERT INTO categories (name, slug, views, likes) VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET views = excluded.views, likes = excluded.likes`,
		c.Name, c.Slug, c.Views, c.Likes)
	if err != nil {
		return Category{}, mapConstraint(err)
	}
	return scanCategory(q.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE name = ?`, c.Name))
}

// ViewCategory records one view of the category with the given slug and
// returns it with the updated count.
func (s *Store) ViewCategory(slug string) (Category, error) {
	return scanCategory(s.db.QueryRow(`UPDATE categories SET views = views + 1 WHERE slug = ? RETURNING `+categoryColumns, slug))
}

// LikeCategory adds one like to the category and returns the new total.
func (s *Store) LikeCategory(id int64) (int, error) {
	var likes int
	err := s.db.QueryRow(`UPDATE categories SET likes = likes + 1 WHERE id = ? RETURNING likes`, id).Scan(&likes)
	return likes, err
}

const pageColumns = `id, category_id, title, url, views`

func scanPage(row interface{ Scan(...any) error }) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.CategoryID, &p.Title, &p.URL, &p.Views)
	return p, err
}

func (s *Store) queryPages(query string, args ...any) ([]Page, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// ListPages returns the pages of a category, most viewed first.
func (s *Store) ListPages(categoryID int64) ([]Page, error) {
	return s.queryPages(`SELECT `+pageColumns+` FROM pages WHERE category_id = ? ORDER BY views DESC, title`, categoryID)
}

// TopPages returns up to limit pages with the most views across all categories.
func (s *Store) TopPages(limit int) ([]Page, error) {
	return s.queryPages(`SELECT `+pageColumns+` FROM pages ORDER BY views DESC, title LIMIT ?`, limit)
}

// GetPage returns the page with the given id.
func (s *Store) GetPage(id int64) (Page, error) {
	return scanPage(s.db.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
}

// AddPage inserts p with zero views. It returns ErrDuplicate when the
// category already holds a page with the same title.
func (s *Store) AddPage(p Page) (Page, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Views = 0
	res, err := s.db.Exec(`INSERT INTO pages (category_id, title, url, views) VALUES (?, ?, ?, 0)`, p.CategoryID, p.Title, p.URL)
	if err != nil {
		return Page{}, mapConstraint(err)
	}
	p.ID, err = res.LastInsertId()
	return p, err
}

// SavePage upserts p keyed on (category, title), overwriting url and views.
func (s *Store) SavePage(p Page) (Page, error) {
	return savePage(s.db, p)
}

func savePage(q execQuerier, p Page) (Page, error) {
	p.Title = strings.TrimSpace(p.Title)
	_, err := q.Exec(`
INSERT INTO pages (category_id, title, url, views) VALUES (?, ?, ?, ?)
ON CONFLICT(category_id, title) DO UPDATE SET url = excluded.url, views = excluded.views`,
		p.CategoryID, p.Title, p.URL, p.Views)
	if err != nil {
		return Page{}, mapConstraint(err)
	}
	return scanPage(q.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE category_id = ? AND title = ?`, p.CategoryID, p.Title))
}

// VisitPage records one click-through on a page and returns it with the
// updated view count.
func (s *Store) VisitPage(id int64) (Page, error) {
	return scanPage(s.db.QueryRow(`UPDATE pages SET views = views + 1 WHERE id = ? RETURNING `+pageColumns, id))
}

// CreateUser stores a new account with a bcrypt hash of password.
func (s *Store) CreateUser(u User, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u.Username = strings.TrimSpace(u.Username)
	res, err := s.db.Exec(`INSERT INTO users (username, email, password_hash, website, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, string(hash), u.Website, time.Now().Unix())
	if err != nil {
		return User{}, mapConstraint(err)
	}
	u.ID, err = res.LastInsertId()
	return u, err
}

// Authenticate returns the user when password matches the stored hash.
func (s *Store) Authenticate(username, password string) (User, error) {
	var u User
	var hash string
	err := s.db.QueryRow(`SELECT id, username, email, website, password_hash FROM users WHERE username = ?`, strings.TrimSpace(username)).
		Scan(&u.ID, &u.Username, &u.Email, &u.Website, &hash)
	if err == sql.ErrNoRows {
		// Burn comparable time so unknown usernames are not distinguishable.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("rango-dummy-password"), bcrypt.DefaultCost)

// GetUser returns the user with the given id.
func (s *Store) GetUser(id int64) (User, error) {
	var u User
	err := s.db.QueryRow(`SELECT id, username, email, website FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Website)
	return u, err
}

func mapConstraint(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
		return ErrDuplicate
	}
	return err
}
