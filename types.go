package rango

// Category groups pages under a unique name. Slug is derived from Name.
type Category struct {
	ID    int64
	Name  string
	Slug  string
	Views int
	Likes int
}

// Page is a link filed under a category.
type Page struct {
	ID         int64
	CategoryID int64
	Title      string
	URL        string
	Views      int
}

// User is a registered account. The password hash never leaves the store.
type User struct {
	ID       int64
	Username string
	Email    string
	Website  string
}

// CategoryForm is the add-category form with per-field errors.
type CategoryForm struct {
	Name   string
	Errors map[string]string
}

// PageForm is the add-page form with per-field errors.
type PageForm struct {
	Title  string
	URL    string
	Errors map[string]string
}

// RegisterForm is the registration form. The password is never echoed back.
type RegisterForm struct {
	Username string
	Email    string
	Website  string
	Errors   map[string]string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
