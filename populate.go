package rango

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML document read by the populate command.
type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
}

// SeedCategory is one category with its pages.
type SeedCategory struct {
	Name  string     `yaml:"name"`
	Views int        `yaml:"views"`
	Likes int        `yaml:"likes"`
	Pages []SeedPage `yaml:"pages"`
}

// SeedPage is one page of a SeedCategory.
type SeedPage struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Views int    `yaml:"views"`
}

// LoadSeed decodes a seed document. Unknown fields are rejected.
func LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("rango: decode seed: %w", err)
	}
	return seed, nil
}

// PopulateResult counts what Populate wrote.
type PopulateResult struct {
	Categories int
	Pages      int
}

// Populate upserts every category and page in seed inside one transaction,
// so a bad entry leaves the database untouched. Running it twice leaves the
// same data behind.
func (s *Store) Populate(seed Seed) (PopulateResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return PopulateResult{}, fmt.Errorf("rango: begin populate: %w", err)
	}
	defer tx.Rollback()

	var res PopulateResult
	for _, sc := range seed.Categories {
		if Slugify(sc.Name) == "" {
			return PopulateResult{}, fmt.Errorf("rango: seed category %q has no usable name", sc.Name)
		}
		cat, err := saveCategory(tx, Category{Name: sc.Name, Views: sc.Views, Likes: sc.Likes})
		if err != nil {
			return PopulateResult{}, fmt.Errorf("rango: save category %q: %w", sc.Name, err)
		}
		res.Categories++
		for _, sp := range sc.Pages {
			url := NormalizeURL(sp.URL)
			if !ValidLinkURL(url) {
				return PopulateResult{}, fmt.Errorf("rango: seed page %q has invalid url %q", sp.Title, sp.URL)
			}
			if _, err := savePage(tx, Page{CategoryID: cat.ID, Title: sp.Title, URL: url, Views: sp.Views}); err != nil {
				return PopulateResult{}, fmt.Errorf("rango: save page %q: %w", sp.Title, err)
			}
			res.Pages++
		}
	}
	if err := tx.Commit(); err != nil {
		return PopulateResult{}, fmt.Errorf("rango: commit populate: %w", err)
	}
	return res, nil
}
