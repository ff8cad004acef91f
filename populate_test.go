package rango

import (
	"strings"
	"testing"
)

const testSeed = `
categories:
  - name: Python
    views: 128
    likes: 64
    pages:
      - title: Official Python Tutorial
        url: http://docs.python.org/3/tutorial/
      - title: Learn Python in 10 Minutes
        url: www.korokithakis.net/tutorials/python/
  - name: Other Frameworks
    pages:
      - title: Flask
        url: http://flask.pocoo.org
`

func TestPopulateIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	seed, err := LoadSeed(strings.NewReader(testSeed))
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		res, err := s.Populate(seed)
		if err != nil {
			t.Fatalf("Populate run %d failed: %v", i, err)
		}
		if res.Categories != 2 || res.Pages != 3 {
			t.Errorf("run %d result = %+v", i, res)
		}
	}

	cats, _ := s.ListCategories()
	if len(cats) != 2 {
		t.Fatalf("categories = %d, want 2", len(cats))
	}
	py, err := s.GetCategory("python")
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if py.Likes != 64 || py.Views != 128 {
		t.Errorf("python = %+v", py)
	}
	pages, _ := s.ListPages(py.ID)
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	for _, p := range pages {
		if !strings.HasPrefix(p.URL, "http://") {
			t.Errorf("url %q not normalized", p.URL)
		}
	}
}

func TestLoadSeedRejectsUnknownFields(t *testing.T) {
	if _, err := LoadSeed(strings.NewReader("categories:\n  - nme: Typo\n")); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestLoadSeedEmpty(t *testing.T) {
	seed, err := LoadSeed(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}
	if len(seed.Categories) != 0 {
		t.Errorf("categories = %d, want 0", len(seed.Categories))
	}
}

func TestPopulateRejectsBadURL(t *testing.T) {
	s := setupTestStore(t)
	seed := Seed{Categories: []SeedCategory{{Name: "X", Pages: []SeedPage{{Title: "bad", URL: "http://"}}}}}
	if _, err := s.Populate(seed); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestPopulateIsAllOrNothing(t *testing.T) {
	s := setupTestStore(t)
	seed := Seed{Categories: []SeedCategory{
		{Name: "Python", Pages: []SeedPage{{Title: "Docs", URL: "http://docs.python.org"}}},
		{Name: "Broken", Pages: []SeedPage{{Title: "bad", URL: "http://"}}},
	}}
	if _, err := s.Populate(seed); err == nil {
		t.Fatal("expected error for invalid url")
	}

	cats, err := s.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("categories = %d, want 0 after failed populate", len(cats))
	}
	pages, _ := s.TopPages(10)
	if len(pages) != 0 {
		t.Errorf("pages = %d, want 0 after failed populate", len(pages))
	}
}
