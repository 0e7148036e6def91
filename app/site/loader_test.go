package site

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
title: "My Blog"
description: "Notes on things"
author: "Jane"
base_url: "https://blog.example.com"
feed_items: 5

taxonomies:
  tags:
    setting: "tags"
    multiple: true
  series:
    setting: "series"
`

	path := filepath.Join(tempDir, "site.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if config.Title != "My Blog" {
		t.Errorf("Expected title 'My Blog', got '%s'", config.Title)
	}
	if config.BaseURL != "https://blog.example.com" {
		t.Errorf("Expected base URL 'https://blog.example.com', got '%s'", config.BaseURL)
	}
	if config.FeedItems != 5 {
		t.Errorf("Expected 5 feed items, got %d", config.FeedItems)
	}
	if config.Language != "en" {
		t.Errorf("Expected default language 'en', got '%s'", config.Language)
	}

	if len(config.Taxonomies) != 2 {
		t.Fatalf("Expected 2 taxonomies, got %d", len(config.Taxonomies))
	}
	if !config.Taxonomies["tags"].Multiple {
		t.Error("Expected tags to be multi-valued")
	}
	if config.Taxonomies["series"].Multiple {
		t.Error("Expected series to be single-valued")
	}

	names := config.TaxonomyNames()
	if len(names) != 2 || names[0] != "series" || names[1] != "tags" {
		t.Errorf("Unexpected taxonomy name order: %v", names)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "site.yml"))
	if err != nil {
		t.Fatal(err)
	}

	if config.Title != "Untitled Site" {
		t.Errorf("Expected default title, got '%s'", config.Title)
	}
	if config.FeedItems != 10 {
		t.Errorf("Expected default feed items 10, got %d", config.FeedItems)
	}
	if _, ok := config.Taxonomies["tags"]; !ok {
		t.Error("Expected default tags taxonomy")
	}
	if _, ok := config.Taxonomies["categories"]; !ok {
		t.Error("Expected default categories taxonomy")
	}
	if config.Taxonomies["categories"].Setting != "category" {
		t.Errorf("Expected categories setting 'category', got '%s'",
			config.Taxonomies["categories"].Setting)
	}
}

func TestLoadInvalidTaxonomy(t *testing.T) {
	tempDir := t.TempDir()

	content := `
title: "Broken"
taxonomies:
  tags: {}
`
	path := filepath.Join(tempDir, "site.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for taxonomy without a setting")
	}
}
