package site

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the site configuration. A missing file yields
// a default configuration, so a bare content directory still bakes.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		config := &Config{}
		applyDefaults(config)
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid site config %s: %w", path, err)
	}

	return &config, nil
}

// TaxonomyNames returns the configured taxonomy names in sorted order, so
// view key sets and index passes are deterministic.
func (c *Config) TaxonomyNames() []string {
	names := make([]string, 0, len(c.Taxonomies))
	for name := range c.Taxonomies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func applyDefaults(config *Config) {
	if config.Title == "" {
		config.Title = "Untitled Site"
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.FeedItems == 0 {
		config.FeedItems = 10
	}
	if config.Taxonomies == nil {
		config.Taxonomies = map[string]TaxonomyConfig{
			"tags":       {Setting: "tags", Multiple: true},
			"categories": {Setting: "category", Multiple: false},
		}
	}
}

func validate(config *Config) error {
	if config.FeedItems < 0 {
		return fmt.Errorf("feed items must be non-negative")
	}

	for name, tax := range config.Taxonomies {
		if name == "" {
			return fmt.Errorf("taxonomy name must not be empty")
		}
		if tax.Setting == "" {
			return fmt.Errorf("taxonomy '%s' must name a front-matter setting", name)
		}
	}

	return nil
}
