package site

// Config is the site configuration loaded from site.yml.
type Config struct {
	Title       string                    `yaml:"title"`
	Description string                    `yaml:"description"`
	Author      string                    `yaml:"author"`
	BaseURL     string                    `yaml:"base_url"`
	Language    string                    `yaml:"language"`
	FeedItems   int                       `yaml:"feed_items"`
	Taxonomies  map[string]TaxonomyConfig `yaml:"taxonomies"`
}

// TaxonomyConfig defines one classification axis. Setting names the
// front-matter key posts use for this taxonomy; Multiple marks
// list-valued taxonomies.
type TaxonomyConfig struct {
	Setting  string `yaml:"setting"`
	Multiple bool   `yaml:"multiple"`
}
