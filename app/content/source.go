package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FilesystemSource enumerates markdown posts under a directory. Pages are
// parsed once per spec and cached; the scan counter exposes how many full
// enumeration passes have run, so tests can assert single-pass behavior.
type FilesystemSource struct {
	name      string
	dir       string
	pages     map[string]*Post
	scanCount int
	mu        sync.Mutex
}

func NewFilesystemSource(name, dir string) *FilesystemSource {
	return &FilesystemSource{
		name:  name,
		dir:   dir,
		pages: make(map[string]*Post),
	}
}

func (s *FilesystemSource) Name() string {
	return s.name
}

// GetAllContents enumerates every markdown file under the content directory,
// sorted by file name for a stable enumeration order.
func (s *FilesystemSource) GetAllContents() ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scanCount++

	files, err := filepath.Glob(filepath.Join(s.dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate content files: %w", err)
	}
	sort.Strings(files)

	items := make([]Item, 0, len(files))
	for _, file := range files {
		spec := filepath.Base(file)
		post, err := s.loadPageLocked(spec)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
		items = append(items, post.Item)
	}

	return items, nil
}

// LoadPage resolves an item to its post. Repeated loads for the same spec
// return the cached post.
func (s *FilesystemSource) LoadPage(item Item) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPageLocked(item.Spec)
}

// ScanCount reports how many full enumeration passes have run.
func (s *FilesystemSource) ScanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanCount
}

func (s *FilesystemSource) loadPageLocked(spec string) (*Post, error) {
	if post, ok := s.pages[spec]; ok {
		return post, nil
	}

	path := filepath.Join(s.dir, spec)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, body, err := splitFrontMatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("invalid front matter in %s: %w", spec, err)
	}

	date, err := resolveDate(config)
	if err != nil {
		return nil, fmt.Errorf("invalid date in %s: %w", spec, err)
	}
	if date.IsZero() {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		date = info.ModTime()
	}

	title, _ := config["title"].(string)
	if title == "" {
		title = strings.TrimSuffix(spec, filepath.Ext(spec))
	}

	post := &Post{
		Item: Item{
			Spec:      spec,
			Timestamp: date,
		},
		Title:  title,
		Date:   date,
		Config: config,
		Body:   body,
	}
	s.pages[spec] = post

	return post, nil
}

// splitFrontMatter separates the leading YAML block from the markdown body.
// A file without front matter is all body with an empty configuration.
func splitFrontMatter(data string) (map[string]interface{}, string, error) {
	config := make(map[string]interface{})

	if !strings.HasPrefix(data, frontMatterDelimiter+"\n") &&
		data != frontMatterDelimiter {
		return config, data, nil
	}

	rest := strings.TrimPrefix(data, frontMatterDelimiter+"\n")
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return nil, "", fmt.Errorf("unterminated front matter block")
	}

	header := rest[:end]
	body := rest[end+len("\n"+frontMatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(header), &config); err != nil {
		return nil, "", fmt.Errorf("failed to parse YAML: %w", err)
	}
	if config == nil {
		config = make(map[string]interface{})
	}

	return config, body, nil
}

func resolveDate(config map[string]interface{}) (time.Time, error) {
	raw, ok := config["date"]
	if !ok {
		return time.Time{}, nil
	}

	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date format: %s", v)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value: %v", raw)
	}
}
