package bake

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pagekiln/page-kiln/app/content"
)

func TestPageBakerWritesOutput(t *testing.T) {
	outDir := t.TempDir()
	baker := NewPageBaker(outDir, 2, false)

	baker.StartWriterQueue()
	defer baker.StopWriterQueue()

	var mu sync.Mutex
	var reported []string

	err := baker.Enqueue(WriteJob{
		Path: "posts/hello.html",
		Data: []byte("<html>hello</html>"),
		Report: func(path string, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				reported = append(reported, path)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	baker.Flush()

	data, err := os.ReadFile(filepath.Join(outDir, "posts", "hello.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html>hello</html>" {
		t.Errorf("Unexpected output: %q", data)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0] != "posts/hello.html" {
		t.Errorf("Unexpected report: %v", reported)
	}
}

func TestPageBakerEnqueueBeforeStart(t *testing.T) {
	baker := NewPageBaker(t.TempDir(), 1, false)
	if err := baker.Enqueue(WriteJob{Path: "x.html"}); err == nil {
		t.Error("Expected error when enqueueing before start")
	}
}

func TestPageBakerSweepDeleted(t *testing.T) {
	outDir := t.TempDir()
	keep := filepath.Join(outDir, "keep.html")
	stale := filepath.Join(outDir, "stale.html")
	for _, path := range []string{keep, stale} {
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	baker := NewPageBaker(outDir, 1, false)
	baker.SweepDeleted([]string{"keep.html", "stale.html"}, []string{"keep.html"})

	if _, err := os.Stat(keep); err != nil {
		t.Error("keep.html should still exist")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale.html should have been removed")
	}
}

func TestPostOutPath(t *testing.T) {
	post := &content.Post{Item: content.Item{Spec: "hello-world.md"}}
	if got := PostOutPath(post); got != "posts/hello-world.html" {
		t.Errorf("Unexpected out path: %s", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	html := string(RenderMarkdown("# Title\n\nFirst paragraph.\n\n- one\n- two\n"))

	if want := "<h1>Title</h1>"; !strings.Contains(html, want) {
		t.Errorf("Expected %q in output: %s", want, html)
	}
	if want := "<p>First paragraph.</p>"; !strings.Contains(html, want) {
		t.Errorf("Expected %q in output: %s", want, html)
	}
	if want := "<li>one</li>"; !strings.Contains(html, want) {
		t.Errorf("Expected %q in output: %s", want, html)
	}
}

func TestRenderMarkdownEscapes(t *testing.T) {
	html := string(RenderMarkdown("a <script> tag\n"))
	if strings.Contains(html, "<script>") {
		t.Errorf("Markdown output must escape HTML: %s", html)
	}
}

func TestExcerpt(t *testing.T) {
	got := Excerpt("<p>Short intro.</p><p>Second paragraph.</p>")
	if got != "Short intro." {
		t.Errorf("Expected first paragraph, got %q", got)
	}

	long := "<p>" + strings.Repeat("word ", 100) + "</p>"
	got = Excerpt(long)
	if len(got) > excerptLength+len("…")+1 {
		t.Errorf("Excerpt too long: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
}

func TestPageBakerForce(t *testing.T) {
	if !NewPageBaker(t.TempDir(), 1, true).Force() {
		t.Error("Expected force baker")
	}
	if NewPageBaker(t.TempDir(), 1, false).Force() {
		t.Error("Expected non-force baker")
	}
}
