package commands

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/unicode"

	"stylegen/config"
	"stylegen/css"
	"stylegen/state"
)

func newEnv(t *testing.T) *state.LocalEnv {
	t.Helper()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Stylesheet.Preamble = false
	env := state.EnvFromContext(state.ContextWithEnv(context.Background()))
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, buf.String())
}

func TestBuildPreset(t *testing.T) {
	tests := []struct {
		preset   string
		contains []string
	}{
		{"grid", []string{".row {", ".span-6 {"}},
		{"semantic", []string{".text {", ".button {"}},
		{"utility", []string{".m-t-2 {", "margin-top: 0.5rem;", ".p-x-0 {", "padding-left: 0;"}},
		{"all", []string{".row {", ".button {", ".m-b-4 {"}},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			sheet := css.NewStyleSheet(zaptest.NewLogger(t), css.WithPreamble(false))
			if err := BuildPreset(sheet, tt.preset); err != nil {
				t.Fatalf("BuildPreset() error = %v", err)
			}
			text, err := sheet.Render()
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("Rendered %s preset does not contain %q", tt.preset, want)
				}
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		sheet := css.NewStyleSheet(zaptest.NewLogger(t))
		if err := BuildPreset(sheet, "bootstrap"); err == nil {
			t.Error("Expected error for unknown preset")
		}
	})
}

func TestWriteOutput(t *testing.T) {
	env := newEnv(t)
	dir := t.TempDir()

	t.Run("stdout", func(t *testing.T) {
		var out bytes.Buffer
		if err := writeOutput(env, &out, "", "body {}\n"); err != nil {
			t.Fatal(err)
		}
		if out.String() != "body {}\n" {
			t.Errorf("out = %q", out.String())
		}
	})

	dst := filepath.Join(dir, "nested", "site.css")
	t.Run("new file", func(t *testing.T) {
		if err := writeOutput(env, nil, dst, "first"); err != nil {
			t.Fatal(err)
		}
		if data, _ := os.ReadFile(dst); string(data) != "first" {
			t.Errorf("file content = %q", data)
		}
	})

	t.Run("existing file", func(t *testing.T) {
		if err := writeOutput(env, nil, dst, "second"); err == nil {
			t.Error("Expected error when destination exists")
		}
		env.Overwrite = true
		defer func() { env.Overwrite = false }()
		if err := writeOutput(env, nil, dst, "second"); err != nil {
			t.Fatal(err)
		}
		if data, _ := os.ReadFile(dst); string(data) != "second" {
			t.Errorf("file content = %q", data)
		}
	})
}

const purgeCSS = `.card {
    padding: 1rem;
}

.unused {
    color: red;
}

.kept {
    color: blue;
}

.from-zip {
    margin: 0;
}

p {
    margin: 0;
}
`

func TestPurgeSheet(t *testing.T) {
	dir := t.TempDir()
	stylesheet := filepath.Join(dir, "site.css")
	writeFile(t, stylesheet, purgeCSS)

	pages := filepath.Join(dir, "pages")
	writeFile(t, filepath.Join(pages, "index.html"), `<html><body><div class="card"><p>Hi</p></div></body></html>`)
	writeFile(t, filepath.Join(pages, "notes.txt"), `<div class="unused"></div>`)
	writeZip(t, filepath.Join(pages, "more.zip"), map[string]string{
		"blog/post.html": `<p class="from-zip">Post</p>`,
	})

	env := newEnv(t)
	env.Cfg.Stylesheet.Safelist = []string{"kept"}

	res, err := PurgeSheet(context.Background(), env, stylesheet, pages)
	if err != nil {
		t.Fatalf("PurgeSheet() error = %v", err)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}
	for _, cls := range []string{"card", "kept", "from-zip"} {
		if !res.Used.Has(cls) {
			t.Errorf("Used classes %v miss %q", res.Used.Sorted(), cls)
		}
	}
	for _, want := range []string{".card {", ".kept {", ".from-zip {", "p {"} {
		if !strings.Contains(res.CSS, want) {
			t.Errorf("Purged CSS does not contain %q:\n%s", want, res.CSS)
		}
	}
	if strings.Contains(res.CSS, ".unused") {
		t.Errorf("Purged CSS keeps unused style:\n%s", res.CSS)
	}
}

func TestPurgeSheet_Errors(t *testing.T) {
	dir := t.TempDir()
	stylesheet := filepath.Join(dir, "site.css")
	writeFile(t, stylesheet, purgeCSS)
	env := newEnv(t)

	t.Run("missing stylesheet", func(t *testing.T) {
		if _, err := PurgeSheet(context.Background(), env, filepath.Join(dir, "none.css"), dir); err == nil {
			t.Error("Expected error for missing stylesheet")
		}
	})

	t.Run("missing source", func(t *testing.T) {
		if _, err := PurgeSheet(context.Background(), env, stylesheet, filepath.Join(dir, "none")); err == nil {
			t.Error("Expected error for missing source")
		}
	})

	t.Run("no pages", func(t *testing.T) {
		empty := filepath.Join(dir, "empty")
		if err := os.Mkdir(empty, 0755); err != nil {
			t.Fatal(err)
		}
		res, err := PurgeSheet(context.Background(), env, stylesheet, empty)
		if err != nil {
			t.Fatalf("PurgeSheet() error = %v", err)
		}
		if res.Pages != 0 {
			t.Errorf("Pages = %d, want 0", res.Pages)
		}
		if !strings.Contains(res.CSS, "p {") || strings.Contains(res.CSS, ".card") {
			t.Errorf("Unexpected purge result:\n%s", res.CSS)
		}
	})
}

func TestPurgeSheet_Charset(t *testing.T) {
	dir := t.TempDir()
	stylesheet := filepath.Join(dir, "site.css")
	writeFile(t, stylesheet, purgeCSS)

	page, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(`<div class="card"></div>`)
	if err != nil {
		t.Fatal(err)
	}
	pagePath := filepath.Join(dir, "utf16.html")
	writeFile(t, pagePath, page)
	env := newEnv(t)

	res, err := PurgeSheet(context.Background(), env, stylesheet, pagePath, WithCharset("UTF-16LE"))
	if err != nil {
		t.Fatalf("PurgeSheet() error = %v", err)
	}
	if !res.Used.Has("card") {
		t.Errorf("Used classes %v miss card", res.Used.Sorted())
	}

	if _, err := PurgeSheet(context.Background(), env, stylesheet, pagePath, WithCharset("no-such-charset")); err == nil {
		t.Error("Expected error for unknown charset")
	}
}
