// Package view はサーバーサイドHTMLレンダリングを提供する。
// ビュー名とデータオブジェクトを受け取りHTML文書を生成する。
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

// layoutFile は全ページ共通のレイアウトテンプレート。
const layoutFile = "templates/layout.html"

// Renderer はビュー名ごとにパース済みテンプレートを保持する。
// パースは起動時に1回のみ行い、以降はスレッドセーフに実行できる。
type Renderer struct {
	templates map[string]*template.Template
}

// funcMap はテンプレートから使用するヘルパー関数。
var funcMap = template.FuncMap{
	// formatTime は表示用の日時フォーマットを返す。
	"formatTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	// releaseYear はUnix秒から発売年を返す。ゼロ値は未定として扱う。
	"releaseYear": func(unix int64) string {
		if unix == 0 {
			return "TBD"
		}
		return time.Unix(unix, 0).UTC().Format("2006")
	},
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
}

// NewRenderer は埋め込みテンプレートをパースしてRendererを生成する。
// layout.html以外の各テンプレートがビュー名（拡張子なしのファイル名）になる。
func NewRenderer() (*Renderer, error) {
	entries, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, entry := range entries {
		if entry == layoutFile {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(entry), ".html")
		tmpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templatesFS, layoutFile, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", entry, err)
		}
		templates[name] = tmpl
	}

	return &Renderer{templates: templates}, nil
}

// Render は指定ビューをデータとともにレンダリングする。
// 未知のビュー名はエラーを返す。
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown view: %s", name)
	}
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render view %s: %w", name, err)
	}
	return nil
}
