package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	// json serializes map data into the page for the client-side map script.
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return template.JS(b), nil
	},
}

// Renderer is the echo.Renderer for the server-rendered views. Every page
// template is parsed together with the shared layout; the page supplies the
// "content" block.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	layout, err := fs.ReadFile(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	err = fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == "templates/layout.html" {
			return nil
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(string(layout))
		if err != nil {
			return fmt.Errorf("parse layout for %s: %w", name, err)
		}
		page, err := fs.ReadFile(templatesFS, path)
		if err != nil {
			return err
		}
		if _, err := tmpl.Parse(string(page)); err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Renderer{pages: pages}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	viewData := echo.Map{}
	if m, ok := data.(echo.Map); ok {
		for k, v := range m {
			viewData[k] = v
		}
	} else if data != nil {
		viewData["Data"] = data
	}

	// Flashes are drained exactly once, at render time.
	viewData["Flashes"] = PopFlashes(c)
	if user, ok := CurrentUser(c); ok {
		viewData["CurrentUser"] = user
	}

	return tmpl.ExecuteTemplate(w, "layout", viewData)
}
