// Package view assembles the HTML template sets used by the handlers.
package view

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"blogicum/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// Views lists every page a handler may render, relative to views/.
var Views = []string{
	"blog/index.html",
	"blog/category.html",
	"blog/detail.html",
	"blog/create.html",
	"blog/comment.html",
	"blog/profile.html",
	"blog/user.html",
	"auth/login.html",
	"auth/registration.html",
	"pages/403csrf.html",
	"pages/404.html",
	"pages/500.html",
}

// FuncMap returns the template helpers. Dates are shown in loc.
func FuncMap(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"date": func(t time.Time) string {
			return t.In(loc).Format("2 January 2006, 15:04")
		},
		"isoDate": func(t time.Time) string {
			return t.In(loc).Format(time.RFC3339)
		},
		"excerpt": func(text string, n int) string {
			return utils.Excerpt(utils.RenderMarkdown(text), n)
		},
		"isChosen": func(id uint, value string) bool {
			return fmt.Sprint(id) == value
		},
	}
}

// Load builds one template set per view: the layout, every include and
// the view itself, registered under the view's path.
func Load(templatesDir string, loc *time.Location) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts found in %s", templatesDir)
	}

	includes, err := filepath.Glob(filepath.Join(templatesDir, "includes", "*.html"))
	if err != nil {
		return nil, err
	}

	funcMap := FuncMap(loc)
	for _, view := range Views {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, filepath.Join(templatesDir, "views", view))

		tmpl, err := template.New(filepath.Base(files[0])).Funcs(funcMap).ParseFiles(files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", view, err)
		}
		r.Add(view, tmpl)
	}

	return r, nil
}
