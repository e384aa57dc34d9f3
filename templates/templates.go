// Package templates renders the local UI pages. Every page is layout.html
// plus one content template.
package templates

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path"
	"time"

	"tripmate/models"
)

//go:embed html/*.html
var files embed.FS

const layoutFile = "layout.html"

// Page is what every template receives.
type Page struct {
	Title         string
	User          models.User
	Authenticated bool
	Flash         string
	Error         string
	Data          any
}

var funcs = template.FuncMap{
	"formatDate": FormatDate,
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}

var pages = mustParse()

func mustParse() map[string]*template.Template {
	layout := template.Must(template.New(layoutFile).Funcs(funcs).ParseFS(files, "html/"+layoutFile))
	names, err := fs.Glob(files, "html/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		base := path.Base(name)
		if base == layoutFile {
			continue
		}
		t := template.Must(layout.Clone())
		out[base] = template.Must(t.ParseFS(files, name))
	}
	return out
}

// Render writes page name with status. The page is rendered to a buffer first
// so a template error never leaves half a page behind.
func Render(w http.ResponseWriter, status int, name string, p Page) {
	t, ok := pages[name]
	if !ok {
		log.Printf("template %s not found", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// FormatDate renders a trip date as "June 1, 2025", or returns it unchanged
// when it cannot be read.
func FormatDate(s string) string {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("January 2, 2006")
}
