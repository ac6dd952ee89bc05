package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	htmlContentType = "text/html; charset=utf-8"
	csrfFieldName   = "csrf_token"
)

// mdRenderer escapes raw HTML in coach replies; WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var funcs = template.FuncMap{
	"markdown": renderMarkdown,
	"deref": func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	},
	"str": func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	},
	"checked": func(v *bool) bool { return v != nil && *v },
	"isUser":  func(role string) bool { return role == "user" },
}

// page is what every template receives
type page struct {
	Title  string
	Active string
	CSRF   template.HTML
	Flash  string
	Data   any
}

// renderer holds one parsed template set per page, each sharing the layout
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		tpl, err := template.New(base).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", base, err)
		}
		r.pages[strings.TrimSuffix(base, ".html")] = tpl
	}
	return r, nil
}

// render executes the named page into a buffer first so a template error
// never leaves a half-written response
func (r *renderer) render(c *gin.Context, status int, name string, p page) error {
	tpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	p.CSRF = csrf.TemplateField(c.Request)

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	c.Data(status, htmlContentType, buf.Bytes())
	return nil
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// inline writes a bare HTML fragment
func inline(c *gin.Context, status int, fragment string) {
	c.Data(status, htmlContentType, []byte(fragment))
}

// plain writes a text/plain body
func plain(c *gin.Context, status int, msg string) {
	c.String(status, msg)
}

func (h *Handler) csrfFailure(w http.ResponseWriter, r *http.Request) {
	h.log.Warn("CSRF check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden - invalid or missing CSRF token", http.StatusForbidden)
}
