package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/vocabadmin/internal/vocab"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	pageLogin      = "login"
	pageHome       = "home"
	pageCategories = "categories"
	pageWords      = "words"
	pageInvite     = "invite"
)

var funcs = template.FuncMap{
	"wordsURL": wordsURL,
}

// page is the data every template receives.
type page struct {
	Title         string
	Authenticated bool
	CSRF          string
	Data          any
}

// renderer renders one layout-wrapped template set per page.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageLogin, pageHome, pageCategories, pageWords, pageInvite} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// wordsURL links a category to its word list, carrying the display name as
// navigation state.
func wordsURL(id vocab.ID, name string) string {
	u := "/categories/" + url.PathEscape(id.String()) + "/words"
	if name != "" {
		u += "?" + url.Values{"name": {name}}.Encode()
	}
	return u
}
