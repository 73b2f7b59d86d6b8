// Package view renders the PricePulse pages and their components as HTML.
//
// Components are pure functions of their input and render nothing when that
// input is absent or empty.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"time"

	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/internal/form"
	"github.com/user/pricepulse-web/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded stylesheet and scripts, rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// HomePage is everything the home page renders.
type HomePage struct {
	View        entity.HomeView
	ProductForm form.ProductForm
	AlertForm   form.AlertForm
}

// ProductPage is everything the product detail page renders.
type ProductPage struct {
	ProductID string
	View      entity.ProductView
	AlertForm form.AlertForm
}

type alertFormData struct {
	Action string
	Form   form.AlertForm
}

type Renderer struct {
	tmpl      *template.Template
	imageBase *url.URL
	loc       *time.Location
}

// NewRenderer parses the embedded templates. Relative product images are
// resolved against imageBase, chart labels are shown in loc.
func NewRenderer(imageBase *url.URL, loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	r := &Renderer{imageBase: imageBase, loc: loc}

	tmpl, err := template.New("pricepulse").Funcs(template.FuncMap{
		"price":           FormatPrice,
		"comparisonPrice": ComparisonPrice,
		"comparisonLink":  ComparisonLink,
		"alertMessage":    AlertMessage,
		"noLink":          func() string { return NoLink },
		"image":           func(ref string) string { return utils.ResolveImage(r.imageBase, ref) },
		"chart":           func(h []entity.PriceHistoryEntry) ChartData { return NewChartData(h, r.loc) },
		"productPath":     func(id string) string { return utils.JoinPath("products", id) },
		"alertForm": func(action string, f form.AlertForm) alertFormData {
			return alertFormData{Action: action, Form: f}
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Home renders the home page.
func (r *Renderer) Home(w io.Writer, page HomePage) error {
	return r.execute(w, "home", page)
}

// Product renders the product detail page. A view without a product renders
// the empty page.
func (r *Renderer) Product(w io.Writer, page ProductPage) error {
	return r.execute(w, "product", page)
}

func (r *Renderer) ProductCard(w io.Writer, p *entity.Product) error {
	if p == nil {
		return nil
	}
	return r.execute(w, "product_card", p)
}

func (r *Renderer) PriceHistoryChart(w io.Writer, history []entity.PriceHistoryEntry) error {
	if len(history) == 0 {
		return nil
	}
	return r.execute(w, "price_history_chart", history)
}

func (r *Renderer) ComparisonTable(w io.Writer, entries []entity.ComparisonEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.execute(w, "comparison_table", entries)
}

func (r *Renderer) AlertStatus(w io.Writer, status entity.AlertStatus) error {
	if AlertMessage(status) == "" {
		return nil
	}
	return r.execute(w, "alert_status", status)
}

// execute buffers the output so a failing template never writes half a page.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
