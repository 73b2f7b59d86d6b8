package cmd

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/user/pricepulse-web/internal/entity"
	"github.com/user/pricepulse-web/internal/view"
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func renderProduct(w io.Writer, p *entity.Product) {
	if p == nil {
		return
	}
	t := newTable(w, table.Row{"ID", "Name", "Current Price", "Platform", "URL"})
	t.AppendRow(table.Row{p.ID, p.Name, view.FormatPrice(p.CurrentPrice), p.Platform, p.URL})
	t.Render()
}

func renderProducts(w io.Writer, products []entity.Product) {
	t := newTable(w, table.Row{"ID", "Name", "Current Price", "Platform"})
	for _, p := range products {
		t.AppendRow(table.Row{p.ID, p.Name, view.FormatPrice(p.CurrentPrice), p.Platform})
	}
	t.Render()
}

func renderHistory(w io.Writer, history []entity.PriceHistoryEntry, loc *time.Location) {
	if len(history) == 0 {
		return
	}
	t := newTable(w, table.Row{"Time", "Price"})
	for _, e := range history {
		t.AppendRow(table.Row{e.Timestamp.In(loc).Format(view.ChartTimeLayout), view.FormatPrice(e.Price)})
	}
	t.Render()
}

func renderComparisons(w io.Writer, entries []entity.ComparisonEntry) {
	if len(entries) == 0 {
		return
	}
	t := newTable(w, table.Row{"Platform", "Price", "Link"})
	for _, e := range entries {
		link := view.ComparisonLink(e.URL)
		if link == "" {
			link = view.NoLink
		}
		t.AppendRow(table.Row{e.Platform, view.ComparisonPrice(e.Price), link})
	}
	t.Render()
}

func renderAlerts(w io.Writer, alerts []entity.AlertRecord, loc *time.Location) {
	t := newTable(w, table.Row{"ID", "Email", "Target Price", "Status", "Created"})
	for _, a := range alerts {
		t.AppendRow(table.Row{a.ID, a.Email, view.FormatPrice(a.TargetPrice), alertRecordStatus(a), a.DateCreated.In(loc).Format(view.ChartTimeLayout)})
	}
	t.Render()
}

func alertRecordStatus(a entity.AlertRecord) string {
	switch {
	case a.IsTriggered:
		return string(entity.AlertSent)
	case a.IsActive:
		return string(entity.AlertScheduled)
	default:
		return "inactive"
	}
}

func renderAlertStatus(w io.Writer, status entity.AlertStatus) {
	if msg := view.AlertMessage(status); msg != "" {
		_, _ = io.WriteString(w, msg+"\n")
	}
}
