package view

import (
	"fmt"
	"time"

	"github.com/user/pricepulse-web/internal/entity"
)

// Placeholders shown in comparison rows for a platform without a match.
const (
	PriceNotAvailable = "Not Available"
	NoLink            = "—"
)

// ChartTimeLayout formats price history labels.
const ChartTimeLayout = "02 Jan 2006, 15:04"

// FormatPrice renders a whole-rupee amount.
func FormatPrice(price int64) string {
	return fmt.Sprintf("₹%d", price)
}

// ComparisonPrice renders a comparison price or the placeholder when absent.
func ComparisonPrice(price *int64) string {
	if price == nil {
		return PriceNotAvailable
	}
	return FormatPrice(*price)
}

// ComparisonLink returns the link target, or "" when there is none.
func ComparisonLink(link *string) string {
	if link == nil {
		return ""
	}
	return *link
}

// AlertMessage is the user-facing text of an alert status.
func AlertMessage(status entity.AlertStatus) string {
	switch status {
	case entity.AlertScheduled:
		return "Alert scheduled! We'll email you when the price drops."
	case entity.AlertSent:
		return "Alert sent! Check your inbox."
	default:
		return ""
	}
}

// ChartDataset is one series of a Chart.js line chart.
type ChartDataset struct {
	Label string  `json:"label"`
	Data  []int64 `json:"data"`
}

// ChartData is the Chart.js "data" object for the price history chart.
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// NewChartData builds a single price series, keeping the order of history.
func NewChartData(history []entity.PriceHistoryEntry, loc *time.Location) ChartData {
	if loc == nil {
		loc = time.Local
	}
	labels := make([]string, 0, len(history))
	prices := make([]int64, 0, len(history))
	for _, e := range history {
		labels = append(labels, e.Timestamp.In(loc).Format(ChartTimeLayout))
		prices = append(prices, e.Price)
	}
	return ChartData{
		Labels:   labels,
		Datasets: []ChartDataset{{Label: "Price (₹)", Data: prices}},
	}
}
