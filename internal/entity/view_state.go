package entity

// FlowState is the state of the Home page's track flow.
type FlowState string

const (
	FlowIdle    FlowState = "idle"
	FlowLoading FlowState = "loading"
	FlowLoaded  FlowState = "loaded"
	FlowError   FlowState = "error"
)

// HomeView is the short-lived view state owned by the Home page controller.
// It is kept per browser session and discarded once the session expires.
type HomeView struct {
	State       FlowState           `json:"state"`
	Product     *Product            `json:"product,omitempty"`
	History     []PriceHistoryEntry `json:"history,omitempty"`
	Comparisons []ComparisonEntry   `json:"comparisons,omitempty"`
	AlertStatus AlertStatus         `json:"alert_status,omitempty"`
	Notice      string              `json:"notice,omitempty"`
	Generation  uint64              `json:"generation"`
}

// IdleView is the view of a session that has not tracked anything yet.
func IdleView() HomeView {
	return HomeView{State: FlowIdle}
}

// Reset clears everything derived from the backend, keeping the generation.
func (v *HomeView) Reset() {
	v.Product = nil
	v.History = nil
	v.Comparisons = nil
	v.AlertStatus = AlertNone
}

// ProductView is what the ProductDetail page renders for one identifier.
type ProductView struct {
	Product     *Product
	History     []PriceHistoryEntry
	Comparisons []ComparisonEntry
	AlertStatus AlertStatus
}
