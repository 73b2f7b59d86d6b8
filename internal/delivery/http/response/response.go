package response

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`     // "ok" or "degraded"
	ViewState string `json:"view_state"` // "healthy" or "unhealthy"
}

type ErrorResponse struct {
	Error string `json:"error"`
}
