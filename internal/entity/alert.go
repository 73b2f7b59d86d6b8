package entity

import "time"

// AlertStatus is the transient alert indicator shown on a page.
type AlertStatus string

const (
	AlertNone      AlertStatus = ""
	AlertScheduled AlertStatus = "scheduled"
	AlertSent      AlertStatus = "sent"
)

// AlertRequest is the payload for POST /alerts/.
type AlertRequest struct {
	ProductID   string  `json:"product_id"`
	Email       string  `json:"email"`
	TargetPrice float64 `json:"target_price"`
}

// AlertCreated is what the backend answers to a new alert. The body is
// optional from the front-end's point of view; only the status code matters.
type AlertCreated struct {
	AlertID string `json:"alert_id"`
	Status  string `json:"status"`
}

// AlertRecord mirrors the backend's alert listing.
type AlertRecord struct {
	ID            string     `json:"alert_id"`
	ProductID     string     `json:"product_id"`
	Email         string     `json:"email"`
	TargetPrice   int64      `json:"target_price"`
	IsActive      bool       `json:"is_active"`
	IsTriggered   bool       `json:"is_triggered"`
	DateCreated   time.Time  `json:"date_created"`
	DateTriggered *time.Time `json:"date_triggered,omitempty"`
}

// User is the account record returned by POST /users/register.
type User struct {
	ID             string    `json:"user_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	DateRegistered time.Time `json:"date_registered"`
}

// Token is the bearer token returned by POST /users/login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
