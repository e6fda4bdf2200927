package models

const (
	StatusPending = "pending"
	StatusDeposit = "deposit"
	StatusPaid    = "paid"
)

// StatusLabel maps a payment status to its display label for reports.
func StatusLabel(status string) string {
	switch status {
	case StatusPaid:
		return "Pagado"
	case StatusDeposit:
		return "Señado"
	default:
		return "Pendiente"
	}
}

// ValidStatus reports whether s is one of the known payment states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusDeposit, StatusPaid:
		return true
	}
	return false
}

const (
	// DefaultHTTPPort port for the UI-facing API
	DefaultHTTPPort = 8080

	// DefaultPrometheusPort for the metrics endpoint
	DefaultPrometheusPort = 9090

	// DefaultRateLimitRPS requests per second per client on the HTTP API
	DefaultRateLimitRPS = 10

	// DefaultRateLimitBurst burst size for the HTTP limiter
	DefaultRateLimitBurst = 20
)
