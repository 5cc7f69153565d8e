package config

// Dashboard configures the admin UI. APIURL points at the catalog API it drives.
type Dashboard struct {
	Port         uint32 `env:"DASHBOARD_PORT" envDefault:"3000"`
	APIURL       string `env:"DASHBOARD_API_URL" envDefault:"http://localhost:8000"`
	SessionKey   string `env:"DASHBOARD_SESSION_KEY" envDefault:"change-me-dashboard-session-key!"`
	SecureCookie bool   `env:"DASHBOARD_SECURE_COOKIE" envDefault:"false"`
	Timeouts     ServerTimeouts
}
