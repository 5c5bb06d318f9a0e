// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Store backends selectable with store_type.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; ports, TLS and logging
// belong to CoreConfig.
type AppConfig struct {
	// Storage backend: "mongo" or "memory" (single-process development)
	StoreType string

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie carrying the acting student
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: projecthub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Invitation links
	InviteKey   string        // Signing key for invitation tokens
	InviteTTL   time.Duration // How long an invitation stays open
	InviteSweep time.Duration // How often expired invitations are dropped
	AcceptLimit int           // Redemption attempts per student per minute

	// Email/SMTP configuration. A blank host logs invitation links instead.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Base URL for invitation links (e.g., https://hub.example.edu)
	BaseURL string

	// Lifecycle engine
	OpTimeout    time.Duration // bound on each lifecycle operation
	SearchLimit  int
	SearchTries  int
	NotifyBuffer int

	// Audit logging: "all" (db+log), "db", "log" or "off"
	AuditLog string
}
