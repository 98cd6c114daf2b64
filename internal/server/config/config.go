// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the account server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing session cookies (HS256).
//   - HMACKey: key for signed reset and signup links.
//   - SessionValidityDuration / LinkValidityDuration: lifetimes.
//   - RedisAddr / RedisPassword: session store. Empty address selects memory.
//   - BaseURL: public origin used to build links in emails.
//   - SMTPAddr / SMTPUser / SMTPPassword / MailFrom: outgoing mail. Empty
//     address logs messages instead of sending them.
//   - PlatformName: product name used in email subjects and bodies.
//   - AnonymizedEmailDomain: domain for placeholder addresses of deactivated users.
//
// Do not use the default secrets in production.
type Config struct {
	EndpointAddrHTTP        string
	DatabaseDSN             string
	SecretKey               string
	HMACKey                 string
	SessionValidityDuration time.Duration
	LinkValidityDuration    time.Duration
	RedisAddr               string
	RedisPassword           string
	BaseURL                 string
	SMTPAddr                string
	SMTPUser                string
	SMTPPassword            string
	MailFrom                string
	PlatformName            string
	AnonymizedEmailDomain   string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.HMACKey = "hmacKey"
	c.SessionValidityDuration = 12 * time.Hour
	c.LinkValidityDuration = 24 * time.Hour
	c.RedisAddr = ""
	c.BaseURL = "http://localhost:8080"
	c.MailFrom = "noreply@localhost"
	c.PlatformName = "Gatekeeper"
	c.AnonymizedEmailDomain = "gatekeeper.invalid"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
