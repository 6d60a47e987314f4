// Package config holds runtime settings for the Hippo client and loads
// them in layers: defaults, then a JSON file, then command-line flags.
// Later sources take precedence over earlier ones.
package config

import "time"

type Config struct {
	// ServerBaseURL is the base URL of the credential-exchange service.
	ServerBaseURL string
	// ClientOwnerID identifies this client to the service; sent as
	// client_reference_owner in the credential exchange.
	ClientOwnerID string
	// URLScheme is the opaque reference scheme handed out by Save.
	URLScheme string
	// DataDir is where local ciphertext files live until upload.
	DataDir string
	// DatabaseDSN is the SQLite DSN for the record store.
	DatabaseDSN string
	// StoreEngine selects the record store backend: "sqlite" or "bbolt".
	StoreEngine string
	// Cipher selects the AEAD scheme: "chachapoly" or "aesgcm".
	Cipher string
	// UploadWorkers bounds upload concurrency.
	UploadWorkers int
	// UploadMaxRetries bounds retries of transient upload failures.
	UploadMaxRetries uint64
	// UploadBaseDelay is the initial exponential backoff delay.
	UploadBaseDelay time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.ClientOwnerID = ""
	c.URLScheme = "hippo"
	c.DataDir = "hippo-objects"
	c.DatabaseDSN = "hippo.db"
	c.StoreEngine = "sqlite"
	c.Cipher = "chachapoly"
	c.UploadWorkers = 2
	c.UploadMaxRetries = 3
	c.UploadBaseDelay = 500 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
