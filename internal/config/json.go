package config

import (
	"encoding/json"
	"os"

	"github.com/hippostore/hippo/internal/flagx"
	"github.com/hippostore/hippo/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It
// relies on timex.Duration so JSON can specify delays either as strings
// like "500ms" or as integer nanoseconds. Pointer fields distinguish
// "absent" from "zero" so the file only overrides what it sets.
type JsonConfig struct {
	ServerBaseURL    *string         `json:"server_base_url"`
	ClientOwnerID    *string         `json:"client_owner_id"`
	URLScheme        *string         `json:"url_scheme"`
	DataDir          *string         `json:"data_dir"`
	DatabaseDSN      *string         `json:"database_dsn"`
	StoreEngine      *string         `json:"store_engine"`
	Cipher           *string         `json:"cipher"`
	UploadWorkers    *int            `json:"upload_workers"`
	UploadMaxRetries *uint64         `json:"upload_max_retries"`
	UploadBaseDelay  *timex.Duration `json:"upload_base_delay"`
}

// parseJson overlays Config with values loaded from a JSON file whose
// path comes from the -c/-config flags. Absent file means no overlay.
// Read or unmarshal errors panic; the config layer runs before anything
// worth cleaning up exists.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	applyJson(cfg, &jc)
}

func applyJson(cfg *Config, jc *JsonConfig) {
	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.ClientOwnerID != nil {
		cfg.ClientOwnerID = *jc.ClientOwnerID
	}
	if jc.URLScheme != nil {
		cfg.URLScheme = *jc.URLScheme
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.StoreEngine != nil {
		cfg.StoreEngine = *jc.StoreEngine
	}
	if jc.Cipher != nil {
		cfg.Cipher = *jc.Cipher
	}
	if jc.UploadWorkers != nil {
		cfg.UploadWorkers = *jc.UploadWorkers
	}
	if jc.UploadMaxRetries != nil {
		cfg.UploadMaxRetries = *jc.UploadMaxRetries
	}
	if jc.UploadBaseDelay != nil {
		cfg.UploadBaseDelay = jc.UploadBaseDelay.Duration
	}
}
