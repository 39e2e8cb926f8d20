package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/flagx"
	"github.com/dmitrijs2005/gophupload/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent fields keep
// the value they had before the file was read.
type JsonConfig struct {
	ServerURL         *string         `json:"server_url"`
	Store             *string         `json:"store"`
	AccessToken       *string         `json:"access_token"`
	Locale            *string         `json:"locale"`
	LogLevel          *string         `json:"log_level"`
	DatabasePath      *string         `json:"database_path"`
	Kind              *string         `json:"kind"`
	MaxFiles          *int            `json:"max_files"`
	MaxFileSizeBytes  *int64          `json:"max_file_size"`
	MaxTotalSizeBytes *int64          `json:"max_total_size"`
	AutoClearDelay    *timex.Duration `json:"auto_clear_delay"`
	UploadTimeout     *timex.Duration `json:"upload_timeout"`
	MetricsAddr       *string         `json:"metrics_addr"`
	S3                *JsonS3         `json:"s3"`
}

type JsonS3 struct {
	Endpoint string `json:"endpoint"`
	Region   string `json:"region"`
	Bucket   string `json:"bucket"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// parseJson overlays cfg with the file named by -c or -config in args. It
// does nothing when neither flag is present and panics when the file cannot
// be read or decoded.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.Store, jc.Store)
	setString(&cfg.AccessToken, jc.AccessToken)
	setString(&cfg.Locale, jc.Locale)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	if jc.Kind != nil {
		kind, err := models.ParseResourceKind(*jc.Kind)
		if err != nil {
			panic(err)
		}
		cfg.Kind = kind
	}
	if jc.MaxFiles != nil {
		cfg.MaxFiles = *jc.MaxFiles
	}
	if jc.MaxFileSizeBytes != nil {
		cfg.MaxFileSizeBytes = *jc.MaxFileSizeBytes
	}
	if jc.MaxTotalSizeBytes != nil {
		cfg.MaxTotalSizeBytes = *jc.MaxTotalSizeBytes
	}
	if jc.AutoClearDelay != nil {
		cfg.AutoClearDelay = jc.AutoClearDelay.Duration
	}
	if jc.UploadTimeout != nil {
		cfg.UploadTimeout = jc.UploadTimeout.Duration
	}
	if jc.S3 != nil {
		cfg.S3 = S3{
			Endpoint: jc.S3.Endpoint,
			Region:   jc.S3.Region,
			Bucket:   jc.S3.Bucket,
			User:     jc.S3.User,
			Password: jc.S3.Password,
		}
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
