package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/client/orchestrator"
	"github.com/dmitrijs2005/gophupload/internal/client/validation"
	"github.com/dmitrijs2005/gophupload/internal/common"
)

// Store backends.
const (
	StoreHTTP = "http"
	StoreS3   = "s3"
)

// S3 holds object storage settings used when Store is "s3".
type S3 struct {
	Endpoint string
	Region   string
	Bucket   string
	User     string
	Password string
}

// Config holds runtime settings of the upload client.
type Config struct {
	ServerURL   string
	Store       string
	AccessToken string
	Locale      string
	LogLevel    string

	DatabasePath string
	Kind         models.ResourceKind

	MaxFiles          int
	MaxFileSizeBytes  int64
	MaxTotalSizeBytes int64

	AutoClearDelay time.Duration
	UploadTimeout  time.Duration

	// MetricsAddr enables the /metrics and preview endpoint when set.
	MetricsAddr string

	S3 S3
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000/api"
	c.Store = StoreHTTP
	c.Locale = "en"
	c.LogLevel = "info"
	c.DatabasePath = "data/attachments.db"
	c.Kind = models.KindProjectAttachment
	c.MaxFiles = validation.DefaultMaxFiles
	c.MaxFileSizeBytes = validation.MaxFileSize
	c.MaxTotalSizeBytes = validation.MaxTotalSize
	c.AutoClearDelay = common.DefaultAutoClearDelay
	c.UploadTimeout = orchestrator.DefaultUploadTimeout
	c.S3 = S3{Region: "us-east-1", Bucket: "attachments"}
}

// BatchOptions returns the selection limits configured in c.
func (c *Config) BatchOptions() validation.BatchOptions {
	opts := validation.DefaultBatchOptions()
	opts.MaxFiles = c.MaxFiles
	opts.MaxTotalSizeBytes = c.MaxTotalSizeBytes
	opts.MaxSizeBytes = c.MaxFileSizeBytes
	if c.Kind == models.KindPortfolioImage {
		opts.Categories = []validation.Category{validation.CategoryImages}
	}
	return opts
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// command-line flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
