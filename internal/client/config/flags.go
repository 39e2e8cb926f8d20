package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Only the flags below are
// looked at (see flagx.FilterArgs); anything else in args is ignored.
//
//	-a string   server base URL
//	-s string   store backend: http or s3
//	-t string   bearer access token
//	-l string   message locale (en, ru)
//	-v string   log level
//	-d string   local database path
//	-k string   resource kind
//	-n int      maximum files per selection
//	-m string   address of the metrics and preview endpoint
//	-r int      auto-clear delay in seconds
//	-w int      per-upload timeout in seconds
//
// It panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-l", "-v", "-d", "-k", "-n", "-m", "-r", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.Store, "s", cfg.Store, "store backend (http|s3)")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "bearer access token")
	fs.StringVar(&cfg.Locale, "l", cfg.Locale, "message locale")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	kind := fs.String("k", string(cfg.Kind), "resource kind")
	fs.IntVar(&cfg.MaxFiles, "n", cfg.MaxFiles, "maximum files per selection")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics and preview listen address")
	autoClear := fs.Int("r", int(cfg.AutoClearDelay.Seconds()), "auto-clear delay (in seconds)")
	timeout := fs.Int("w", int(cfg.UploadTimeout.Seconds()), "per-upload timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	k, err := models.ParseResourceKind(*kind)
	if err != nil {
		panic(err)
	}
	cfg.Kind = k

	// Second-granularity flags only replace durations when given, so a
	// sub-second value from the JSON file survives.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			cfg.AutoClearDelay = time.Duration(*autoClear) * time.Second
		case "w":
			cfg.UploadTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
