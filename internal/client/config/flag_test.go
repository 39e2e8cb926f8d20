package config

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		want        func(*Config)
		expectPanic bool
	}{
		{
			name: "overrides",
			args: []string{"-a", "https://api.example.com", "-k", "certification_document", "-n", "4", "-r", "5", "-w", "30", "-l", "ru"},
			want: func(c *Config) {
				c.ServerURL = "https://api.example.com"
				c.Kind = models.KindCertificationDocument
				c.MaxFiles = 4
				c.AutoClearDelay = 5 * time.Second
				c.UploadTimeout = 30 * time.Second
				c.Locale = "ru"
			},
		},
		{
			name: "unrelated flags ignored",
			args: []string{"-c", "cfg.json", "-x", "1"},
			want: func(*Config) {},
		},
		{name: "bad number", args: []string{"-n", "many"}, expectPanic: true},
		{name: "bad kind", args: []string{"-k", "avatar"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}

			want := &Config{}
			want.LoadDefaults()
			tt.want(want)

			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestParseFlags_KeepsSubSecondDurationsWhenAbsent(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.AutoClearDelay = 1500 * time.Millisecond

	parseFlags(cfg, []string{"-n", "2"})

	assert.Equal(t, 1500*time.Millisecond, cfg.AutoClearDelay)
}
