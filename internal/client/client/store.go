package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophupload/internal/client/config"
	"github.com/dmitrijs2005/gophupload/internal/client/remote"
)

// NewStore builds the remote store selected by cfg.Store.
func NewStore(ctx context.Context, cfg *config.Config) (remote.Store, error) {
	switch cfg.Store {
	case config.StoreHTTP, "":
		var opts []remote.HTTPOption
		if cfg.AccessToken != "" {
			opts = append(opts, remote.WithAccessToken(cfg.AccessToken))
		}
		return remote.NewHTTPStore(cfg.ServerURL, opts...), nil
	case config.StoreS3:
		return remote.NewS3Store(ctx, remote.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.User,
			SecretKey: cfg.S3.Password,
		})
	default:
		return nil, fmt.Errorf("store %q: %w", cfg.Store, ErrUnknownStore)
	}
}
