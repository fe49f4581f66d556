package main

import (
	"context"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/blob"
	"github.com/sells-group/postcode-lookup/internal/chunkstore"
	"github.com/sells-group/postcode-lookup/internal/config"
	"github.com/sells-group/postcode-lookup/internal/lookup"
	"github.com/sells-group/postcode-lookup/internal/monitoring"
	"github.com/sells-group/postcode-lookup/internal/substation"
)

// sessionEnv holds everything one lookup session needs. The chunk cache lives
// exactly as long as the session.
type sessionEnv struct {
	Service  *lookup.Service
	Registry *prometheus.Registry
	closeSrc func() error
}

// Close releases the blob source.
func (se *sessionEnv) Close() {
	if se.closeSrc != nil {
		if err := se.closeSrc(); err != nil {
			zap.L().Warn("close blob source", zap.Error(err))
		}
	}
}

// initSession opens the configured blob source and loads the substation
// directory. A directory load failure ends the session before it starts.
// Callers should defer env.Close().
func initSession(ctx context.Context, c *config.Config, mode string) (*sessionEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	src, closeSrc, err := blob.Open(sourceOptions(c))
	if err != nil {
		return nil, eris.Wrap(err, "open blob source")
	}

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	src = blob.NewInstrumented(src, metrics)

	dir, err := substation.Load(ctx, src)
	if err != nil {
		_ = closeSrc()
		zap.L().Error("substation directory unavailable", zap.Error(err))
		return nil, eris.Wrap(err, "load substation directory")
	}

	svc := lookup.NewService(chunkstore.New(src, metrics), dir, metrics, lookup.Options{
		FanoutConcurrency: c.Lookup.FanoutConcurrency,
		SuggestLimit:      c.Lookup.SuggestLimit,
		SuggestMinChars:   c.Lookup.SuggestMinChars,
		PageSize:          c.Lookup.PageSize,
	})

	return &sessionEnv{Service: svc, Registry: reg, closeSrc: closeSrc}, nil
}

func sourceOptions(c *config.Config) blob.Options {
	return blob.Options{
		Kind:      c.Source.Kind,
		BaseURL:   c.Source.BaseURL,
		Dir:       c.Source.Dir,
		ZipPath:   c.Source.ZipPath,
		ZipPrefix: c.Source.ZipPrefix,

		BreakerThreshold: c.HTTP.BreakerThreshold,
		BreakerReset:     c.HTTP.BreakerReset(),

		HTTP: blob.HTTPOptions{
			UserAgent:  c.HTTP.UserAgent,
			Timeout:    c.HTTP.Timeout(),
			MaxRetries: c.HTTP.MaxRetries,
			RatePerSec: c.HTTP.RatePerSec,
			Burst:      c.HTTP.Burst,
		},
		S3: blob.S3Options{
			Endpoint:  c.Source.S3.Endpoint,
			Bucket:    c.Source.S3.Bucket,
			Prefix:    c.Source.S3.Prefix,
			AccessKey: c.Source.S3.AccessKey,
			SecretKey: c.Source.S3.SecretKey,
			Region:    c.Source.S3.Region,
			UseSSL:    c.Source.S3.UseSSL,
		},
	}
}

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout
