package blob

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/postcode-lookup/internal/resilience"
)

// Source kinds accepted by Open.
const (
	KindHTTP = "http"
	KindDir  = "dir"
	KindZip  = "zip"
	KindS3   = "s3"
)

// Options selects and configures a Source backend.
type Options struct {
	Kind      string
	BaseURL   string
	Dir       string
	ZipPath   string
	ZipPrefix string
	HTTP      HTTPOptions
	S3        S3Options

	// BreakerThreshold guards the remote kinds (http, s3) with a circuit
	// breaker after this many consecutive failures. Zero disables it.
	BreakerThreshold int
	BreakerReset     time.Duration
}

// Open builds the Source described by opts. The returned close function
// releases backend resources and is always non-nil.
func Open(opts Options) (Source, func() error, error) {
	noop := func() error { return nil }

	switch opts.Kind {
	case KindHTTP, "":
		if opts.BaseURL == "" {
			return nil, noop, eris.New("blob: http source requires a base url")
		}
		return opts.guard(NewHTTPSource(opts.BaseURL, opts.HTTP)), noop, nil
	case KindDir:
		if opts.Dir == "" {
			return nil, noop, eris.New("blob: dir source requires a directory")
		}
		return NewDirSource(opts.Dir), noop, nil
	case KindZip:
		src, err := OpenZipSource(opts.ZipPath, opts.ZipPrefix)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil
	case KindS3:
		src, err := NewS3Source(opts.S3)
		if err != nil {
			return nil, noop, err
		}
		return opts.guard(src), noop, nil
	default:
		return nil, noop, eris.Errorf("blob: unknown source kind %q", opts.Kind)
	}
}

func (o Options) guard(src Source) Source {
	if o.BreakerThreshold <= 0 {
		return src
	}
	return NewGuarded(src, o.BreakerThreshold, resilience.Config{ResetTimeout: o.BreakerReset})
}
