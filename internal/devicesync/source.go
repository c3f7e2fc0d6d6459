package devicesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// Snapshot is one delivery from a Source. Exactly one of Config and Err is set.
type Snapshot struct {
	Config   *moduleconfig.ModuleConfig
	Source   string
	Received time.Time
	Err      error
}

// Source produces remote configuration snapshots.
type Source interface {
	// Name identifies the source kind in logs and metrics ("file", "bridge").
	Name() string

	// Run delivers snapshots to emit until ctx is done. emit is called from
	// the Run goroutine.
	Run(ctx context.Context, emit func(Snapshot)) error
}

// ErrNoSnapshot is returned by First when the source stopped without
// delivering a configuration.
var ErrNoSnapshot = errors.New("no snapshot received")

// First runs src until it delivers its first successful snapshot or a
// non-retryable failure, then stops it. Retryable failures are waited out
// until parent is done.
func First(parent context.Context, src Source) (*moduleconfig.ModuleConfig, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		config    *moduleconfig.ModuleConfig
		fatal     error
		transient error
	)
	runErr := src.Run(ctx, func(s Snapshot) {
		if config != nil || fatal != nil {
			return
		}
		if s.Err != nil {
			if IsRetryable(s.Err) {
				transient = s.Err
				return
			}
			fatal = s.Err
			cancel()
			return
		}
		config = s.Config
		cancel()
	})

	switch {
	case config != nil:
		return config, nil
	case fatal != nil:
		return nil, fatal
	case parent.Err() != nil && transient != nil:
		return nil, fmt.Errorf("%w (last error: %v)", parent.Err(), transient)
	case parent.Err() != nil:
		return nil, parent.Err()
	case runErr != nil:
		return nil, runErr
	default:
		return nil, ErrNoSnapshot
	}
}
