package async

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/utils/errutil"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from the request context.
// The logger of ctx is preserved, the job is bounded by timeout (no bound when timeout <= 0)
// and panics are recovered. The returned channel is closed when the job finishes.
func Dispatch(ctx context.Context, name string, timeout time.Duration, handler func(ctx context.Context) error) <-chan struct{} {
	bgCtx := logging.With(context.Background(), logging.From(ctx).With("job", name))
	done := make(chan struct{})

	go func() {
		defer close(done)

		jobCtx := bgCtx
		if timeout > 0 {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(bgCtx, timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(jobCtx, goerr.New("panic in async job", goerr.V("panic", r)), "async job panicked")
			}
		}()

		if err := handler(jobCtx); err != nil {
			_ = errutil.Handle(jobCtx, err, "async job failed")
		}
	}()

	return done
}
