package supervisor

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/fricu/fricu-server/internal/logging"
	"github.com/fricu/fricu-server/internal/worker"
)

// Pool is the pre-forked worker pool: every worker accepts off the same
// ListenFD and runs its own independent readiness-driven event loop on a
// dedicated OS thread, sharing nothing with its siblings beyond the
// listener and the on-disk store.
type Pool struct {
	Workers  int
	ListenFD int
	DBPath   string

	// MaxFD is the process file-descriptor ceiling (from TuneFDLimit),
	// passed to every worker so it can size its connection-state slot
	// array to match instead of guessing at a constant.
	MaxFD int
}

// Run starts every worker and blocks until all of them have exited, then
// returns the first non-nil worker error. A failing worker does not stop
// its siblings. fricu-server has no coordinated
// shutdown path: workers run until the process receives a terminating
// signal, matching the pre-forked model's one-loop-per-thread design.
func (p *Pool) Run() error {
	g := new(errgroup.Group)

	for i := 0; i < p.Workers; i++ {
		id := i
		g.Go(func() error {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			w := &worker.Worker{
				ID:       id,
				ListenFD: p.ListenFD,
				DBPath:   p.DBPath,
				MaxFD:    p.MaxFD,
				Log:      logging.WithWorker(id),
			}
			if err := w.Run(); err != nil {
				return fmt.Errorf("worker %d: %w", id, err)
			}
			return nil
		})
	}

	return g.Wait()
}
