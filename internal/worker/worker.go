// Package worker implements the pre-forked worker's event loop: each
// Worker owns a private store handle and a private readiness queue, and
// drives every accepted connection itself on a single OS thread with no
// intra-worker concurrency. Workers never share connection state; the
// supervisor is the only thing that coordinates across them.
package worker

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/fricu/fricu-server/internal/apierr"
	"github.com/fricu/fricu-server/internal/connstate"
	"github.com/fricu/fricu-server/internal/httpkv"
	"github.com/fricu/fricu-server/internal/kvstore"
	"github.com/fricu/fricu-server/internal/netpoll"
)

// Worker runs one pre-forked worker's event loop against a shared
// listening socket.
type Worker struct {
	ID       int
	ListenFD int
	DBPath   string
	// MaxFD is the process file-descriptor ceiling. The connection-state
	// slot array is sized to MaxFD+1 and any accepted descriptor
	// numerically above it is rejected outright.
	MaxFD int
	Log   zerolog.Logger

	store kvstore.Store
	disp  *httpkv.Dispatcher
	queue netpoll.Queue
	conns []*connstate.Conn
}

// Run opens the worker's private store handle and readiness queue,
// registers the shared listener, and blocks serving connections. It
// returns only on setup failure; once serving, a failed Wait is logged
// and retried, so the loop does not return.
func (w *Worker) Run() error {
	handle, err := kvstore.Open(w.DBPath)
	if err != nil {
		return fmt.Errorf("worker %d: open store: %w", w.ID, err)
	}
	defer handle.Close()
	w.store = handle
	w.disp = &httpkv.Dispatcher{Store: w.store}

	queue, err := netpoll.New()
	if err != nil {
		return fmt.Errorf("worker %d: create readiness queue: %w", w.ID, err)
	}
	defer queue.Close()
	w.queue = queue

	w.conns = make([]*connstate.Conn, w.MaxFD+1)

	if err := w.queue.Register(w.ListenFD, netpoll.RoleListener); err != nil {
		return fmt.Errorf("worker %d: register listener: %w", w.ID, err)
	}

	events := make([]netpoll.Event, netpoll.MaxEvents)
	for {
		n, err := w.queue.Wait(events)
		if err != nil {
			if netpoll.IsInterrupted(err) {
				continue
			}
			w.Log.Warn().Err(err).Msg("readiness wait failed")
			continue
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			if ev.Fd == w.ListenFD {
				w.acceptAll()
				continue
			}
			if ev.ErrOrHUP {
				w.closeConn(ev.Fd)
				continue
			}
			w.handleReadable(ev.Fd)
		}
	}
}

// acceptAll drains every pending connection off the listener in one pass,
// accepting until the listener reports EAGAIN rather than taking one
// connection per readiness event.
func (w *Worker) acceptAll() {
	for {
		fd, err := acceptNonblocking(w.ListenFD)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			return
		}

		if fd > w.MaxFD {
			unix.Close(fd)
			continue
		}

		if err := tuneClientSocket(fd); err != nil {
			unix.Close(fd)
			continue
		}

		if err := w.queue.Register(fd, netpoll.RoleClient); err != nil {
			unix.Close(fd)
			continue
		}
		w.conns[fd] = connstate.New(fd)
	}
}

// handleReadable drives one connection's recv/parse/respond cycle until it
// either needs more data than is currently available (returns, waiting for
// the next readiness event) or reaches a terminal outcome and is closed.
func (w *Worker) handleReadable(fd int) {
	if fd < 0 || fd > w.MaxFD {
		unix.Close(fd)
		return
	}
	conn := w.conns[fd]
	if conn == nil {
		unix.Close(fd)
		return
	}

	for {
		if conn.Full() && !conn.AtCeiling() {
			if !w.growConn(conn) {
				w.writeAndClose(conn, apierr.ErrOOM.Status, errBody(apierr.ErrOOM.Message))
				return
			}
		}

		n, err := rawRecv(fd, conn.Buf()[conn.Len:conn.Cap()])
		if n > 0 {
			conn.Advance(n)
			if conn.Len >= connstate.MaxCapacity {
				w.writeAndClose(conn, apierr.ErrPayloadTooLarge.Status, errBody(apierr.ErrPayloadTooLarge.Message))
				return
			}

			out := w.disp.Process(conn)
			if out.Result == httpkv.Done {
				w.writeAndClose(conn, out.Status, out.Body)
				return
			}
			continue
		}
		if n == 0 {
			w.closeConn(fd)
			return
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		if err == unix.EINTR {
			continue
		}
		w.closeConn(fd)
		return
	}
}

// growConn doubles conn's buffer and reports false if Grow returns an
// error or panics, in which case the caller replies 500. A genuine Go
// out-of-memory condition is a fatal runtime error that recover() does
// not catch, so it is not reported through this path.
func (w *Worker) growConn(conn *connstate.Conn) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	if err := conn.Grow(); err != nil {
		return false
	}
	return true
}

func (w *Worker) writeAndClose(conn *connstate.Conn, status int, body []byte) {
	httpkv.WriteAll(conn.Fd, httpkv.Build(status, body))
	w.closeConn(conn.Fd)
}

func (w *Worker) closeConn(fd int) {
	w.queue.Unregister(fd)
	if fd >= 0 && fd <= w.MaxFD {
		w.conns[fd] = nil
	}
	unix.Close(fd)
}

func errBody(message string) []byte {
	return []byte(`{"error":"` + message + `"}`)
}
