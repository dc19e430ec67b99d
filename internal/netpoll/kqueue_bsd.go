//go:build darwin || freebsd || netbsd || openbsd

package netpoll

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// kqueueQueue backs Queue with a kqueue instance, using EVFILT_READ for
// both listener and client roles; clients additionally get EV_EOF
// reported back as the error/hangup flag (kqueue has no separate
// peer-hangup filter the way epoll has EPOLLRDHUP — EV_EOF on a read
// event already means the same thing).
type kqueueQueue struct {
	kq int
}

// New returns a kqueue-backed Queue.
func New() (Queue, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue: %w", err)
	}
	return &kqueueQueue{kq: kq}, nil
}

func (q *kqueueQueue) Register(fd int, role Role) error {
	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_ENABLE,
	}
	if _, err := unix.Kevent(q.kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		return fmt.Errorf("kevent add fd=%d: %w", fd, err)
	}
	return nil
}

func (q *kqueueQueue) Unregister(fd int) error {
	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_DELETE,
	}
	_, err := unix.Kevent(q.kq, []unix.Kevent_t{ev}, nil, nil)
	if err != nil && err != unix.ENOENT {
		return fmt.Errorf("kevent del fd=%d: %w", fd, err)
	}
	return nil
}

func (q *kqueueQueue) Wait(events []Event) (int, error) {
	raw := make([]unix.Kevent_t, len(events))
	n, err := unix.Kevent(q.kq, nil, raw, nil)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		events[i] = Event{
			Fd:       int(raw[i].Ident),
			ErrOrHUP: raw[i].Flags&unix.EV_EOF != 0 || raw[i].Filter == unix.EVFILT_ERROR,
		}
	}
	return n, nil
}

func (q *kqueueQueue) Close() error {
	return unix.Close(q.kq)
}

// IsInterrupted reports whether err is the EINTR the Wait caller should
// retry on without treating it as a fatal poller error.
func IsInterrupted(err error) bool {
	return err == unix.EINTR
}
