//go:build linux

package netpoll

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// epollQueue backs Queue with a real Linux epoll instance, level-triggered,
// using the read filter for both listener and client roles. EPOLLERR,
// EPOLLHUP and EPOLLRDHUP signal the error/hangup condition on non-
// listener descriptors.
type epollQueue struct {
	epfd int
}

// New returns an epoll-backed Queue.
func New() (Queue, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	return &epollQueue{epfd: epfd}, nil
}

func (q *epollQueue) Register(fd int, role Role) error {
	base := uint32(unix.EPOLLIN)
	if role == RoleClient {
		base |= unix.EPOLLRDHUP
		ev := unix.EpollEvent{Events: base, Fd: int32(fd)}
		if err := unix.EpollCtl(q.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			return fmt.Errorf("epoll_ctl add fd=%d: %w", fd, err)
		}
		return nil
	}

	// Listener: request the exclusive-wakeup hint to avoid the thundering
	// herd of every worker waking for one accept event. Older kernels
	// reject an unknown flag with EINVAL; fall back without it.
	ev := unix.EpollEvent{Events: base | unix.EPOLLEXCLUSIVE, Fd: int32(fd)}
	if err := unix.EpollCtl(q.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		ev.Events = base
		if err := unix.EpollCtl(q.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			return fmt.Errorf("epoll_ctl add listener fd=%d: %w", fd, err)
		}
	}
	return nil
}

func (q *epollQueue) Unregister(fd int) error {
	if err := unix.EpollCtl(q.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil && err != unix.ENOENT {
		return fmt.Errorf("epoll_ctl del fd=%d: %w", fd, err)
	}
	return nil
}

func (q *epollQueue) Wait(events []Event) (int, error) {
	raw := make([]unix.EpollEvent, len(events))
	n, err := unix.EpollWait(q.epfd, raw, -1)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		events[i] = Event{
			Fd:       int(raw[i].Fd),
			ErrOrHUP: raw[i].Events&(unix.EPOLLERR|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
		}
	}
	return n, nil
}

func (q *epollQueue) Close() error {
	return unix.Close(q.epfd)
}

// IsInterrupted reports whether err is the EINTR the Wait caller should
// retry on without treating it as a fatal poller error.
func IsInterrupted(err error) bool {
	return err == unix.EINTR
}
