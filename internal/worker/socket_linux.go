//go:build linux

package worker

import "golang.org/x/sys/unix"

// tuneClientSocket sets TCP_NODELAY right after accept. SIGPIPE on a write
// to a reset peer is suppressed per-call via MSG_NOSIGNAL (internal/httpkv),
// not at the socket level, so there is nothing else to configure here.
func tuneClientSocket(fd int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}
