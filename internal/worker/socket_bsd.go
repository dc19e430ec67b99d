//go:build darwin || freebsd || netbsd || openbsd

package worker

import "golang.org/x/sys/unix"

// tuneClientSocket sets TCP_NODELAY and, since BSD/Darwin have no
// per-write MSG_NOSIGNAL, SO_NOSIGPIPE once so a write to a peer that has
// already reset the connection raises EPIPE instead of delivering SIGPIPE.
func tuneClientSocket(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		return err
	}
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}
