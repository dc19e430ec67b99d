//go:build linux

package httpkv

import "golang.org/x/sys/unix"

// rawSend sends one chunk of data on fd, passing MSG_NOSIGNAL so a write
// to a peer that has already reset the connection raises EPIPE instead of
// delivering SIGPIPE to the process.
func rawSend(fd int, data []byte) (int, error) {
	n, err := unix.Send(fd, data, unix.MSG_NOSIGNAL)
	return n, err
}
