//go:build darwin || freebsd || netbsd || openbsd

package worker

import "golang.org/x/sys/unix"

// rawRecv reads one chunk off fd into buf.
func rawRecv(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf)
}
