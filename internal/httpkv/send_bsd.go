//go:build darwin || freebsd || netbsd || openbsd

package httpkv

import "golang.org/x/sys/unix"

// rawSend sends one chunk of data on fd. SIGPIPE suppression on
// BSD/Darwin is done once per socket via SO_NOSIGPIPE right after accept
// (see internal/worker), not per write, so this is a plain write(2).
func rawSend(fd int, data []byte) (int, error) {
	n, err := unix.Write(fd, data)
	return n, err
}
