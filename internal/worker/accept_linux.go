//go:build linux

package worker

import "golang.org/x/sys/unix"

// acceptNonblocking accepts one connection off listenFD, returning it
// already non-blocking and close-on-exec via a single accept4(2) call.
func acceptNonblocking(listenFD int) (int, error) {
	return unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
}
