//go:build darwin || freebsd || netbsd || openbsd

package worker

import "golang.org/x/sys/unix"

// acceptNonblocking accepts one connection off listenFD. accept4(2) is not
// portable to Darwin/BSD, so non-blocking and close-on-exec are applied
// with two follow-up syscalls instead of the single Linux accept4 call.
func acceptNonblocking(listenFD int) (int, error) {
	fd, err := unix.Accept(listenFD)
	if err != nil {
		return -1, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, err
	}
	unix.CloseOnExec(fd)
	return fd, nil
}
