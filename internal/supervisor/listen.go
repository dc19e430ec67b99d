// Package supervisor owns the process-wide shared listening socket and
// the pre-forked pool of workers that all accept off it concurrently. It
// is the only component that coordinates across workers; workers
// themselves never communicate with each other.
package supervisor

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// Listen creates, binds and starts listening on a raw, non-blocking TCP
// socket for bindAddr, returning the bare file descriptor every worker
// registers with its own readiness queue. A raw fd is used instead of
// net.Listen because the worker pool drives accept/recv/send via
// epoll/kqueue directly, bypassing the net package's own poller.
func Listen(bindAddr string) (int, error) {
	host, portStr, err := net.SplitHostPort(bindAddr)
	if err != nil {
		return -1, fmt.Errorf("supervisor: invalid bind address %q: %w", bindAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return -1, fmt.Errorf("supervisor: invalid port in %q: %w", bindAddr, err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("supervisor: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("supervisor: setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("supervisor: set nonblocking: %w", err)
	}

	addr := unix.SockaddrInet4{Port: port}
	ip := net.ParseIP(host)
	if ip == nil {
		// An empty or "0.0.0.0" host (the spec's default) binds to all
		// interfaces, which is what the zeroed Addr field already means.
		if host != "" && host != "0.0.0.0" {
			unix.Close(fd)
			return -1, fmt.Errorf("supervisor: invalid bind host %q", host)
		}
	} else if v4 := ip.To4(); v4 != nil {
		copy(addr.Addr[:], v4)
	}

	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("supervisor: bind %s: %w", bindAddr, err)
	}
	if err := unix.Listen(fd, 1024); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("supervisor: listen: %w", err)
	}
	return fd, nil
}
