//go:build linux || darwin

package httpkv

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestWriteAllDeliversFullPayload(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	payload := Build(200, []byte(`{"status":"ok"}`))
	WriteAll(fds[0], payload)
	unix.Close(fds[0])

	got := make([]byte, len(payload)+64)
	n, err := unix.Read(fds[1], got)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got[:n]) != string(payload) {
		t.Errorf("received %q, want %q", got[:n], payload)
	}
}

func TestWriteAllOnClosedPeerDoesNotPanic(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	unix.Close(fds[1])
	defer unix.Close(fds[0])

	// Should silently drop the failure rather than panicking or blocking.
	WriteAll(fds[0], []byte("hello"))
}
