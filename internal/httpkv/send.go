package httpkv

import (
	"time"

	"golang.org/x/sys/unix"
)

const maxWouldBlockRetries = 4
const wouldBlockSleep = 50 * time.Microsecond

// WriteAll sends the entirety of data on fd using a best-effort retry
// loop: EINTR is retried without limit, EAGAIN/EWOULDBLOCK is tolerated
// for up to maxWouldBlockRetries brief sleeps, and any other failure is
// silently dropped — the connection is about to be closed by the caller
// regardless of whether the write fully succeeded.
func WriteAll(fd int, data []byte) {
	sent := 0
	retries := 0
	for sent < len(data) {
		n, err := rawSend(fd, data[sent:])
		if n > 0 {
			sent += n
			continue
		}
		if err == unix.EINTR {
			continue
		}
		if (err == unix.EAGAIN || err == unix.EWOULDBLOCK) && retries < maxWouldBlockRetries {
			retries++
			time.Sleep(wouldBlockSleep)
			continue
		}
		return
	}
}
