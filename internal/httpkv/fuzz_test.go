package httpkv

import (
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/fricu/fricu-server/internal/connstate"
	"github.com/fricu/fricu-server/internal/kvstore/kvstoremock"
)

// FuzzParseRequestLine asserts the request-line parser never panics on
// arbitrary bytes and always either rejects the input with an error or
// returns a method/target pair within the documented length caps.
func FuzzParseRequestLine(f *testing.F) {
	f.Add([]byte("GET /health HTTP/1.1\r\n"))
	f.Add([]byte("PUT /v1/data/profile HTTP/1.1\r\n"))
	f.Add([]byte(""))
	f.Add([]byte("\r\n"))
	f.Add([]byte("GET\r\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		req, err := parseRequestLine(data)
		if err != nil {
			return
		}
		if len(req.Method) == 0 || len(req.Method) > maxMethodLen {
			t.Fatalf("accepted method of invalid length %d", len(req.Method))
		}
		if len(req.Target) == 0 || len(req.Target) > maxTargetLen {
			t.Fatalf("accepted target of invalid length %d", len(req.Target))
		}
	})
}

// FuzzFindHeaderEnd asserts the header-terminator scan never panics and,
// when it reports an offset, that offset is always within bounds.
func FuzzFindHeaderEnd(f *testing.F) {
	f.Add([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	f.Add([]byte("GET / HTTP/1.1\r\nHost: x"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		idx := findHeaderEnd(data)
		if idx < -1 || idx > len(data) {
			t.Fatalf("findHeaderEnd(%q) = %d, out of bounds for length %d", data, idx, len(data))
		}
	})
}

// FuzzContentLength asserts the lenient Content-Length scan never panics,
// matching atoi's sign-then-leading-digit parsing (a leading '-' is
// honored, so negative values are a valid outcome left to the caller).
func FuzzContentLength(f *testing.F) {
	f.Add([]byte("Content-Length: 14\r\nHost: x"))
	f.Add([]byte("content-length:0"))
	f.Add([]byte("Content-Length: -5\r\n"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		_ = contentLength(data)
	})
}

// FuzzProcess drives the dispatcher's top-level entry point end to end:
// arbitrary bytes accumulated into a connstate.Conn exactly as the worker
// event loop would append them. Process must never panic and must always
// report either NeedMoreData (waiting on more bytes) or Done (a complete
// response is ready), regardless of how malformed the input is.
func FuzzProcess(f *testing.F) {
	f.Add([]byte("GET /health HTTP/1.1\r\nHost: x\r\n\r\n"))
	f.Add([]byte("PUT /v1/data/profile HTTP/1.1\r\nContent-Length: 7\r\n\r\n{\"a\":1}"))
	f.Add([]byte("GET /v1/data/profile HTTP/1.1\r\n"))
	f.Add([]byte("GARBAGE\r\n\r\n"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > connstate.MaxCapacity {
			data = data[:connstate.MaxCapacity]
		}

		ctrl := gomock.NewController(t)
		store := kvstoremock.NewMockStore(ctrl)
		store.EXPECT().Fetch(gomock.Any()).Return("", false, nil).AnyTimes()
		store.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		store.EXPECT().ValidateJSON(gomock.Any()).Return(true, nil).AnyTimes()
		d := &Dispatcher{Store: store}

		conn := connstate.New(0)
		for rest := data; len(rest) > 0; {
			if conn.Full() {
				if conn.AtCeiling() {
					break
				}
				if err := conn.Grow(); err != nil {
					break
				}
			}
			n := copy(conn.Buf()[conn.Len:conn.Cap()], rest)
			conn.Advance(n)
			rest = rest[n:]
		}

		out := d.Process(conn)
		if out.Result != NeedMoreData && out.Result != Done {
			t.Fatalf("Process() returned result %v, want NeedMoreData or Done", out.Result)
		}
	})
}
