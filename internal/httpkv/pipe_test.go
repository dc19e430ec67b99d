package httpkv

import (
	"io"
	"net"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/fricu/fricu-server/internal/connstate"
	"github.com/fricu/fricu-server/internal/kvstore/kvstoremock"
)

// serve drives one connection end-to-end over a net.Conn exactly the way
// the worker event loop drives a raw fd, but using net.Pipe instead of a
// real socket so the parser/dispatcher can be exercised portably without
// platform-specific syscalls.
func serve(d *Dispatcher, conn net.Conn) {
	c := connstate.New(0)
	for {
		if c.Full() {
			if c.AtCeiling() {
				return
			}
			if err := c.Grow(); err != nil {
				return
			}
		}
		n, err := conn.Read(c.Buf()[c.Len:c.Cap()])
		if n > 0 {
			c.Advance(n)
			out := d.Process(c)
			if out.Result == Done {
				conn.Write(Build(out.Status, out.Body))
				conn.Close()
				return
			}
			continue
		}
		if err != nil {
			return
		}
	}
}

func TestPipeEndToEndHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := kvstoremock.NewMockStore(ctrl)
	d := &Dispatcher{Store: store}

	client, server := net.Pipe()
	go serve(d, server)

	go func() {
		client.Write([]byte("GET /health HTTP/1.1\r\nHost: x\r\n\r\n"))
	}()

	got, err := io.ReadAll(client)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := Build(200, []byte(`{"status":"ok"}`))
	if string(got) != string(want) {
		t.Errorf("response = %q, want %q", got, want)
	}
}

func TestPipeEndToEndPutAcrossPartialWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := kvstoremock.NewMockStore(ctrl)
	store.EXPECT().ValidateJSON(`{"a":1}`).Return(true, nil)
	store.EXPECT().Upsert("profile", `{"a":1}`).Return(nil)
	d := &Dispatcher{Store: store}

	client, server := net.Pipe()
	go serve(d, server)

	go func() {
		client.Write([]byte("PUT /v1/data/profile HTTP/1.1\r\n"))
		client.Write([]byte("Content-Length: 7\r\n\r\n"))
		client.Write([]byte(`{"a":1}`))
	}()

	got, err := io.ReadAll(client)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := Build(204, nil)
	if string(got) != string(want) {
		t.Errorf("response = %q, want %q", got, want)
	}
}
