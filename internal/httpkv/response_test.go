package httpkv

import (
	"strings"
	"testing"
)

func TestBuildHealthResponse(t *testing.T) {
	got := Build(200, []byte(`{"status":"ok"}`))
	want := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 15\r\nConnection: close\r\n\r\n{\"status\":\"ok\"}"
	if string(got) != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuildNoContentResponse(t *testing.T) {
	got := Build(204, nil)
	want := "HTTP/1.1 204 No Content\r\nContent-Type: application/json\r\nContent-Length: 0\r\nConnection: close\r\n\r\n"
	if string(got) != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuildAlwaysIncludesConnectionClose(t *testing.T) {
	got := string(Build(404, []byte(`{"error":"not found"}`)))
	for _, want := range []string{"Connection: close", "Content-Length: 21", "Content-Type: application/json"} {
		if !strings.Contains(got, want) {
			t.Errorf("Build() missing %q in %q", want, got)
		}
	}
}
