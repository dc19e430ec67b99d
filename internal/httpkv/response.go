package httpkv

import "fmt"

const headerBufSize = 2 * 1024

var reasonPhrases = map[int]string{
	200: "OK",
	204: "No Content",
	400: "Bad Request",
	404: "Not Found",
	405: "Method Not Allowed",
	413: "Payload Too Large",
	500: "Internal Server Error",
}

func reason(code int) string {
	if r, ok := reasonPhrases[code]; ok {
		return r
	}
	return "Unknown"
}

// Build assembles a complete response: status line, fixed headers, and
// body. It always sets Content-Type: application/json, a Content-Length
// matching len(body) exactly, and Connection: close — every response
// closes the socket, even if the client asked to keep it alive.
func Build(code int, body []byte) []byte {
	header := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: application/json\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		code, reason(code), len(body),
	)
	if len(header) > headerBufSize {
		// Cannot happen with the fixed status/reason vocabulary above;
		// guards against a future reason phrase blowing the header budget.
		header = header[:headerBufSize]
	}
	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	out = append(out, body...)
	return out
}
