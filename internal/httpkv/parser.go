// Package httpkv implements the incremental HTTP/1.1 request parser and
// the fixed-vocabulary key/value dispatcher on top of it. Parsing is
// resumable across reads of the same connection: a call returns
// NeedMoreData when the buffered prefix is incomplete, and the worker
// calls back in with the same (grown) buffer after the next recv.
package httpkv

import (
	"bytes"
	"fmt"
)

const (
	maxMethodLen = 7
	maxTargetLen = 511
	headerSep    = "\r\n\r\n"
)

// ParseOutcome is the parser's cross-call resumption signal.
type ParseOutcome int

const (
	// NeedMoreData means the header terminator has not appeared yet (or,
	// for PUT, the body is not fully buffered); the worker must read more
	// and call Process again with the grown prefix.
	NeedMoreData ParseOutcome = 0
	// Done means a terminal response has been produced; the worker must
	// write it and unconditionally close the connection.
	Done ParseOutcome = 1
)

// requestLine is the two-token request line: method and target.
type requestLine struct {
	Method string
	Target string
}

// findHeaderEnd returns the offset one past "\r\n\r\n" in data, or -1 if
// the terminator has not appeared.
func findHeaderEnd(data []byte) int {
	idx := bytes.Index(data, []byte(headerSep))
	if idx < 0 {
		return -1
	}
	return idx + len(headerSep)
}

// parseRequestLine splits the first line of data into its method and
// target tokens, enforcing the method/target length caps. A third token
// (the HTTP version) may follow and is ignored. Malformed request lines
// (fewer than two or more than three tokens, or either token over its
// cap) are reported via a non-nil error.
func parseRequestLine(data []byte) (requestLine, error) {
	lineEnd := bytes.IndexByte(data, '\n')
	line := data
	if lineEnd >= 0 {
		line = data[:lineEnd]
	}
	line = bytes.TrimRight(line, "\r\n")

	fields := bytes.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return requestLine{}, fmt.Errorf("expected method, target and optional version, got %d tokens", len(fields))
	}
	method, target := string(fields[0]), string(fields[1])
	if len(method) == 0 || len(method) > maxMethodLen {
		return requestLine{}, fmt.Errorf("method length %d exceeds cap %d", len(method), maxMethodLen)
	}
	if len(target) == 0 || len(target) > maxTargetLen {
		return requestLine{}, fmt.Errorf("target length %d exceeds cap %d", len(target), maxTargetLen)
	}
	return requestLine{Method: method, Target: target}, nil
}

// contentLength scans the header lines between the request line and the
// terminator for a case-insensitive "Content-Length" header, returning
// the decimal integer immediately after the colon (leading/trailing
// whitespace tolerated). A missing header is treated as length 0. A
// present-but-unparseable value is treated as 0, mirroring atoi's
// lenient "parse as many leading digits as there are" behavior. A
// leading '-' is honored, so a negative Content-Length surfaces as a
// negative int instead of silently clamping to 0; the caller rejects it.
func contentLength(headerBlock []byte) int {
	lines := bytes.Split(headerBlock, []byte("\r\n"))
	for i, line := range lines {
		if i == 0 {
			continue // request line, not a header
		}
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := bytes.TrimSpace(line[:colon])
		if !bytes.EqualFold(name, []byte("Content-Length")) {
			continue
		}
		value := bytes.TrimSpace(line[colon+1:])
		return parseLeadingInt(value)
	}
	return 0
}

// parseLeadingInt parses an optional leading sign followed by as many
// leading decimal digits as present, returning 0 if no digits follow the
// sign (atoi semantics: "-" alone is not a number).
func parseLeadingInt(b []byte) int {
	neg := false
	if len(b) > 0 && (b[0] == '-' || b[0] == '+') {
		neg = b[0] == '-'
		b = b[1:]
	}
	n := 0
	seen := false
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		seen = true
		n = n*10 + int(c-'0')
	}
	if !seen {
		return 0
	}
	if neg {
		return -n
	}
	return n
}
