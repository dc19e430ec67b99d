package httpkv

import (
	"strings"

	"github.com/fricu/fricu-server/internal/apierr"
	"github.com/fricu/fricu-server/internal/connstate"
	"github.com/fricu/fricu-server/internal/kvstore"
)

const dataPrefix = "/v1/data/"

// Outcome is what the worker event loop does after one call to Process:
// either resume (read more and call again) or write Body under Status and
// unconditionally close the connection.
type Outcome struct {
	Result ParseOutcome
	Status int
	Body   []byte
}

func needMore() Outcome { return Outcome{Result: NeedMoreData} }

func done(status int, body []byte) Outcome {
	return Outcome{Result: Done, Status: status, Body: body}
}

func errOutcome(e *apierr.Error) Outcome {
	return done(e.Status, jsonError(e.Message))
}

// Dispatcher routes parsed requests to the worker's store handle. One
// Dispatcher is constructed per worker, sharing that worker's Store.
type Dispatcher struct {
	Store kvstore.Store
}

// Process is the single entry point the worker event loop calls after
// every successful recv: it null-terminates and re-scans conn's buffered
// prefix and returns either NeedMoreData (call again after the next read)
// or Done with the full response to write.
func (d *Dispatcher) Process(conn *connstate.Conn) Outcome {
	data := conn.Terminate()

	headerLen := findHeaderEnd(data)
	if headerLen < 0 {
		return needMore()
	}
	headerBlock := data[:headerLen]

	req, err := parseRequestLine(headerBlock)
	if err != nil {
		return errOutcome(apierr.ErrMalformedRequestLine)
	}

	if req.Method == "GET" && req.Target == "/health" {
		return done(200, []byte(`{"status":"ok"}`))
	}

	if !strings.HasPrefix(req.Target, dataPrefix) {
		return errOutcome(apierr.ErrNotFound)
	}
	key := req.Target[len(dataPrefix):]
	if !kvstore.IsValidKey(key) {
		return errOutcome(apierr.ErrUnknownKey)
	}

	switch req.Method {
	case "GET":
		return d.handleGet(key)
	case "PUT":
		return d.handlePut(key, data, headerBlock, headerLen)
	default:
		return errOutcome(apierr.ErrMethodNotAllowed)
	}
}

func (d *Dispatcher) handleGet(key string) Outcome {
	value, found, err := d.Store.Fetch(key)
	if err != nil {
		return errOutcome(apierr.ErrDatabase)
	}
	if !found {
		value = kvstore.DefaultValue(key)
	}
	return done(200, []byte(value))
}

func (d *Dispatcher) handlePut(key string, data, headerBlock []byte, headerLen int) Outcome {
	contentLen := contentLength(headerBlock)
	if contentLen < 0 || headerLen+contentLen > connstate.MaxCapacity {
		return errOutcome(apierr.ErrInvalidContentLength)
	}

	buffered := len(data) - headerLen
	if buffered < contentLen {
		return needMore()
	}

	body := data[headerLen : headerLen+contentLen]
	valid, err := d.Store.ValidateJSON(string(body))
	if err != nil {
		return errOutcome(apierr.ErrDatabase)
	}
	if !valid {
		return errOutcome(apierr.ErrInvalidJSONPayload)
	}

	if err := d.Store.Upsert(key, string(body)); err != nil {
		return errOutcome(apierr.ErrDatabase)
	}
	return done(204, nil)
}

func jsonError(message string) []byte {
	// The fixed error vocabulary never needs escaping: every message is a
	// short constant string from internal/apierr with no quotes or
	// control characters.
	return []byte(`{"error":"` + message + `"}`)
}
