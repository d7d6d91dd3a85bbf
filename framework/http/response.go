package http

import (
	"encoding/json"
	"net/http"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter, tracking the pending status and
// whether anything has been written yet.
type Response struct {
	w      *trackingWriter
	status int
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: &trackingWriter{ResponseWriter: w}, status: http.StatusOK}
}

// Raw returns a ResponseWriter for handlers that write the response
// themselves. Writes through it are seen by Written.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// Status sets the status used by the next Send.
//
//	res.Status(http.StatusCreated).Send(book)
func (res *Response) Status(code int) *Response {
	res.status = code
	return res
}

// StatusCode returns the pending status, or the written one after a write.
func (res *Response) StatusCode() int {
	if res.w.status != 0 {
		return res.w.status
	}
	return res.status
}

// Written reports whether headers have been sent.
func (res *Response) Written() bool { return res.w.status != 0 }

// Send writes data as JSON with the pending status (200 unless set).
func (res *Response) Send(data any) {
	res.JSON(res.status, data)
}

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Exception renders e in its standard shape.
func (res *Response) Exception(e *Exception) {
	res.JSON(e.Status, e.Response())
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// trackingWriter records the status once headers go out.
type trackingWriter struct {
	http.ResponseWriter
	status int
}

func (t *trackingWriter) WriteHeader(code int) {
	if t.status != 0 {
		return
	}
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}
	return t.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (t *trackingWriter) Unwrap() http.ResponseWriter { return t.ResponseWriter }
