package client

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

type reply struct {
	status      int
	contentType string
	body        string
}

// upstream is a fake service that answers by "METHOD path" and records
// every request it sees.
type upstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	replies  map[string]reply
}

func newUpstream(t *testing.T, replies map[string]reply) *upstream {
	t.Helper()
	u := &upstream{replies: replies}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.requests = append(u.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		u.mu.Unlock()

		rep, ok := u.replies[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if rep.contentType != "" {
			w.Header().Set("Content-Type", rep.contentType)
		}
		status := rep.status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(rep.body))
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) calls() []recordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]recordedRequest(nil), u.requests...)
}

func jsonReply(body string) reply {
	return reply{contentType: "application/json", body: body}
}
