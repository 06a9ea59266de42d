package poster

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

const testBlobCID = "bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq"

// Minimal in-memory PDS covering the endpoints used for posting.
type fakePDS struct {
	mu sync.Mutex

	handles map[string]string
	// status codes returned by successive createRecord calls before succeeding
	createFailures []int
	records        []json.RawMessage
	uploads        []string
}

func newFakePDS() (*fakePDS, *httptest.Server) {
	f := &fakePDS{
		handles: map[string]string{
			"alice.test": "did:plc:alice",
			"bob.test":   "did:plc:bob",
		},
	}
	return f, httptest.NewServer(f)
}

func xrpcError(w http.ResponseWriter, status int, name, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": name, "message": msg})
}

func (f *fakePDS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	authed := r.Header.Get("Authorization") == "Bearer access1"

	switch r.URL.Path {
	case "/xrpc/com.atproto.server.createSession":
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			xrpcError(w, http.StatusBadRequest, "InvalidRequest", "bad JSON")
			return
		}
		if body["identifier"] != "alice.test" || body["password"] != "hunter2" {
			xrpcError(w, http.StatusUnauthorized, "AuthenticationRequired", "Invalid identifier or password")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"did":        "did:plc:alice",
			"handle":     "alice.test",
			"accessJwt":  "access1",
			"refreshJwt": "refresh1",
		})
	case "/xrpc/com.atproto.identity.resolveHandle":
		did, ok := f.handles[r.URL.Query().Get("handle")]
		if !ok {
			xrpcError(w, http.StatusBadRequest, "InvalidRequest", "Unable to resolve handle")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"did": did})
	case "/xrpc/com.atproto.repo.uploadBlob":
		if !authed {
			xrpcError(w, http.StatusUnauthorized, "AuthenticationRequired", "")
			return
		}
		data, _ := io.ReadAll(r.Body)
		mimeType := r.Header.Get("Content-Type")
		f.uploads = append(f.uploads, mimeType)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"blob":{"$type":"blob","ref":{"$link":%q},"mimeType":%q,"size":%d}}`, testBlobCID, mimeType, len(data))
	case "/xrpc/com.atproto.repo.createRecord":
		if !authed {
			xrpcError(w, http.StatusUnauthorized, "AuthenticationRequired", "")
			return
		}
		var body struct {
			Repo       string          `json:"repo"`
			Collection string          `json:"collection"`
			Record     json.RawMessage `json:"record"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Repo != "did:plc:alice" || body.Collection != PostCollection {
			xrpcError(w, http.StatusBadRequest, "InvalidRequest", "bad createRecord input")
			return
		}
		f.records = append(f.records, body.Record)
		if len(f.createFailures) > 0 {
			status := f.createFailures[0]
			f.createFailures = f.createFailures[1:]
			if status == http.StatusTooManyRequests {
				w.Header().Set("ratelimit-limit", "300")
				w.Header().Set("ratelimit-remaining", "0")
				w.Header().Set("ratelimit-reset", "1714566600")
				w.Header().Set("ratelimit-policy", "300;w=300")
			}
			xrpcError(w, status, "InvalidRequest", "rejected")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"uri": fmt.Sprintf("at://did:plc:alice/app.bsky.feed.post/3kpost%d", len(f.records)),
			"cid": testBlobCID,
		})
	default:
		http.NotFound(w, r)
	}
}
