package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"roomly/pkg/logger"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
)

// ReplayKey identifies one client request. The same header value sent to
// another route or with another method is a different request.
type ReplayKey struct {
	Method string
	Path   string
	Key    string
}

// StoredResponse is a completed 2xx response kept for replay.
type StoredResponse struct {
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

type ReplayStore interface {
	// Begin reserves key for the caller. It returns the stored response when
	// the key already completed, or inFlight when another request holding
	// the key has not finished yet.
	Begin(key ReplayKey) (stored *StoredResponse, inFlight bool)
	// Finish stores resp under key, or drops the reservation when resp is nil.
	Finish(key ReplayKey, resp *StoredResponse)
	Stop()
}

type replayEntry struct {
	resp *StoredResponse // nil while the first request is running
}

type MemoryReplayStore struct {
	mu       sync.Mutex
	entries  map[ReplayKey]*replayEntry
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryReplayStore keeps responses for ttl. Expired entries are swept
// every ttl or every hour, whichever is shorter.
func NewMemoryReplayStore(ttl time.Duration) *MemoryReplayStore {
	s := &MemoryReplayStore{
		entries: make(map[ReplayKey]*replayEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	every := time.Hour
	if ttl > 0 && ttl < every {
		every = ttl
	}
	go s.sweepLoop(every)

	return s
}

func (s *MemoryReplayStore) Begin(key ReplayKey) (*StoredResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		if e.resp == nil {
			return nil, true
		}
		if !s.expired(e.resp) {
			return e.resp, false
		}
	}

	s.entries[key] = &replayEntry{}
	return nil, false
}

func (s *MemoryReplayStore) Finish(key ReplayKey, resp *StoredResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp == nil {
		delete(s.entries, key)
		return
	}
	resp.StoredAt = s.now()
	s.entries[key] = &replayEntry{resp: resp}
}

func (s *MemoryReplayStore) expired(resp *StoredResponse) bool {
	return s.now().Sub(resp.StoredAt) > s.ttl
}

// Sweep drops completed entries older than the TTL. Reservations stay until
// their request finishes.
func (s *MemoryReplayStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.resp != nil && s.expired(e.resp) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryReplayStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryReplayStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type replayRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rr *replayRecorder) WriteHeader(status int) {
	rr.status = status
	rr.ResponseWriter.WriteHeader(status)
}

func (rr *replayRecorder) Write(b []byte) (int, error) {
	rr.body.Write(b)
	return rr.ResponseWriter.Write(b)
}

// Idempotency replays the stored 2xx response when a write request repeats
// its Idempotency-Key. A repeat that arrives while the first is still
// running gets 409. Safe methods pass through untouched.
func Idempotency(store ReplayStore, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(IdempotencyHeader)
			if header == "" || isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if len(header) > maxIdempotencyKeyLength {
				writeJSONError(w, http.StatusBadRequest,
					`{"error":"Idempotency-Key is too long","code":"INVALID_INPUT"}`)
				return
			}

			key := ReplayKey{Method: r.Method, Path: r.URL.Path, Key: header}
			stored, inFlight := store.Begin(key)
			switch {
			case inFlight:
				log.Warn("Idempotent request still in progress",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusConflict,
					`{"error":"A request with this Idempotency-Key is still in progress","code":"CONFLICT"}`)
				return
			case stored != nil:
				log.Debug("Replaying idempotent response",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"status", stored.Status,
				)
				replay(w, stored)
				return
			}

			rec := &replayRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() { store.Finish(key, stored) }()

			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				stored = &StoredResponse{
					Status: rec.status,
					Header: w.Header().Clone(),
					Body:   bytes.Clone(rec.body.Bytes()),
				}
			}
		})
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func replay(w http.ResponseWriter, stored *StoredResponse) {
	for k, values := range stored.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}
