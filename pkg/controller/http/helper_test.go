package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/shelfcheck/pkg/controller/http"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/repository/memory"
	"github.com/secmon-lab/shelfcheck/pkg/service/storage"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
)

const testChannel = "C0123456789"

// fakeSource serves a single history page and fixed file contents
type fakeSource struct {
	mu   sync.Mutex
	page *interfaces.HistoryPage
}

func (s *fakeSource) History(ctx context.Context, q interfaces.HistoryQuery) (*interfaces.HistoryPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil || q.Cursor != "" {
		return &interfaces.HistoryPage{}, nil
	}
	return s.page, nil
}

func (s *fakeSource) Download(ctx context.Context, url string) ([]byte, error) {
	return []byte("jpeg"), nil
}

type testServer struct {
	server *httpctrl.Server
	repo   *memory.Memory
	source *fakeSource
	blob   *storage.Memory
}

// newTestServer builds a server over memory backends. extra derives server options from
// the use cases, for handlers that need them.
func newTestServer(t *testing.T, ucOpts []usecase.Option, extra ...func(uc *usecase.UseCases) []httpctrl.Options) *testServer {
	t.Helper()
	ts := &testServer{
		repo:   memory.New(),
		source: &fakeSource{},
		blob:   storage.NewMemory(""),
	}

	opts := append([]usecase.Option{
		usecase.WithMessageSource(ts.source),
		usecase.WithBlobStore(ts.blob),
		usecase.WithSyncOptions(usecase.WithSyncChannel(testChannel)),
	}, ucOpts...)
	uc := usecase.New(ts.repo, opts...)

	var srvOpts []httpctrl.Options
	for _, fn := range extra {
		srvOpts = append(srvOpts, fn(uc)...)
	}
	srv, err := httpctrl.New(uc, srvOpts...)
	gt.NoError(t, err).Required()
	ts.server = srv
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}
