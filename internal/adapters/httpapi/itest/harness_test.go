package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/railquote/fare-estimator-api/internal/adapters/httpapi"
	memclock "github.com/railquote/fare-estimator-api/internal/adapters/memory/clock"
	memfarebook "github.com/railquote/fare-estimator-api/internal/adapters/memory/farebook"
	pgfarebook "github.com/railquote/fare-estimator-api/internal/adapters/postgres/farebook"
	postgres_testutil "github.com/railquote/fare-estimator-api/internal/adapters/postgres/testutil"
	"github.com/railquote/fare-estimator-api/internal/app/estimator"
	"github.com/railquote/fare-estimator-api/internal/platform/metrics"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	clock   *memclock.ManualClock

	// origin and destination are unique per server so postgres runs never share rows.
	origin      string
	destination string
}

// newTestServer seeds a default tariff of 100 and a 150 tariff on 2026-04-09.
func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	var book fareprovider.TariffBook
	switch b {
	case backendPostgres:
		book = pgfarebook.NewBook(postgres_testutil.OpenMigratedPool(t))
	case backendMemory:
		book = memfarebook.NewBook()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	suffix := uuid.NewString()[:8]
	s := &testServer{
		clock:       memclock.NewManualClock(testNow),
		origin:      "Bordeaux Saint-Jean " + suffix,
		destination: "Paris Montparnasse " + suffix,
	}

	peak := time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC)
	for _, tr := range []fareprovider.Tariff{
		{Origin: s.origin, Destination: s.destination, Price: 100},
		{Origin: s.origin, Destination: s.destination, TravelDate: &peak, Price: 150},
	} {
		if err := book.PutTariff(context.Background(), tr); err != nil {
			t.Fatalf("PutTariff: %v", err)
		}
	}

	log := zaptest.NewLogger(t)
	m := metrics.New()
	svc := estimator.NewService(m.InstrumentProvider(string(b), book), s.clock, log)
	handler := httpapi.NewRouter(httpapi.NewHandler(svc, m, log), httpapi.RouterOptions{Logger: log, Metrics: m})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s.baseURL = srv.URL
	s.client = srv.Client()
	return s
}

func (s *testServer) doJSON(t *testing.T, method string, path string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.baseURL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestId string `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) errorResponse {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
	return got
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
