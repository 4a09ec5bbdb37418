package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	memclock "github.com/railquote/fare-estimator-api/internal/adapters/memory/clock"
	"github.com/railquote/fare-estimator-api/internal/app/estimator"
	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/platform/metrics"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// in30Days is exactly thirty days after testNow: adults pay the base fare.
const in30Days = "2026-04-09T09:00:00Z"

func newTestRouter(t *testing.T, fares fareprovider.Provider) (http.Handler, *metrics.Metrics) {
	t.Helper()

	log := zaptest.NewLogger(t)
	m := metrics.New()
	svc := estimator.NewService(m.InstrumentProvider("static", fares), memclock.NewManualClock(testNow), log)
	return NewRouter(NewHandler(svc, m, log), RouterOptions{Logger: log, Metrics: m}), m
}

func staticFare(v float64) fareprovider.Provider {
	return fareprovider.Func(func(context.Context, domain.TripDetails) (float64, error) {
		return v, nil
	})
}

func postEstimate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/estimates", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\nbody=%s", err, rec.Body.String())
	}
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, status, rec.Body.String())
	}
	er := decode[ErrorResponse](t, rec)
	if er.Error.Code != code {
		t.Fatalf("code=%q want=%q", er.Error.Code, code)
	}
	if rid, err := er.Error.RequestId.Get(); err != nil || rid == "" {
		t.Fatalf("expected requestId, got %q (%v)", rid, err)
	}
	return er
}

func TestCreateEstimate_200(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, staticFare(100))
	rec := postEstimate(t, h, `{
		"origin": "Bordeaux",
		"destination": "Paris",
		"travelDate": "`+in30Days+`",
		"passengers": [
			{"id": "5b1ad7c4-8a5f-4b4f-9e57-0d1f5f2b8f11", "age": 35, "discountCards": ["Couple"]},
			{"age": 33, "discountCards": ["Couple"], "name": "  Ana "},
			{"age": 0.5}
		]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	got := decode[EstimateResponse](t, rec)
	// Three passengers means no couple reduction: 100 + 100 + 0.
	if got.Total != 200 || got.Currency != "EUR" || got.PassengerCount != 3 || got.BaseFare != 100 {
		t.Fatalf("response=%+v", got)
	}
	if got.Lines[0].PassengerId != "5b1ad7c4-8a5f-4b4f-9e57-0d1f5f2b8f11" {
		t.Fatalf("explicit id not kept: %q", got.Lines[0].PassengerId)
	}
	if got.Lines[1].PassengerId == "" || !got.Lines[2].Newborn || got.Lines[2].Price != 0 {
		t.Fatalf("lines=%+v", got.Lines)
	}
}

func TestCreateEstimate_CoupleReduction(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, staticFare(100))
	rec := postEstimate(t, h, `{"origin":"Bordeaux","destination":"Paris","travelDate":"`+in30Days+`",
		"passengers":[{"age":35,"discountCards":["Couple"]},{"age":33,"discountCards":[]}]}`)

	got := decode[EstimateResponse](t, rec)
	if got.Total != 160 || got.GroupAdjustment != -40 {
		t.Fatalf("response=%+v", got)
	}
}

func TestCreateEstimate_EmptyPassengersIsFree(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, fareprovider.Func(func(context.Context, domain.TripDetails) (float64, error) {
		t.Errorf("fare provider must not be called")
		return 0, nil
	}))
	rec := postEstimate(t, h, `{"origin":"","destination":"","passengers":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[EstimateResponse](t, rec)
	if got.Total != 0 || got.PassengerCount != 0 || got.Lines == nil {
		t.Fatalf("response=%+v", got)
	}
}

func TestCreateEstimate_InvalidTrip_422(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		body   string
		reason string
	}{
		"blank origin": {
			body:   `{"origin":"  ","destination":"Paris","travelDate":"` + in30Days + `","passengers":[{"age":30}]}`,
			reason: estimator.ReasonStartCity,
		},
		"blank destination": {
			body:   `{"origin":"Lyon","destination":"","travelDate":"` + in30Days + `","passengers":[{"age":30}]}`,
			reason: estimator.ReasonDestination,
		},
		"missing date": {
			body:   `{"origin":"Lyon","destination":"Paris","passengers":[{"age":30}]}`,
			reason: estimator.ReasonDate,
		},
		"yesterday": {
			body:   `{"origin":"Lyon","destination":"Paris","travelDate":"2026-03-09T23:59:59Z","passengers":[{"age":30}]}`,
			reason: estimator.ReasonDate,
		},
		"negative age": {
			body:   `{"origin":"Lyon","destination":"Paris","travelDate":"` + in30Days + `","passengers":[{"age":30},{"age":-1}]}`,
			reason: estimator.ReasonAge,
		},
	}
	for name, tc := range cases {
		h, _ := newTestRouter(t, staticFare(100))
		rec := postEstimate(t, h, tc.body)
		er := requireError(t, rec, http.StatusUnprocessableEntity, estimator.CodeInvalidInput)
		if er.Error.Message != tc.reason {
			t.Fatalf("%s: message=%q want=%q", name, er.Error.Message, tc.reason)
		}
	}
}

func TestCreateEstimate_FareAPIFailure_502(t *testing.T) {
	t.Parallel()

	providers := map[string]fareprovider.Provider{
		"sentinel": staticFare(fareprovider.Unavailable),
		"error": fareprovider.Func(func(context.Context, domain.TripDetails) (float64, error) {
			return fareprovider.Unavailable, errors.New("connection reset")
		}),
	}
	for name, p := range providers {
		h, _ := newTestRouter(t, p)
		rec := postEstimate(t, h, `{"origin":"Lyon","destination":"Paris","travelDate":"`+in30Days+`","passengers":[{"age":30}]}`)
		er := requireError(t, rec, http.StatusBadGateway, estimator.CodeAPIFailure)
		if strings.Contains(er.Error.Message, "connection reset") {
			t.Fatalf("%s: upstream detail leaked: %q", name, er.Error.Message)
		}
	}
}

func TestCreateEstimate_RequestValidation_422(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown card": `{"origin":"Lyon","destination":"Paris","travelDate":"` + in30Days + `","passengers":[{"age":30,"discountCards":["Gold"]}]}`,
		"missing age":  `{"origin":"Lyon","destination":"Paris","travelDate":"` + in30Days + `","passengers":[{"discountCards":[]}]}`,
	}
	for name, body := range cases {
		h, _ := newTestRouter(t, staticFare(100))
		rec := postEstimate(t, h, body)
		er := requireError(t, rec, http.StatusUnprocessableEntity, codeValidation)
		details, err := er.Error.Details.Get()
		if err != nil || len(details) != 1 {
			t.Fatalf("%s: details=%v err=%v", name, details, err)
		}
	}
}

func TestCreateEstimate_BadJSON_400(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		``,
		`{"origin":`,
		`{"origin":"Lyon","unexpected":true}`,
		`{"passengers":[{"age":"old"}]}`,
		`{"origin":"Lyon"}{"origin":"Nice"}`,
		`{"travelDate":"tomorrow"}`,
	} {
		h, _ := newTestRouter(t, staticFare(100))
		requireError(t, postEstimate(t, h, body), http.StatusBadRequest, codeBadRequest)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, staticFare(100))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestMetrics_RecordsOutcomes(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, staticFare(100))
	postEstimate(t, h, `{"origin":"Lyon","destination":"Paris","travelDate":"`+in30Days+`","passengers":[{"age":30}]}`)
	postEstimate(t, h, `{"origin":"","destination":"Paris","travelDate":"`+in30Days+`","passengers":[{"age":30}]}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`fare_estimator_estimates_total{outcome="ok"} 1`,
		`fare_estimator_estimates_total{outcome="invalid_input"} 1`,
		`fare_estimator_http_requests_total{method="POST",route="/estimates",status="422"} 1`,
		`fare_estimator_fare_provider_duration_seconds_count{provider="static",result="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}
