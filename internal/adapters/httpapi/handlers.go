package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/railquote/fare-estimator-api/internal/app/estimator"
	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/platform/metrics"
)

const maxBodySize = 1 << 20

// Estimator prices trip requests.
type Estimator interface {
	Quote(ctx context.Context, req domain.TripRequest) (estimator.Quote, error)
}

type Handler struct {
	est      Estimator
	metrics  *metrics.Metrics
	log      *zap.Logger
	validate *validator.Validate
}

// NewHandler builds the estimate handler. m may be nil.
func NewHandler(est Estimator, m *metrics.Metrics, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{est: est, metrics: m, log: log, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("discount_card", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDiscountCard(fl.Field().String())
		return err == nil
	})
	return v
}

func (h *Handler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	var body EstimateRequest
	if msg, ok := h.readJSON(w, r, &body); !ok {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, msg, nil)
		return
	}
	if details := h.validationDetails(body); details != nil {
		h.observe(metrics.OutcomeInvalidInput)
		writeError(w, r, http.StatusUnprocessableEntity, codeValidation, "request validation failed", details)
		return
	}

	req, err := body.toDomain()
	if err != nil {
		h.observe(metrics.OutcomeInvalidInput)
		writeError(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error(), nil)
		return
	}

	q, err := h.est.Quote(r.Context(), req)
	if err != nil {
		h.observe(outcomeOf(err))
		if !errors.Is(err, estimator.ErrInvalidInput) && !errors.Is(err, estimator.ErrAPIFailure) {
			h.log.Error("estimate failed", zap.Error(err))
		}
		writeAppError(w, r, err)
		return
	}
	h.observe(metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, toEstimateResponse(q))
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, dst any) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return "malformed JSON", false
		case errors.As(err, &typeErr):
			return "invalid JSON type for " + typeErr.Field, false
		case errors.As(err, &maxBytesErr):
			return "request body too large", false
		case errors.Is(err, io.EOF):
			return "request body is empty", false
		default:
			return err.Error(), false
		}
	}
	if dec.More() {
		return "body must contain only a single JSON value", false
	}
	return "", true
}

// validationDetails returns field -> failed rule, or nil when body is valid.
func (h *Handler) validationDetails(body EstimateRequest) map[string]any {
	err := h.validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]any{"body": err.Error()}
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Namespace()] = fe.Tag()
	}
	return details
}

func (h *Handler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveEstimate(outcome)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, estimator.ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, estimator.ErrAPIFailure):
		return metrics.OutcomeAPIFailure
	default:
		return metrics.OutcomeError
	}
}
