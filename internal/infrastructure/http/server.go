package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"uow-coordinator/internal/application"
	"uow-coordinator/internal/domain"
	"uow-coordinator/internal/infrastructure/logx"
	"uow-coordinator/internal/uow"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	svc     *application.RecordService
	ping    func(ctx context.Context) error
	metrics http.Handler
}

type Option func(*Server)

// WithPing sets the readiness probe behind /readyz.
func WithPing(ping func(ctx context.Context) error) Option { return func(s *Server) { s.ping = ping } }

// WithMetrics exposes h under /metrics.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

func NewServer(svc *application.RecordService, opts ...Option) *Server {
	s := &Server{svc: svc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type recordJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type opJSON struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

type batchRequest struct {
	Ops []opJSON `json:"ops"`
}

type batchResponse struct {
	Applied int `json:"applied"`
}

func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var body recordJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec := domain.Record{ID: body.ID, Name: body.Name}
	if err := s.svc.Create(r.Context(), rec); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]recordJSON, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordJSON{ID: rec.ID, Name: rec.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordJSON{ID: rec.ID, Name: rec.Name})
}

func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	var body recordJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec := domain.Record{ID: id, Name: body.Name}
	if err := s.svc.Update(r.Context(), rec); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordJSON{ID: rec.ID, Name: rec.Name})
}

func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ops := make([]domain.RecordOp, 0, len(body.Ops))
	for _, op := range body.Ops {
		ops = append(ops, domain.RecordOp{
			Kind:   domain.RecordOpKind(op.Kind),
			Record: domain.Record{ID: op.ID, Name: op.Name},
		})
	}
	var idem *string
	if key := r.Header.Get("X-Idempotency-Key"); key != "" {
		idem = &key
	}
	if err := s.svc.ApplyBatch(r.Context(), ops, idem); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Applied: len(ops)})
}

func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, uow.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		rid, _ := r.Context().Value(requestIDKey).(string)
		logx.L().Error("request_failed", zap.String("request_id", rid), zap.Error(err))
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
