package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
	"github.com/Werneck0live/cadastro-cnpj/internal/company"
	"github.com/Werneck0live/cadastro-cnpj/internal/metrics"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
	"github.com/Werneck0live/cadastro-cnpj/internal/utils"
)

// Mensagens expostas ao cliente.
const (
	msgInvalidCNPJ = "cnpj must be a valid cnpj"
	msgEmptyCNPJ   = "cnpj should not be empty"
	msgCNPJInUse   = "Company with this CNPJ already exists."
	msgNotFound    = "Company not found."
	msgInternal    = "internal error"
)

const (
	defaultLimit = int64(50)
	maxLimit     = int64(200)
)

type Service interface {
	Create(ctx context.Context, in company.Input) (*models.Company, error)
	Update(ctx context.Context, id int64, in company.Input) (*models.Company, error)
	Find(ctx context.Context, id int64) (*models.Company, error)
	List(ctx context.Context, limit, skip int64) ([]models.Company, error)
	Delete(ctx context.Context, id int64) error
}

type CompanyHandler struct {
	Svc     Service
	Log     *slog.Logger
	Timeout time.Duration
}

func NewCompanyHandler(svc Service, log *slog.Logger, timeout time.Duration) *CompanyHandler {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CompanyHandler{Svc: svc, Log: log.With("cmp", "http"), Timeout: timeout}
}

// Router mounts the API. m may be nil, in which case /metrics is not served.
func (h *CompanyHandler) Router(m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LogMiddleware(h.Log, m))

	r.Get("/healthz", h.Health)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/companies", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func (h *CompanyHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List: GET /api/companies?limit=&skip= (limit 1..200, padrão 50)
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := defaultLimit
	skip := int64(0)
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.ParseInt(l, 10, 64); err == nil && v > 0 && v <= maxLimit {
			limit = v
		}
	}
	if s := q.Get("skip"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v >= 0 {
			skip = v
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	list, err := h.Svc.List(ctx, limit, skip)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	dto, ok := decodeDTO(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	c, err := h.Svc.Create(ctx, dto.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	c, err := h.Svc.Find(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// Update: PUT = replace de email, corporate_name e cnpj.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	dto, ok := decodeDTO(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	c, err := h.Svc.Update(ctx, id, dto.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	if err := h.Svc.Delete(ctx, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeDTO(w http.ResponseWriter, r *http.Request) (CompanyDTO, bool) {
	var dto CompanyDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, err.Error())
		return dto, false
	}
	if err := validateDTO(dto); err != nil {
		utils.BadRequest(w, err.Error())
		return dto, false
	}
	return dto, true
}

// ids are storage-assigned positive integers; anything else cannot exist.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return id, true
}

func (h *CompanyHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cnpj.ErrEmpty):
		utils.BadRequest(w, msgEmptyCNPJ)
	case errors.Is(err, cnpj.ErrInvalid):
		utils.BadRequest(w, msgInvalidCNPJ)
	case errors.Is(err, company.ErrCNPJInUse):
		utils.BadRequest(w, msgCNPJInUse)
	case errors.Is(err, company.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, msgNotFound)
	default:
		h.Log.Error("request_failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "err", err)
		utils.WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}
