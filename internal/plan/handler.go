package plan

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zoobzio/shroud/shroudhttp"
)

// Handler serves the member directory over HTTP.
type Handler struct {
	directory *Directory
	responder *shroudhttp.Responder
	logger    *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(directory *Directory, responder *shroudhttp.Responder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{directory: directory, responder: responder, logger: logger}
}

// MountRoutes registers the member routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/members", func(r chi.Router) {
		r.Get("/", h.listMembers)
		r.Get("/{memberID}", h.getMember)
		r.Get("/{memberID}/balance", h.getBalance)
		r.Post("/{memberID}/beneficiaries", h.addBeneficiary)
	})
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	h.responder.Respond(w, r, http.StatusOK, h.directory.Members())
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}
	detail, err := h.directory.Detail(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.responder.Respond(w, r, http.StatusOK, detail)
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}
	balance, err := h.directory.Balance(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.responder.Respond(w, r, http.StatusOK, balance)
}

func (h *Handler) addBeneficiary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}
	var req BeneficiaryRequest
	if err := h.responder.Decode(r, &req); err != nil {
		h.logger.Info("decode beneficiary request", slog.Any("error", err))
		if errors.Is(err, shroudhttp.ErrUnsupportedMediaType) {
			h.responder.Error(w, http.StatusUnsupportedMediaType, "unsupported media type")
			return
		}
		h.responder.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	b, err := h.directory.AddBeneficiary(id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.responder.Respond(w, r, http.StatusCreated, b)
}

func (h *Handler) memberID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		h.responder.Error(w, http.StatusBadRequest, "invalid member id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var invalid ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		h.responder.Error(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalid), errors.Is(err, ErrAllocationExceeded):
		h.responder.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("member request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.responder.Error(w, http.StatusInternalServerError, "internal error")
	}
}
