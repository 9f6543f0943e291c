package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskpad/internal/auth"
	"github.com/BuzzLyutic/taskpad/internal/model"
	"github.com/BuzzLyutic/taskpad/internal/service"
	"github.com/BuzzLyutic/taskpad/pkg/respond"
)

// Handler serves one owner-scoped collection. The owner always comes from
// the authenticated identity; routes must be mounted behind auth.Middleware.
type Handler[T model.Entity[T], P model.Patch[T, P]] struct {
	service *service.Service[T, P]
	logger  *zap.Logger
	prefix  string
}

type TaskHandler = Handler[model.Task, model.TaskPatch]

type NoteHandler = Handler[model.Note, model.NotePatch]

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return newHandler(srv, logger)
}

func NewNoteHandler(srv *service.NoteService, logger *zap.Logger) *NoteHandler {
	return newHandler(srv, logger)
}

func newHandler[T model.Entity[T], P model.Patch[T, P]](srv *service.Service[T, P], logger *zap.Logger) *Handler[T, P] {
	return &Handler[T, P]{
		service: srv,
		logger:  logger.With(zap.String("collection", srv.Name())),
		prefix:  "/api/v1/" + srv.Name(),
	}
}

func (h *Handler[T, P]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *Handler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	var req T
	if err := respond.Decode(r, &req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), auth.OwnerFrom(r.Context()), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", h.prefix, created.EntityID()))
	respond.JSON(w, r, http.StatusCreated, created)
}

func (h *Handler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), auth.OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, e)
}

// List accepts owner_id (must match the caller), order and dir.
func (h *Handler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerFrom(r.Context())
	q := r.URL.Query()

	if requested := q.Get("owner_id"); requested != "" && requested != owner {
		h.handleErrors(w, r, model.ErrForbidden)
		return
	}

	order, err := model.ParseOrder(q.Get("order"), q.Get("dir"), h.service.DefaultOrder())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	items, err := h.service.List(r.Context(), owner, order)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, items)
}

func (h *Handler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	var patch P
	if err := respond.Decode(r, &patch); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), auth.OwnerFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, updated)
}

func (h *Handler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), auth.OwnerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w, r)
}

func (h *Handler[T, P]) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, model.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrForbidden):
		respond.Error(w, r, http.StatusForbidden, "forbidden")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
