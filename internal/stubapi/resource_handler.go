package stubapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// resourceRoutes is the handler set registered for each collection.
type resourceRoutes interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Retrieve(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// CollectionHandler serves list and item routes for one collection.
type CollectionHandler[R identified[R]] struct {
	coll      collection[R]
	store     *Store
	location  *time.Location
	responder responder
	logger    *slog.Logger
}

func newCollectionHandler[R identified[R]](coll collection[R], store *Store, loc *time.Location, logger *slog.Logger) *CollectionHandler[R] {
	base := defaultLogger(logger)
	if loc == nil {
		loc = time.Local
	}
	return &CollectionHandler[R]{coll: coll, store: store, location: loc, responder: newResponder(base), logger: base}
}

func (h *CollectionHandler[R]) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CollectionHandler", operation, append([]any{"resource", h.coll.name}, attrs...)...)
}

func (h *CollectionHandler[R]) List(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.coll.list(h.store))
}

func (h *CollectionHandler[R]) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	rec, err := h.coll.get(h.store, id)
	if err != nil {
		h.responder.writeDetail(r.Context(), w, http.StatusNotFound, detailNotFound)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, rec)
}

func (h *CollectionHandler[R]) Create(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decode(w, r, "Create")
	if !ok {
		return
	}
	created, errs := h.coll.create(h.store, rec)
	if !errs.empty() {
		h.log(r.Context(), "Create", "error_kind", "validation").WarnContext(r.Context(), "referential validation failed", "fields", len(errs))
		h.responder.writeFieldErrors(r.Context(), w, errs)
		return
	}
	h.log(r.Context(), "Create", "id", created.key()).InfoContext(r.Context(), "record created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, created)
}

func (h *CollectionHandler[R]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	rec, ok := h.decode(w, r, "Update")
	if !ok {
		return
	}
	updated, errs, err := h.coll.update(h.store, id, rec)
	switch {
	case errors.Is(err, ErrNotFound):
		h.responder.writeDetail(r.Context(), w, http.StatusNotFound, detailNotFound)
		return
	case !errs.empty():
		h.log(r.Context(), "Update", "id", id, "error_kind", "validation").WarnContext(r.Context(), "referential validation failed", "fields", len(errs))
		h.responder.writeFieldErrors(r.Context(), w, errs)
		return
	}
	h.log(r.Context(), "Update", "id", id).InfoContext(r.Context(), "record updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, updated)
}

func (h *CollectionHandler[R]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	if err := h.coll.remove(h.store, id); err != nil {
		h.responder.writeDetail(r.Context(), w, http.StatusNotFound, detailNotFound)
		return
	}
	h.log(r.Context(), "Delete", "id", id).InfoContext(r.Context(), "record deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *CollectionHandler[R]) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.responder.writeDetail(r.Context(), w, http.StatusNotFound, detailNotFound)
		return 0, false
	}
	return id, true
}

func (h *CollectionHandler[R]) decode(w http.ResponseWriter, r *http.Request, operation string) (R, bool) {
	var zero R
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "failed to read body", "error", err)
		h.responder.writeDetail(r.Context(), w, http.StatusBadRequest, detailMalformed)
		return zero, false
	}
	rec, errs, err := h.coll.decode(body, h.location)
	if err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode body", "error", err)
		h.responder.writeDetail(r.Context(), w, http.StatusBadRequest, detailMalformed)
		return zero, false
	}
	if !errs.empty() {
		h.log(r.Context(), operation, "error_kind", "validation").WarnContext(r.Context(), "payload rejected", "fields", len(errs))
		h.responder.writeFieldErrors(r.Context(), w, errs)
		return zero, false
	}
	return rec, true
}
