package handlers

import (
	"context"
	"errors"
	"net/http"

	"cinetrack/models"
	"cinetrack/services/watchlist"
)

type watchlistService interface {
	List(ctx context.Context, userID int64) ([]models.WatchlistItem, error)
	Add(ctx context.Context, userID int64, up models.WatchlistUpsert) (models.WatchlistItem, error)
	UpdateProgress(ctx context.Context, userID, itemID int64, up models.WatchlistUpsert) (models.WatchlistItem, error)
	Remove(ctx context.Context, userID, itemID int64) error
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service watchlistService
}

func NewWatchlistHandler(service watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

func writeWatchlistError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, watchlist.ErrContentIDRequired), errors.Is(err, watchlist.ErrNegativeProgress):
		writeError(w, http.StatusBadRequest, KindValidation, err.Error())
	case errors.Is(err, watchlist.ErrContentUnknown), errors.Is(err, watchlist.ErrItemNotFound):
		writeError(w, http.StatusNotFound, KindNotFound, err.Error())
	case errors.Is(err, watchlist.ErrAlreadyListed):
		writeError(w, http.StatusConflict, KindConflict, err.Error())
	default:
		writeInternalError(w, err)
	}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.Service.List(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var up models.WatchlistUpsert
	if !decodeBody(w, r, &up) {
		return
	}
	item, err := h.Service.Add(r.Context(), user.ID, up)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *WatchlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid watchlist item id")
		return
	}
	var up models.WatchlistUpsert
	if !decodeBody(w, r, &up) {
		return
	}
	item, err := h.Service.UpdateProgress(r.Context(), user.ID, itemID, up)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid watchlist item id")
		return
	}
	if err := h.Service.Remove(r.Context(), user.ID, itemID); err != nil {
		writeWatchlistError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
