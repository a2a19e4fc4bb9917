package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"cinetrack/models"
	"cinetrack/services/lists"
)

type listService interface {
	BucketItems(ctx context.Context, userID int64) ([]models.BucketListItem, error)
	AddBucketItem(ctx context.Context, userID, contentID int64) (models.BucketListItem, error)
	MarkBucketWatched(ctx context.Context, userID, itemID int64) error
	DeleteBucketItem(ctx context.Context, userID, itemID int64) error

	CustomLists(ctx context.Context, userID int64) ([]models.CustomList, error)
	GetCustomList(ctx context.Context, userID, listID int64) (models.CustomList, []models.CustomListItem, error)
	CreateCustomList(ctx context.Context, userID int64, name, description string, isPublic bool) (models.CustomList, error)
	UpdateCustomList(ctx context.Context, userID, listID int64, name, description string, isPublic bool) (models.CustomList, error)
	DeleteCustomList(ctx context.Context, userID, listID int64) error
	AddCustomListItem(ctx context.Context, userID, listID, contentID int64, note string) (models.CustomListItem, error)
	RemoveCustomListItem(ctx context.Context, userID, listID, itemID int64) error

	Recommendations(ctx context.Context, userID int64) ([]models.Recommendation, error)
	CreateRecommendation(ctx context.Context, userID, contentID int64, note string, isPublic bool) (models.Recommendation, error)
	DeleteRecommendation(ctx context.Context, userID, recommendationID int64) error

	ReviewsForContent(ctx context.Context, userID, contentID int64) ([]models.Review, error)
	CreateReview(ctx context.Context, userID, contentID int64, description string, isPrivate bool) (models.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID int64, description string, isPrivate bool) (models.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID int64) error

	RateContent(ctx context.Context, userID, contentID int64, score int) (models.Rating, error)
	GetRating(ctx context.Context, userID, contentID int64) (models.Rating, error)
	DeleteRating(ctx context.Context, userID, contentID int64) error
}

var _ listService = (*lists.Service)(nil)

type ListsHandler struct {
	Service listService
}

func NewListsHandler(service listService) *ListsHandler {
	return &ListsHandler{Service: service}
}

func writeListError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lists.ErrContentIDRequired),
		errors.Is(err, lists.ErrNameRequired),
		errors.Is(err, lists.ErrRatingOutOfRange):
		writeError(w, http.StatusBadRequest, KindValidation, err.Error())
	case errors.Is(err, lists.ErrContentUnknown), errors.Is(err, lists.ErrNotFound):
		writeError(w, http.StatusNotFound, KindNotFound, err.Error())
	case errors.Is(err, lists.ErrAlreadyListed):
		writeError(w, http.StatusConflict, KindConflict, err.Error())
	default:
		writeInternalError(w, err)
	}
}

func (h *ListsHandler) BucketList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.Service.BucketItems(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if items == nil {
		items = []models.BucketListItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ListsHandler) AddToBucketList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		ContentID int64 `json:"content_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	item, err := h.Service.AddBucketItem(r.Context(), user.ID, body.ContentID)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ListsHandler) MarkBucketWatched(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid bucket item id")
		return
	}
	if err := h.Service.MarkBucketWatched(r.Context(), user.ID, itemID); err != nil {
		writeListError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) DeleteBucketItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid bucket item id")
		return
	}
	if err := h.Service.DeleteBucketItem(r.Context(), user.ID, itemID); err != nil {
		writeListError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) CustomLists(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	custom, err := h.Service.CustomLists(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if custom == nil {
		custom = []models.CustomList{}
	}
	writeJSON(w, http.StatusOK, custom)
}

func (h *ListsHandler) CreateCustomList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	list, err := h.Service.CreateCustomList(r.Context(), user.ID, body.Name, body.Description, body.IsPublic)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListsHandler) GetCustomList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid list id")
		return
	}
	list, items, err := h.Service.GetCustomList(r.Context(), user.ID, listID)
	if err != nil {
		writeListError(w, err)
		return
	}
	if items == nil {
		items = []models.CustomListItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": list, "items": items})
}

func (h *ListsHandler) UpdateCustomList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid list id")
		return
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	list, err := h.Service.UpdateCustomList(r.Context(), user.ID, listID, body.Name, body.Description, body.IsPublic)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListsHandler) DeleteCustomList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid list id")
		return
	}
	if err := h.Service.DeleteCustomList(r.Context(), user.ID, listID); err != nil {
		writeListError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) AddListItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid list id")
		return
	}
	var body struct {
		ContentID int64  `json:"content_id"`
		Note      string `json:"note"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	item, err := h.Service.AddCustomListItem(r.Context(), user.ID, listID, body.ContentID, body.Note)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ListsHandler) RemoveListItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	listID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid list id")
		return
	}
	itemID, ok := pathID(r, "itemID")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid item id")
		return
	}
	if err := h.Service.RemoveCustomListItem(r.Context(), user.ID, listID, itemID); err != nil {
		writeListError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	recs, err := h.Service.Recommendations(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *ListsHandler) CreateRecommendation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		ContentID int64  `json:"content_id"`
		Note      string `json:"note"`
		IsPublic  bool   `json:"is_public"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	rec, err := h.Service.CreateRecommendation(r.Context(), user.ID, body.ContentID, body.Note, body.IsPublic)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *ListsHandler) DeleteRecommendation(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	recID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid recommendation id")
		return
	}
	if err := h.Service.DeleteRecommendation(r.Context(), user.ID, recID); err != nil {
		writeListError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	contentID, err := strconv.ParseInt(r.URL.Query().Get("content_id"), 10, 64)
	if err != nil || contentID <= 0 {
		writeError(w, http.StatusBadRequest, KindValidation, "content_id query parameter is required")
		return
	}
	reviews, err := h.Service.ReviewsForContent(r.Context(), user.ID, contentID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *ListsHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		ContentID   int64  `json:"content_id"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"is_private"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	review, err := h.Service.CreateReview(r.Context(), user.ID, body.ContentID, body.Description, body.IsPrivate)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *ListsHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	reviewID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid review id")
		return
	}
	var body struct {
		Description string `json:"description"`
		IsPrivate   bool   `json:"is_private"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	review, err := h.Service.UpdateReview(r.Context(), user.ID, reviewID, body.Description, body.IsPrivate)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ListsHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	reviewID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid review id")
		return
	}
	if err := h.Service.DeleteReview(r.Context(), user.ID, reviewID); err != nil {
		writeListError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	contentID, ok := pathID(r, "contentID")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid content id")
		return
	}
	rating, err := h.Service.GetRating(r.Context(), user.ID, contentID)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (h *ListsHandler) PutRating(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	contentID, ok := pathID(r, "contentID")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid content id")
		return
	}
	var body struct {
		Rating int `json:"rating"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	rating, err := h.Service.RateContent(r.Context(), user.ID, contentID, body.Rating)
	if err != nil {
		writeListError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (h *ListsHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	contentID, ok := pathID(r, "contentID")
	if !ok {
		writeError(w, http.StatusBadRequest, KindValidation, "invalid content id")
		return
	}
	if err := h.Service.DeleteRating(r.Context(), user.ID, contentID); err != nil {
		writeListError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
