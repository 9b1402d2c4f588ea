package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alisharafi88/Store-api/internal/catalog"
)

type CommentHandler struct {
	repo catalog.Repository
}

func NewCommentHandler(repo catalog.Repository) *CommentHandler {
	return &CommentHandler{repo: repo}
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load comments")
		return
	}

	comments, err := h.repo.ListComments(ctx, productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load comments")
		return
	}
	if comments == nil {
		comments = []catalog.Comment{}
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req struct {
		Name string `json:"name"`
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "name and body are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}

	c := &catalog.Comment{ProductID: productID, Name: req.Name, Body: req.Body}
	if err := h.repo.CreateComment(ctx, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}

	writeJSON(w, http.StatusCreated, c)
}
