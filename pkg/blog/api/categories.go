package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/blog"
)

// CategoryRequest carries a category name
type CategoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, categories)
}

// ListPostsByCategory lists published posts of the category with the given
// slug; an unknown slug yields an empty list.
func (h *Handler) ListPostsByCategory(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPublishedPostsByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, posts)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	category, err := h.service.CreateCategory(r.Context(), blog.CreateCategoryRequest{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := uuidParam(w, r, "category")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), blog.UpdateCategoryRequest{CategoryID: categoryID, Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := uuidParam(w, r, "category")
	if !ok {
		return
	}
	found, err := h.service.DeleteCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeDeleted(w, r, found)
}
