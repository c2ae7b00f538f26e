package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/blog"
)

// ListPublishedPosts lists published posts newest first
func (h *Handler) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPublishedPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, posts)
}

// GetPublishedPost returns a published post by slug
func (h *Handler) GetPublishedPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPublishedPostBySlug(r.Context(), chi.URLParam(r, "post"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// ListMyPosts lists the caller's posts, drafts included
func (h *Handler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListMyPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, posts)
}

// GetPostForEdit returns a post for its owner
func (h *Handler) GetPostForEdit(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "post")
	if !ok {
		return
	}
	post, err := h.service.GetPostForEdit(r.Context(), postID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// CreatePost creates a post owned by the caller
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req blog.CreatePostRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	post, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// UpdatePost replaces a post's fields
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "post")
	if !ok {
		return
	}
	var req blog.UpdatePostRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	req.PostID = postID

	post, err := h.service.UpdatePost(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// DeletePost removes a post and its comments
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "post")
	if !ok {
		return
	}
	found, err := h.service.DeletePost(r.Context(), postID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeDeleted(w, r, found)
}
