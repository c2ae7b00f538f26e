package api

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/blog"
)

// CommentRequest carries a comment body
type CommentRequest struct {
	Content string `json:"content"`
}

// ListComments lists a post's comments oldest first
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "post")
	if !ok {
		return
	}
	comments, err := h.service.ListComments(r.Context(), postID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, comments)
}

// AddComment adds a comment by the caller
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "post")
	if !ok {
		return
	}
	var req CommentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	comment, err := h.service.AddComment(r.Context(), blog.AddCommentRequest{PostID: postID, Content: req.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}

// UpdateComment edits a comment; only its author may
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := uuidParam(w, r, "commentID")
	if !ok {
		return
	}
	var req CommentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), blog.UpdateCommentRequest{CommentID: commentID, Content: req.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, comment)
}

// DeleteComment removes a comment
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := uuidParam(w, r, "commentID")
	if !ok {
		return
	}
	found, err := h.service.DeleteComment(r.Context(), commentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeDeleted(w, r, found)
}
