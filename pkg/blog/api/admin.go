package api

import (
	"net/http"

	"github.com/go-chi/render"
)

// RolesRequest carries the desired role set of a user
type RolesRequest struct {
	Roles []string `json:"roles"`
}

func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPostsForAdmin(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, posts)
}

func (h *Handler) AdminGetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := uuidParam(w, r, "postID")
	if !ok {
		return
	}
	post, err := h.service.GetPostByID(r.Context(), postID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListAllUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, users)
}

func (h *Handler) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

func (h *Handler) AdminListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	posts, err := h.service.ListPostsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, posts)
}

func (h *Handler) AdminGetUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	roles, err := h.service.GetUserRoles(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, RolesRequest{Roles: roles})
}

// AdminSetUserRoles replaces the role set of a user
func (h *Handler) AdminSetUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	var req RolesRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if err := h.service.SetUserRoles(r.Context(), userID, req.Roles); err != nil {
		writeError(w, r, err)
		return
	}
	roles, err := h.service.GetUserRoles(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, RolesRequest{Roles: roles})
}

// AdminRemoveUserContent deletes every post and comment of a user
func (h *Handler) AdminRemoveUserContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userID")
	if !ok {
		return
	}
	summary, err := h.service.RemoveUserContent(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

func (h *Handler) AdminListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoleNames(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, roles)
}
