// Package api exposes the blog service over HTTP with chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-blog/pkg/blog"
)

// Handler serves the blog REST endpoints
type Handler struct {
	service        blog.Service
	maxUploadBytes int64
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithMaxUploadBytes caps the size of media uploads read from a request
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxUploadBytes = n
	}
}

// NewHandler creates a handler for service
func NewHandler(service blog.Service, opts ...HandlerOption) *Handler {
	h := &Handler{service: service, maxUploadBytes: blog.MaxUploadSize}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the router for the blog endpoints. Identity is expected on
// the request context already (see the auth package).
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/me", h.GetMe)
	r.Get("/me/posts", h.ListMyPosts)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPublishedPosts)
		r.Post("/", h.CreatePost)
		r.Get("/{post}", h.GetPublishedPost)
		r.Put("/{post}", h.UpdatePost)
		r.Delete("/{post}", h.DeletePost)
		r.Get("/{post}/edit", h.GetPostForEdit)
		r.Get("/{post}/comments", h.ListComments)
		r.Post("/{post}/comments", h.AddComment)
	})

	r.Route("/comments", func(r chi.Router) {
		r.Put("/{commentID}", h.UpdateComment)
		r.Delete("/{commentID}", h.DeleteComment)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Put("/{category}", h.UpdateCategory)
		r.Delete("/{category}", h.DeleteCategory)
		r.Get("/{category}/posts", h.ListPostsByCategory)
	})

	r.Route("/media", func(r chi.Router) {
		r.Get("/", h.ListMedia)
		r.Post("/", h.UploadMedia)
		r.Get("/{mediaID}", h.GetMedia)
		r.Get("/{mediaID}/content", h.GetMediaContent)
		r.Get("/{mediaID}/url", h.GetMediaURL)
		r.Delete("/{mediaID}", h.DeleteMedia)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireAdmin)
		r.Get("/posts", h.AdminListPosts)
		r.Get("/posts/{postID}", h.AdminGetPost)
		r.Get("/users", h.AdminListUsers)
		r.Get("/users/{userID}", h.AdminGetUser)
		r.Get("/users/{userID}/posts", h.AdminListUserPosts)
		r.Get("/users/{userID}/roles", h.AdminGetUserRoles)
		r.Put("/users/{userID}/roles", h.AdminSetUserRoles)
		r.Delete("/users/{userID}/content", h.AdminRemoveUserContent)
		r.Get("/roles", h.AdminListRoles)
	})

	return r
}

// MeResponse describes the calling identity
type MeResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Roles   []string  `json:"roles"`
	IsAdmin bool      `json:"is_admin"`
}

// GetMe returns the resolved caller identity
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.CurrentIdentity(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	roles := id.Roles
	if roles == nil {
		roles = []string{}
	}
	render.JSON(w, r, MeResponse{UserID: id.UserID, Roles: roles, IsAdmin: id.IsAdmin()})
}

// RequireAdmin rejects callers without the admin role before the route runs.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.service.CurrentIdentity(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !id.IsAdmin() {
			writeError(w, r, blog.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// uuidParam parses a UUID URL parameter, writing 400 on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		badRequest(w, r, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// DeletedResponse reports whether a delete found its target
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

func writeDeleted(w http.ResponseWriter, r *http.Request, found bool) {
	if !found {
		render.Status(r, http.StatusNotFound)
	}
	render.JSON(w, r, DeletedResponse{Deleted: found})
}
