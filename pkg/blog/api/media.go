package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/blog"
)

// multipartOverhead allows for boundaries and part headers around the file.
const multipartOverhead = 64 << 10

// MediaURLResponse carries a direct download URL
type MediaURLResponse struct {
	URL string `json:"url"`
}

// UploadMedia accepts a multipart form with the file in the "file" field
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		badRequest(w, r, "Expected multipart/form-data")
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			badRequest(w, r, "Missing file field")
			return
		}
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				writeError(w, r, err)
				return
			}
			badRequest(w, r, "Malformed multipart body")
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		media, err := h.service.UploadMedia(r.Context(), blog.UploadMediaRequest{
			FileName:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Reader:      part,
		})
		part.Close()
		if err != nil {
			writeError(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, media)
		return
	}
}

func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListMedia(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, files)
}

func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	mediaID, ok := uuidParam(w, r, "mediaID")
	if !ok {
		return
	}
	media, err := h.service.GetMedia(r.Context(), mediaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, media)
}

// GetMediaContent streams the stored bytes
func (h *Handler) GetMediaContent(w http.ResponseWriter, r *http.Request) {
	mediaID, ok := uuidParam(w, r, "mediaID")
	if !ok {
		return
	}
	media, rc, err := h.service.OpenMedia(r.Context(), mediaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", media.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(media.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": media.FileName}))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Failed to stream media", "media_id", mediaID, "error", err)
	}
}

func (h *Handler) GetMediaURL(w http.ResponseWriter, r *http.Request) {
	mediaID, ok := uuidParam(w, r, "mediaID")
	if !ok {
		return
	}
	url, err := h.service.GetMediaURL(r.Context(), mediaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, MediaURLResponse{URL: url})
}

func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	mediaID, ok := uuidParam(w, r, "mediaID")
	if !ok {
		return
	}
	found, err := h.service.DeleteMedia(r.Context(), mediaID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeDeleted(w, r, found)
}
