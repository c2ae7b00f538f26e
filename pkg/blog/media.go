package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Media operations

// UploadMedia stores the bytes under a freshly generated object key and
// registers the file. Anonymous uploads are recorded without an uploader.
func (s *service) UploadMedia(ctx context.Context, req UploadMediaRequest) (*MediaFile, error) {
	var uploader *uuid.UUID
	caller, err := s.resolver.CurrentIdentity(ctx)
	switch {
	case err == nil:
		uploader = &caller.UserID
	case !errors.Is(err, ErrUnauthenticated):
		return nil, err
	}

	req.FileName = path.Base(strings.ReplaceAll(strings.TrimSpace(req.FileName), "\\", "/"))
	if req.FileName == "." || req.FileName == "/" {
		req.FileName = ""
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Reader == nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "file", Rule: "required"}}}
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("no blob store configured: %w", ErrStorageUnavailable)
	}
	if req.Size > s.maxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, req.Size, s.maxUploadSize)
	}

	data, err := io.ReadAll(io.LimitReader(req.Reader, s.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxUploadSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrPayloadTooLarge, s.maxUploadSize)
	}

	detected := mimetype.Detect(data)
	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detected.String()
	}
	ext := strings.ToLower(path.Ext(req.FileName))
	if ext == "" {
		ext = detected.Extension()
	}

	media := &MediaFile{
		ID:             uuid.New(),
		FileName:       req.FileName,
		ObjectKey:      uuid.NewString() + ext,
		StorageBackend: s.blobStoreName,
		ContentType:    contentType,
		Size:           int64(len(data)),
		UploadedAt:     s.now(),
		UploaderID:     uploader,
	}

	locator, err := s.blobStore.Upload(ctx, bytes.NewReader(data), UploadParams{
		ObjectKey: media.ObjectKey,
		MimeType:  contentType,
		Size:      media.Size,
	})
	if err != nil {
		return nil, &MediaError{MediaID: media.ID, Op: "upload", Err: err}
	}
	media.Locator = locator

	if err := s.repository.CreateMediaFile(ctx, media); err != nil {
		if derr := s.blobStore.Delete(ctx, media.ObjectKey); derr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned upload", "object_key", media.ObjectKey, "error", derr)
		}
		return nil, &MediaError{MediaID: media.ID, Op: "register", Err: err}
	}

	s.notify(ctx, "media_uploaded", s.eventSink.MediaUploaded(ctx, media))
	return media, nil
}

func (s *service) GetMedia(ctx context.Context, id uuid.UUID) (*MediaFile, error) {
	return s.repository.GetMediaFile(ctx, id)
}

// ListMedia returns registered files newest first.
func (s *service) ListMedia(ctx context.Context) ([]*MediaFile, error) {
	return s.repository.ListMediaFiles(ctx)
}

// OpenMedia returns the record and a reader over its bytes. The caller must
// close the reader.
func (s *service) OpenMedia(ctx context.Context, id uuid.UUID) (*MediaFile, io.ReadCloser, error) {
	media, err := s.repository.GetMediaFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.blobStore == nil {
		return nil, nil, fmt.Errorf("no blob store configured: %w", ErrStorageUnavailable)
	}
	rc, err := s.blobStore.Download(ctx, media.ObjectKey)
	if err != nil {
		return nil, nil, &MediaError{MediaID: id, Op: "open", Err: err}
	}
	return media, rc, nil
}

// GetMediaURL returns a URL the bytes can be fetched from directly.
func (s *service) GetMediaURL(ctx context.Context, id uuid.UUID) (string, error) {
	media, err := s.repository.GetMediaFile(ctx, id)
	if err != nil {
		return "", err
	}
	if s.blobStore == nil {
		return "", fmt.Errorf("no blob store configured: %w", ErrStorageUnavailable)
	}
	url, err := s.blobStore.GetDownloadURL(ctx, media.ObjectKey, media.FileName)
	if err != nil {
		return "", &MediaError{MediaID: id, Op: "url", Err: err}
	}
	return url, nil
}

// DeleteMedia removes the record and then the stored bytes. The uploader or
// an admin may delete; files without an uploader need the admin role.
func (s *service) DeleteMedia(ctx context.Context, id uuid.UUID) (bool, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return false, err
	}
	media, err := s.repository.GetMediaFile(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	owner := uuid.Nil
	if media.UploaderID != nil {
		owner = *media.UploaderID
	}
	if err := authorize(caller, owner, true); err != nil {
		return false, &MediaError{MediaID: id, Op: "delete", Err: err}
	}

	if err := s.repository.DeleteMediaFile(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, &MediaError{MediaID: id, Op: "delete", Err: err}
	}
	if s.blobStore != nil {
		if err := s.blobStore.Delete(ctx, media.ObjectKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete media bytes", "media_id", id, "object_key", media.ObjectKey, "error", err)
		}
	}
	return true, nil
}
