package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/blog"
	identitymemory "github.com/tendant/simple-blog/pkg/blog/identity/memory"
	"github.com/tendant/simple-blog/pkg/blog/repo/memory"
	memorystorage "github.com/tendant/simple-blog/pkg/blog/storage/memory"
)

type handlerFixture struct {
	router http.Handler
	svc    blog.Service
	users  *identitymemory.Store
	alice  *blog.Identity
	bob    *blog.Identity
	admin  *blog.Identity
}

// setupHandlerTest wires the handler to in-memory components
func setupHandlerTest(t *testing.T, maxUpload int64) *handlerFixture {
	t.Helper()

	users := identitymemory.New()
	f := &handlerFixture{
		users: users,
		alice: &blog.Identity{UserID: uuid.New()},
		bob:   &blog.Identity{UserID: uuid.New()},
		admin: &blog.Identity{UserID: uuid.New(), Roles: []string{blog.RoleAdmin}},
	}
	users.AddUser(blog.User{ID: f.alice.UserID, UserName: "alice"})
	users.AddUser(blog.User{ID: f.bob.UserID, UserName: "bob"})
	users.AddUser(blog.User{ID: f.admin.UserID, UserName: "admin"})

	svc, err := blog.New(
		blog.WithRepository(memory.New()),
		blog.WithIdentityStore(users),
		blog.WithBlobStore("memory", memorystorage.New()),
		blog.WithEventSink(blog.NewNoopEventSink()),
		blog.WithMaxUploadSize(maxUpload),
	)
	require.NoError(t, err)
	require.NoError(t, svc.EnsureAdmin(context.Background(), f.admin.UserID))
	f.svc = svc

	r := chi.NewRouter()
	r.Mount("/", NewHandler(svc, WithMaxUploadBytes(maxUpload)).Routes())
	f.router = r
	return f
}

func (f *handlerFixture) do(t *testing.T, id *blog.Identity, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if id != nil {
		req = req.WithContext(blog.WithIdentity(req.Context(), *id))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *handlerFixture) createPost(t *testing.T, id *blog.Identity, slug string, publish bool) blog.Post {
	t.Helper()
	w := f.do(t, id, http.MethodPost, "/posts", blog.CreatePostRequest{
		Title:        "Post " + slug,
		Slug:         slug,
		Introduction: "intro",
		Content:      "body",
		Publish:      publish,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post blog.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	return post
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{blog.ErrUnauthenticated, http.StatusUnauthorized},
		{blog.ErrForbidden, http.StatusForbidden},
		{blog.ErrPostNotFound, http.StatusNotFound},
		{blog.ErrSlugTaken, http.StatusConflict},
		{&blog.ValidationError{Fields: []blog.FieldError{{Field: "title", Rule: "required"}}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", blog.ErrPayloadTooLarge), http.StatusRequestEntityTooLarge},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{blog.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestGetMe(t *testing.T) {
	f := setupHandlerTest(t, blog.MaxUploadSize)

	w := f.do(t, nil, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, f.admin, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[MeResponse](t, w)
	assert.Equal(t, f.admin.UserID, me.UserID)
	assert.True(t, me.IsAdmin)
}

func TestPosts_Lifecycle(t *testing.T) {
	f := setupHandlerTest(t, blog.MaxUploadSize)

	post := f.createPost(t, f.alice, "hello-world", false)
	assert.False(t, post.IsPublished)
	assert.Nil(t, post.PublishedAt)

	// drafts stay hidden from the public views
	w := f.do(t, nil, http.MethodGet, "/posts/hello-world", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	update := blog.UpdatePostRequest{
		Title:        "Hello again",
		Slug:         "hello-world",
		Introduction: "intro",
		Content:      "body",
		Publish:      true,
	}
	w = f.do(t, f.alice, http.MethodPut, "/posts/"+post.ID.String(), update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[blog.Post](t, w)
	assert.True(t, updated.IsPublished)
	assert.NotNil(t, updated.PublishedAt)

	w = f.do(t, nil, http.MethodGet, "/posts/hello-world", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello again", decode[blog.Post](t, w).Title)

	w = f.do(t, nil, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]blog.Post](t, w), 1)

	w = f.do(t, f.alice, http.MethodGet, "/me/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]blog.Post](t, w), 1)

	w = f.do(t, f.alice, http.MethodDelete, "/posts/"+post.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[DeletedResponse](t, w).Deleted)

	w = f.do(t, f.alice, http.MethodDelete, "/posts/"+post.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode[DeletedResponse](t, w).Deleted)
}

func TestPosts_Errors(t *testing.T) {
	f := setupHandlerTest(t, blog.MaxUploadSize)
	post := f.createPost(t, f.alice, "taken", true)

	t.Run("Anonymous create", func(t *testing.T) {
		w := f.do(t, nil, http.MethodPost, "/posts", blog.CreatePostRequest{Title: "x", Slug: "x", Introduction: "x", Content: "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Validation", func(t *testing.T) {
		w := f.do(t, f.alice, http.MethodPost, "/posts", blog.CreatePostRequest{Slug: "Not A Slug"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.NotEmpty(t, resp.Fields)
	})

	t.Run("Duplicate slug", func(t *testing.T) {
		w := f.do(t, f.bob, http.MethodPost, "/posts", blog.CreatePostRequest{Title: "x", Slug: "taken", Introduction: "x", Content: "x"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Foreign edit", func(t *testing.T) {
		w := f.do(t, f.bob, http.MethodGet, "/posts/"+post.ID.String()+"/edit", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Foreign delete", func(t *testing.T) {
		w := f.do(t, f.bob, http.MethodDelete, "/posts/"+post.ID.String(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Bad id", func(t *testing.T) {
		w := f.do(t, f.alice, http.MethodDelete, "/posts/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{"))
		req = req.WithContext(blog.WithIdentity(req.Context(), *f.alice))
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestComments(t *testing.T) {
	f := setupHandlerTest(t, blog.MaxUploadSize)
	post := f.createPost(t, f.alice, "discussed", true)
	base := "/posts/" + post.ID.String() + "/comments"

	w := f.do(t, nil, http.MethodPost, base, CommentRequest{Content: "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, f.bob, http.MethodPost, base, CommentRequest{Content: "first"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[blog.Comment](t, w)
	assert.Equal(t, f.bob.UserID, comment.AuthorID)

	w = f.do(t, f.alice, http.MethodPut, "/comments/"+comment.ID.String(), CommentRequest{Content: "hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, f.bob, http.MethodPut, "/comments/"+comment.ID.String(), CommentRequest{Content: "edited"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edited", decode[blog.Comment](t, w).Content)

	w = f.do(t, nil, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]blog.Comment](t, w), 1)

	w = f.do(t, f.admin, http.MethodDelete, "/comments/"+comment.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[DeletedResponse](t, w).Deleted)

	w = f.do(t, f.bob, http.MethodPost, "/posts/"+uuid.NewString()+"/comments", CommentRequest{Content: "orphan"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategories(t *testing.T) {
	f := setupHandlerTest(t, blog.MaxUploadSize)

	w := f.do(t, nil, http.MethodPost, "/categories", CategoryRequest{Name: "Go Tips"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, f.alice, http.MethodPost, "/categories", CategoryRequest{Name: "Go Tips"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decode[blog.Category](t, w)
	assert.Equal(t, "go-tips", category.Slug)

	w = f.do(t, f.bob, http.MethodPost, "/categories", CategoryRequest{Name: "go tips"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, f.alice, http.MethodPost, "/posts", blog.CreatePostRequest{
		Title: "Tip", Slug: "tip", Introduction: "x", Content: "x", Publish: true, CategoryID: &category.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, nil, http.MethodGet, "/categories/go-tips/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decode[[]blog.Post](t, w)
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].Category)
	assert.Equal(t, "Go Tips", posts[0].Category.Name)

	w = f.do(t, f.alice, http.MethodPut, "/categories/"+category.ID.String(), CategoryRequest{Name: "Rust Tips"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rust-tips", decode[blog.Category](t, w).Slug)

	w = f.do(t, f.alice, http.MethodDelete, "/categories/"+category.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, nil, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]blog.Category](t, w))
}

func upload(t *testing.T, f *handlerFixture, id *blog.Identity, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if id != nil {
		req = req.WithContext(blog.WithIdentity(req.Context(), *id))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestMedia_UploadAndStream(t *testing.T) {
	f := setupHandlerTest(t, blog.MaxUploadSize)

	w := upload(t, f, f.alice, "notes.txt", []byte("hello media"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	media := decode[blog.MediaFile](t, w)
	assert.Equal(t, "notes.txt", media.FileName)
	assert.Equal(t, int64(len("hello media")), media.Size)
	assert.True(t, strings.HasPrefix(media.ContentType, "text/plain"))
	require.NotNil(t, media.UploaderID)
	assert.Equal(t, f.alice.UserID, *media.UploaderID)

	w = f.do(t, nil, http.MethodGet, "/media/"+media.ID.String()+"/content", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello media", w.Body.String())
	assert.Equal(t, media.ContentType, w.Header().Get("Content-Type"))

	w = f.do(t, nil, http.MethodGet, "/media", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]blog.MediaFile](t, w), 1)

	w = f.do(t, f.bob, http.MethodDelete, "/media/"+media.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, f.alice, http.MethodDelete, "/media/"+media.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, nil, http.MethodGet, "/media/"+media.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMedia_UploadErrors(t *testing.T) {
	f := setupHandlerTest(t, 16)

	w := upload(t, f, f.alice, "big.bin", bytes.Repeat([]byte("x"), 1024))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = f.do(t, f.alice, http.MethodPost, "/media", map[string]string{"file": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin(t *testing.T) {
	f := setupHandlerTest(t, blog.MaxUploadSize)
	post := f.createPost(t, f.alice, "draft", false)

	w := f.do(t, f.bob, http.MethodPost, "/posts/"+post.ID.String()+"/comments", CommentRequest{Content: "nice"})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("Gate", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.do(t, nil, http.MethodGet, "/admin/posts", nil).Code)
		assert.Equal(t, http.StatusForbidden, f.do(t, f.alice, http.MethodGet, "/admin/posts", nil).Code)
	})

	t.Run("Posts", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodGet, "/admin/posts", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]blog.Post](t, w), 1)

		w = f.do(t, f.admin, http.MethodGet, "/admin/posts/"+post.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "draft", decode[blog.Post](t, w).Slug)

		w = f.do(t, f.admin, http.MethodGet, "/admin/users/"+f.alice.UserID.String()+"/posts", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]blog.Post](t, w), 1)
	})

	t.Run("Users", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodGet, "/admin/users", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]blog.User](t, w), 3)

		w = f.do(t, f.admin, http.MethodGet, "/admin/users/"+f.bob.UserID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bob", decode[blog.User](t, w).UserName)

		w = f.do(t, f.admin, http.MethodGet, "/admin/users/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Roles", func(t *testing.T) {
		require.NoError(t, f.users.EnsureRole(context.Background(), "Editor"))

		w := f.do(t, f.admin, http.MethodGet, "/admin/roles", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{blog.RoleAdmin, "Editor"}, decode[[]string](t, w))

		target := "/admin/users/" + f.bob.UserID.String() + "/roles"
		w = f.do(t, f.admin, http.MethodPut, target, RolesRequest{Roles: []string{"Editor"}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, []string{"Editor"}, decode[RolesRequest](t, w).Roles)

		w = f.do(t, f.admin, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Editor"}, decode[RolesRequest](t, w).Roles)

		w = f.do(t, f.admin, http.MethodPut, target, RolesRequest{Roles: []string{"Editor", "Ghost"}})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		fields := decode[ErrorResponse](t, w).Fields
		require.Len(t, fields, 1)
		assert.Equal(t, "Ghost", fields[0].Param)
	})

	t.Run("RemoveContent", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodDelete, "/admin/users/"+f.alice.UserID.String()+"/content", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		summary := decode[blog.RemovalSummary](t, w)
		assert.Equal(t, int64(1), summary.PostsRemoved)
		assert.Equal(t, int64(1), summary.CommentsRemoved)
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slogJSON(&buf)

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tea", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/tea", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
}

func slogJSON(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}
