package blog

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_SetPublished(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	p := &Post{}
	p.setPublished(false, t1)
	assert.False(t, p.IsPublished)
	assert.Nil(t, p.PublishedAt)

	p.setPublished(true, t1)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, p.IsPublished)
	assert.Equal(t, t1, *p.PublishedAt)

	// staying published keeps the first publication date
	p.setPublished(true, t2)
	assert.Equal(t, t1, *p.PublishedAt)

	p.setPublished(false, t2)
	assert.False(t, p.IsPublished)
	assert.Nil(t, p.PublishedAt)

	p.setPublished(true, t2)
	assert.Equal(t, t2, *p.PublishedAt)
}

func TestIdentity_Roles(t *testing.T) {
	id := Identity{UserID: uuid.New(), Roles: []string{"Editor", RoleAdmin}}
	assert.True(t, id.IsAdmin())
	assert.True(t, id.HasRole("Editor"))
	assert.False(t, id.HasRole("admin"))
	assert.False(t, Identity{}.IsAdmin())
}

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	admin := Identity{UserID: uuid.New(), Roles: []string{RoleAdmin}}
	stranger := Identity{UserID: uuid.New()}

	assert.NoError(t, authorize(Identity{UserID: owner}, owner, false))
	assert.ErrorIs(t, authorize(stranger, owner, true), ErrForbidden)
	assert.ErrorIs(t, authorize(admin, owner, false), ErrForbidden)
	assert.NoError(t, authorize(admin, owner, true))
}

func TestValidateRequest(t *testing.T) {
	err := validateRequest(CreatePostRequest{
		Title:        strings.Repeat("a", 121),
		Slug:         "Not A Slug",
		Introduction: "intro",
		Content:      "body",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, "max", fields["title"])
	assert.Equal(t, "slug", fields["slug"])

	assert.NoError(t, validateRequest(CreatePostRequest{
		Title:        "Hello",
		Slug:         "hello-world",
		Introduction: "intro",
		Content:      "body",
	}))
}
