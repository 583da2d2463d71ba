package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkshelf/bookmark-service/internal/domain"
	apperrors "github.com/linkshelf/bookmark-service/pkg/util/errorutil"
)

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(BookmarkRequest{Access: "SECRET"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	fields := apperrors.ToDomainError(err).Details["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "required", "uri": "required", "access": "oneof"}, fields)
}

func TestValidate_AcceptsWellFormedPayloads(t *testing.T) {
	assert.NoError(t, Validate(UserCredentialsRequest{Username: "alice", Password: "pw"}))
	assert.NoError(t, Validate(BookmarkRequest{Name: "go", URI: "https://go.dev", Access: "private"}))
	assert.NoError(t, Validate(BookmarkRequest{Name: strings.Repeat("é", 256), URI: "https://go.dev"}))
	assert.Error(t, Validate(BookmarkRequest{Name: strings.Repeat("é", 257), URI: "https://go.dev"}))
	assert.Error(t, Validate(ChangePasswordRequest{CurrentPassword: "pw"}))
}

func TestNewAuthResponse_OmitsZeroExpiry(t *testing.T) {
	assert.Nil(t, NewAuthResponse("tok", time.Time{}).ExpiresAt)

	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	resp := NewAuthResponse("tok", exp)
	require.NotNil(t, resp.ExpiresAt)
	assert.True(t, resp.ExpiresAt.Equal(exp))
}

func TestNewBookmarkResponse_MapsAccess(t *testing.T) {
	resp := NewBookmarkResponse(&domain.Bookmark{ID: "01", Name: "n", URI: "u", Private: true})
	assert.Equal(t, domain.AccessPrivate, resp.Access)

	list := NewBookmarkList([]domain.Bookmark{{Name: "a"}, {Name: "b"}})
	require.Len(t, list, 2)
	assert.Equal(t, domain.AccessPublic, list[0].Access)
	assert.Equal(t, "b", list[1].Name)
}
