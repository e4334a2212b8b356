package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-cms/pkg/apperr"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestBuildNewArticle(t *testing.T) {
	raw := "---\ntitle: Café Crème\ndescription: Short\ntags: [a, b]\n---\n\nBody"

	art, err := BuildNewArticle(raw, "fr", boolPtr(true))
	require.NoError(t, err)

	assert.Equal(t, "cafe-creme", art.Slug)
	assert.Equal(t, "fr", art.Locale)
	assert.Equal(t, "Café Crème", art.Title)
	require.NotNil(t, art.Description)
	assert.Equal(t, "Short", *art.Description)
	assert.Nil(t, art.Category)
	assert.Nil(t, art.Author)
	assert.Equal(t, []string{"a", "b"}, art.Tags)
	assert.Equal(t, "Body", art.Content)
	assert.True(t, art.Published)
}

func TestBuildNewArticle_Defaults(t *testing.T) {
	art, err := BuildNewArticle("---\ntitle: Plain\ncategory: \"\"\n---\ntext", "en", nil)
	require.NoError(t, err)

	assert.False(t, art.Published)
	assert.Equal(t, []string{}, art.Tags)
	assert.Nil(t, art.Category)
}

func TestBuildNewArticle_TitleRequired(t *testing.T) {
	for _, raw := range []string{"no header at all", "---\ndescription: x\n---\nbody", "---\ntitle: \"!!!\"\n---\n"} {
		_, err := BuildNewArticle(raw, "fr", nil)
		require.Error(t, err, raw)

		var appErr *apperr.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperr.CodeValidation, appErr.Code)
		assert.Equal(t, http.StatusBadRequest, appErr.Status)
	}
}

func TestBuildArticleUpdate_OnlySuppliedFields(t *testing.T) {
	upd, err := BuildArticleUpdate(nil, nil, boolPtr(false))
	require.NoError(t, err)

	assert.Nil(t, upd.Content)
	assert.Nil(t, upd.Title)
	assert.Nil(t, upd.Slug)
	assert.Nil(t, upd.Locale)
	assert.False(t, upd.SetTags)
	require.NotNil(t, upd.Published)
	assert.False(t, *upd.Published)
}

func TestBuildArticleUpdate_TitleRecomputesSlug(t *testing.T) {
	raw := "---\ntitle: Nouveau Titre\ncategory: guides\n---\nNew body"

	upd, err := BuildArticleUpdate(strPtr(raw), strPtr("fr"), nil)
	require.NoError(t, err)

	require.NotNil(t, upd.Title)
	assert.Equal(t, "Nouveau Titre", *upd.Title)
	require.NotNil(t, upd.Slug)
	assert.Equal(t, "nouveau-titre", *upd.Slug)
	require.NotNil(t, upd.Content)
	assert.Equal(t, "New body", *upd.Content)
	require.NotNil(t, upd.Category)
	assert.Equal(t, "guides", *upd.Category)
	assert.Nil(t, upd.Description)
	assert.Nil(t, upd.Author)
	assert.False(t, upd.SetTags)
	assert.Nil(t, upd.Published)
}

func TestBuildArticleUpdate_NoTitleKeepsSlug(t *testing.T) {
	upd, err := BuildArticleUpdate(strPtr("---\ntags: []\n---\nbody only"), nil, nil)
	require.NoError(t, err)

	assert.Nil(t, upd.Title)
	assert.Nil(t, upd.Slug)
	assert.True(t, upd.SetTags)
	assert.Empty(t, upd.Tags)
}
