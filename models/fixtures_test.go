package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFixtures(t *testing.T) {
	t.Run("password survives decoding", func(t *testing.T) {
		fixtures, err := DecodeFixtures(strings.NewReader(`{
			"users": [{"id": "u1", "username": "alice", "email": "a@b.c", "password": "pw", "bio": "hi"}],
			"articles": [{"id": "a1", "slug": "one", "title": "One", "description": "d", "body": "b",
				"createdAt": "2024-01-02T03:04:05Z", "updatedAt": null, "authorId": "u1"}],
			"tagged": [{"articleId": "a1", "tag": "go"}]
		}`))
		require.NoError(t, err)

		require.Len(t, fixtures.Users, 1)
		user := fixtures.Users[0].ToUser()
		assert.Equal(t, "pw", user.Password)
		require.NotNil(t, user.Bio)
		assert.Equal(t, "hi", *user.Bio)
		assert.Nil(t, user.Avatar)

		require.Len(t, fixtures.Articles, 1)
		assert.Nil(t, fixtures.Articles[0].UpdatedAt)
		assert.Equal(t, 2024, fixtures.Articles[0].CreatedAt.Year())
		assert.Equal(t, []Tagged{{ArticleID: "a1", Tag: "go"}}, fixtures.Tagged)
	})

	t.Run("malformed input", func(t *testing.T) {
		for name, input := range map[string]string{
			"syntax":        `{"users": [}`,
			"unknown field": `{"user": []}`,
			"wrong type":    `{"tags": "go"}`,
			"empty":         ``,
			"trailing":      `{} {}`,
		} {
			_, err := DecodeFixtures(strings.NewReader(input))
			assert.Error(t, err, name)
		}
	})
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tags": [{"name": "go"}]}`), 0o600))

	fixtures, err := LoadFixtures(path)
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Name: "go"}}, fixtures.Tags)

	_, err = LoadFixtures(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
