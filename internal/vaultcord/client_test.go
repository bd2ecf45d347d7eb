package vaultcord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/servers", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "My Server", body["name"])
		assert.Equal(t, float64(42), body["botId"])
		assert.Equal(t, "123", body["serverId"])

		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	require.NoError(t, c.RegisterServer(context.Background(), "My Server", "42", "123"))
}

func TestRegisterServerConflictIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"success": false, "message": "already exists"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	assert.NoError(t, c.RegisterServer(context.Background(), "n", "1", "2"))
}

func TestPullMembersFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/members/pull/123", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "123", body["guildid"])
		assert.Equal(t, float64(30), body["limit"])

		w.Write([]byte(`{"success": false, "message": "no members available"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	err := c.PullMembers(context.Background(), "123", 30)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "no members available", apiErr.Message)
}
