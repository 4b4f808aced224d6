package notify

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_Notify(t *testing.T) {
	var buf bytes.Buffer
	n := &Terminal{Out: &buf}

	err := n.Notify(context.Background(), "Prayer time", "Morning prayer in 5 minutes")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Prayer time")
	assert.Contains(t, out, "Morning prayer in 5 minutes")
}

func TestPushover_Notify(t *testing.T) {
	var gotToken, gotUser, gotTitle, gotMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotToken = r.PostForm.Get("token")
		gotUser = r.PostForm.Get("user")
		gotTitle = r.PostForm.Get("title")
		gotMessage = r.PostForm.Get("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewPushover("app-token", "user-key")
	n.endpoint = srv.URL

	err := n.Notify(context.Background(), "Prayer time", "Evening prayer")
	require.NoError(t, err)

	assert.Equal(t, "app-token", gotToken)
	assert.Equal(t, "user-key", gotUser)
	assert.Equal(t, "Prayer time", gotTitle)
	assert.Equal(t, "Evening prayer", gotMessage)
}

func TestPushover_Notify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":["user identifier is invalid"]}`))
	}))
	defer srv.Close()

	n := NewPushover("app-token", "bad-user")
	n.endpoint = srv.URL

	err := n.Notify(context.Background(), "Prayer time", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "user identifier is invalid")
}

func TestPushover_Notify_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewPushover("app-token", "user-key")
	n.endpoint = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Notify(ctx, "Prayer time", "body")
	require.Error(t, err)
}
