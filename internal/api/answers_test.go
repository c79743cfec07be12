package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAnswerDecodesWrappedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/answers/3/answer", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "forty two", body["answer"])
		assert.Equal(t, "u1", body["user_id"])

		w.Write([]byte(`{"message":"Answer added successfully","answer":{"_id":12,"answer":"forty two","user_id":"u1"}}`))
	}))
	defer server.Close()

	c := New(server.URL, staticToken("t"))
	ans, err := c.CreateAnswer(context.Background(), "3", "forty two", "u1")
	require.NoError(t, err)
	assert.Equal(t, "12", ans.ID.String())
	assert.Equal(t, "forty two", ans.Text)
}

func TestCreateAnswerDecodesBareResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"a1","answer":"42"}`))
	}))
	defer server.Close()

	c := New(server.URL, staticToken("t"))
	ans, err := c.CreateAnswer(context.Background(), "i1", "42", "")
	require.NoError(t, err)
	assert.Equal(t, "a1", ans.ID.String())
	assert.Equal(t, "42", ans.Text)
}

func TestCreateAnswerOmitsEmptyUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["user_id"]
		assert.False(t, present)
		w.Write([]byte(`{"_id":1,"answer":"x"}`))
	}))
	defer server.Close()

	c := New(server.URL, staticToken("t"))
	_, err := c.CreateAnswer(context.Background(), "1", "x", "")
	require.NoError(t, err)
}

func TestUpdateAnswerPutsToAnswerScopedPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/answers/3/answer/12", r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new text", body["answer"])
	}))
	defer server.Close()

	c := New(server.URL, staticToken("t"))
	require.NoError(t, c.UpdateAnswer(context.Background(), "3", "12", "new text"))
}

func TestDeleteAnswerUsesDeleteMethod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/answers/3/answer/12", r.URL.Path)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
	}))
	defer server.Close()

	c := New(server.URL, staticToken("t"))
	require.NoError(t, c.DeleteAnswer(context.Background(), "3", "12"))
}
