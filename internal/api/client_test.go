package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticToken is a TokenProvider with a fixed value.
type staticToken string

func (s staticToken) Token() string { return string(s) }

// tokenBox is a TokenProvider whose value can change between requests.
type tokenBox struct {
	mu  sync.Mutex
	tok string
}

func (b *tokenBox) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tok
}

func (b *tokenBox) set(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tok = tok
}

func TestItemsSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":1,"description":"Q1","answers":[{"_id":7,"answer":"yes","user_id":"u1"}]}]`))
	}))
	defer server.Close()

	c := New(server.URL, staticToken("test-token"))
	items, err := c.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Q1", items[0].Description)
	require.Len(t, items[0].Answers, 1)
	assert.Equal(t, "yes", items[0].Answers[0].Text)
	assert.Equal(t, "7", items[0].Answers[0].ID.String())
}

// A missing token does not short-circuit: the request still goes out without
// a header and fails like any other rejected call.
func TestMissingTokenStillAttemptsRequest(t *testing.T) {
	var sawAuth string
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		sawAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer server.Close()

	c := New(server.URL, staticToken(""))
	_, err := c.Items(context.Background())

	assert.Equal(t, 1, hits)
	assert.Empty(t, sawAuth)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, "Could not validate credentials", se.Detail)
}

func TestTokenReadFreshOnEveryRequest(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	box := &tokenBox{tok: "first"}
	c := New(server.URL, box)

	_, err := c.Items(context.Background())
	require.NoError(t, err)

	// a clear between two calls must be observed by the second one
	box.set("")
	_, err = c.Items(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"Bearer first", ""}, seen)
}

func TestTransportFailureIsNetError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	c := New(server.URL, staticToken("t"))
	_, err := c.Items(context.Background())

	var ne *NetError
	require.ErrorAs(t, err, &ne)
	var se *StatusError
	assert.False(t, errors.As(err, &se), "transport and server failures stay distinguishable")
}

func TestStatusErrorFallsBackToRawBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("it broke"))
	}))
	defer server.Close()

	c := New(server.URL, staticToken("t"))
	_, err := c.Items(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "it broke", se.Detail)
}
