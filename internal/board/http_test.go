package board

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/qna/internal/api"
)

type fixedToken string

func (f fixedToken) Token() string { return string(f) }

// answerServer is a minimal stand-in for the authority, holding one question.
type answerServer struct {
	mu      sync.Mutex
	nextID  int
	answers []map[string]any
}

func (s *answerServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "description": "What is the answer?", "answers": s.answers},
		})
	})
	mux.HandleFunc("POST /answers/1/answer", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Answer string `json:"answer"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.nextID++
		ans := map[string]any{"_id": s.nextID, "answer": body.Answer}
		s.answers = append(s.answers, ans)
		json.NewEncoder(w).Encode(map[string]any{"message": "Answer added successfully", "answer": ans})
	})
	mux.HandleFunc("PUT /answers/1/answer/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var body struct {
			Answer string `json:"answer"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, a := range s.answers {
			if fmt.Sprint(a["_id"]) == id {
				a["answer"] = body.Answer
				json.NewEncoder(w).Encode(map[string]any{"message": "Answer updated successfully"})
				return
			}
		}
		http.Error(w, `{"detail":"Answer not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("DELETE /answers/1/answer/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.mu.Lock()
		defer s.mu.Unlock()
		kept := s.answers[:0]
		for _, a := range s.answers {
			if fmt.Sprint(a["_id"]) != id {
				kept = append(kept, a)
			}
		}
		s.answers = kept
		json.NewEncoder(w).Encode(map[string]any{"message": "Answer deleted successfully"})
	})
	return mux
}

// The full write-through cycle over real HTTP: submit, edit, delete, and a
// final refresh agreeing with the local view at every step.
func TestWriteThroughOverHTTP(t *testing.T) {
	srv := httptest.NewServer((&answerServer{}).handler())
	defer srv.Close()

	b := New(api.New(srv.URL, fixedToken("tok")), "")
	ctx := context.Background()
	require.NoError(t, b.Refresh(ctx))
	require.Len(t, b.Items(), 1)
	require.Empty(t, b.Items()[0].Answers)

	require.NoError(t, b.SubmitAnswer(ctx, "1", "42"))
	answers := b.Items()[0].Answers
	require.Len(t, answers, 1)
	assert.Equal(t, "42", answers[0].Text)
	id := answers[0].ID

	require.NoError(t, b.EditAnswer(ctx, "1", id, "43"))
	assert.Equal(t, "43", b.Items()[0].Answers[0].Text)

	// the server agrees with the local view
	require.NoError(t, b.Refresh(ctx))
	require.Len(t, b.Items()[0].Answers, 1)
	assert.Equal(t, "43", b.Items()[0].Answers[0].Text)

	require.NoError(t, b.RemoveAnswer(ctx, "1", id))
	assert.Empty(t, b.Items()[0].Answers)

	require.NoError(t, b.Refresh(ctx))
	assert.Empty(t, b.Items()[0].Answers)
}
