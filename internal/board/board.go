// Package board holds the client's local view of the items collection and
// reconciles it with the remote authority.
//
// Every mutation is write-through: the remote call must succeed before the
// local view changes. There is no optimistic update and therefore no rollback
// path. Failures land in a single most-recent-error slot; a successful
// operation clears it so a stale message never outlives its relevance.
package board

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/idilsaglam/qna/internal/api"
	"github.com/idilsaglam/qna/internal/model"
)

// ErrInFlight is returned when the same answer-scoped request is already
// outstanding. Duplicate edits/deletes of one answer are rejected instead of
// racing; duplicate creates are two distinct user intents and are allowed.
var ErrInFlight = errors.New("request already in flight")

// Remote is the slice of the API client the board needs.
type Remote interface {
	Items(ctx context.Context) ([]model.Item, error)
	CreateAnswer(ctx context.Context, itemID model.ID, text, userID string) (model.Answer, error)
	UpdateAnswer(ctx context.Context, itemID, answerID model.ID, text string) error
	DeleteAnswer(ctx context.Context, itemID, answerID model.ID) error
}

type op int

const (
	opEdit op = iota
	opRemove
)

type flightKey struct {
	op     op
	item   model.ID
	answer model.ID
}

// Board is safe for concurrent use: the UI loop is single-threaded, but each
// remote call runs in its own goroutine.
type Board struct {
	remote Remote
	userID string

	mu       sync.Mutex
	items    []model.Item
	lastErr  string
	inflight map[flightKey]struct{}
}

// New creates an empty board. userID rides along on created answers when set.
func New(remote Remote, userID string) *Board {
	return &Board{
		remote:   remote,
		userID:   userID,
		inflight: make(map[flightKey]struct{}),
	}
}

// Items returns a copy of the current view, in server order.
func (b *Board) Items() []model.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Item, len(b.items))
	copy(out, b.items)
	for i := range out {
		out[i].Answers = append([]model.Answer(nil), out[i].Answers...)
	}
	return out
}

// Err returns the most recent user-visible failure, "" when the last
// operation succeeded.
func (b *Board) Err() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Refresh replaces the whole local view with the server's. Unacknowledged
// local edits do not exist by construction (write-through), so a full
// replacement is always safe.
func (b *Board) Refresh(ctx context.Context) error {
	items, err := b.remote.Items(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.lastErr = display(err)
		return err
	}
	b.items = items
	b.lastErr = ""
	return nil
}

// SubmitAnswer creates an answer for an item and appends the acknowledged
// answer (carrying its server-assigned id) to the item's sequence. On failure
// the local view is untouched and the input stays resubmittable.
func (b *Board) SubmitAnswer(ctx context.Context, itemID model.ID, text string) error {
	ans, err := b.remote.CreateAnswer(ctx, itemID, text, b.userID)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.lastErr = display(err)
		return err
	}
	if i := b.find(itemID); i >= 0 {
		b.items[i].Answers = append(b.items[i].Answers, ans)
	}
	b.lastErr = ""
	return nil
}

// EditAnswer replaces the text of one answer. Empty or whitespace-only text
// means the user cancelled the edit: no network call, no state change at all.
func (b *Board) EditAnswer(ctx context.Context, itemID, answerID model.ID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	key := flightKey{op: opEdit, item: itemID, answer: answerID}
	if !b.claim(key) {
		return ErrInFlight
	}
	err := b.remote.UpdateAnswer(ctx, itemID, answerID, text)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, key)
	if err != nil {
		b.lastErr = display(err)
		return err
	}
	if i := b.find(itemID); i >= 0 {
		if j := b.items[i].FindAnswer(answerID); j >= 0 {
			b.items[i].Answers[j].Text = text
		}
	}
	b.lastErr = ""
	return nil
}

// RemoveAnswer deletes one answer, preserving the relative order of the rest.
func (b *Board) RemoveAnswer(ctx context.Context, itemID, answerID model.ID) error {
	key := flightKey{op: opRemove, item: itemID, answer: answerID}
	if !b.claim(key) {
		return ErrInFlight
	}
	err := b.remote.DeleteAnswer(ctx, itemID, answerID)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, key)
	if err != nil {
		b.lastErr = display(err)
		return err
	}
	if i := b.find(itemID); i >= 0 {
		if j := b.items[i].FindAnswer(answerID); j >= 0 {
			b.items[i].Answers = append(b.items[i].Answers[:j], b.items[i].Answers[j+1:]...)
		}
	}
	b.lastErr = ""
	return nil
}

// claim marks key as in flight; false means it already was.
func (b *Board) claim(key flightKey) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, busy := b.inflight[key]; busy {
		return false
	}
	b.inflight[key] = struct{}{}
	return true
}

// find returns the index of the item with the given id, -1 when the item is
// no longer in the local view. Callers must hold b.mu.
func (b *Board) find(itemID model.ID) int {
	for i := range b.items {
		if b.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// display converts an operation error into the single user-visible string.
// The error types stay distinguishable for callers; the rendered message is
// deliberately generic.
func display(err error) string {
	var ne *api.NetError
	if errors.As(err, &ne) {
		return "cannot reach the server"
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		return "the server rejected the request"
	}
	return err.Error()
}
