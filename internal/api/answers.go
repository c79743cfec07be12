package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/idilsaglam/qna/internal/model"
)

// answerRequest is the body for both create and update.
type answerRequest struct {
	Text   string `json:"answer"`
	UserID string `json:"user_id,omitempty"`
}

func answerPath(itemID model.ID) string {
	return "/answers/" + itemID.String() + "/answer"
}

// CreateAnswer posts a new answer for an item and returns the stored answer
// with its server-assigned id. The authority has answered both with the bare
// answer object and with a {"message": ..., "answer": {...}} wrapper; both
// are accepted.
func (c *Client) CreateAnswer(ctx context.Context, itemID model.ID, text, userID string) (model.Answer, error) {
	var raw json.RawMessage
	err := c.doJSON(ctx, http.MethodPost, answerPath(itemID),
		answerRequest{Text: text, UserID: userID}, &raw)
	if err != nil {
		return model.Answer{}, err
	}

	var wrapped struct {
		Answer *model.Answer `json:"answer"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.Answer != nil {
		return *wrapped.Answer, nil
	}
	var ans model.Answer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return model.Answer{}, fmt.Errorf("decoding created answer: %w", err)
	}
	return ans, nil
}

// UpdateAnswer replaces the text of one answer, matched server-side by id.
func (c *Client) UpdateAnswer(ctx context.Context, itemID, answerID model.ID, text string) error {
	return c.doJSON(ctx, http.MethodPut, answerPath(itemID)+"/"+answerID.String(),
		answerRequest{Text: text}, nil)
}

// DeleteAnswer removes one answer, matched server-side by id.
func (c *Client) DeleteAnswer(ctx context.Context, itemID, answerID model.ID) error {
	return c.doJSON(ctx, http.MethodDelete, answerPath(itemID)+"/"+answerID.String(), nil, nil)
}
