package model

import "encoding/json"

// ID is an opaque server-assigned identifier. The authority emits numeric
// ids today; treat them as text, compare only by equality.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (id *ID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// Item is a question exposed by the remote authority, together with the
// answers users have attached to it. The answer order is the server's
// response order and is stable within a single fetch.
type Item struct {
	ID          ID       `json:"id"`
	Description string   `json:"description"`
	Answers     []Answer `json:"answers"`
}

// Answer is a user-submitted response. The server assigns the id at creation
// time; before acknowledgment an Answer has no id at all.
type Answer struct {
	ID     ID     `json:"_id"`
	Text   string `json:"answer"`
	UserID string `json:"user_id,omitempty"`
}

// UnmarshalJSON tolerates the id arriving as either "_id" or "id"; the
// authority has emitted both spellings for answers.
func (a *Answer) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID     ID     `json:"_id"`
		AltID  ID     `json:"id"`
		Text   string `json:"answer"`
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	a.ID = raw.ID
	if a.ID == "" {
		a.ID = raw.AltID
	}
	a.Text = raw.Text
	a.UserID = raw.UserID
	return nil
}

// Credentials are what the token endpoint wants, form-encoded.
type Credentials struct {
	Username string
	Password string
}

// FindAnswer returns the index of the answer with the given id, or -1.
func (it *Item) FindAnswer(id ID) int {
	for i, a := range it.Answers {
		if a.ID == id {
			return i
		}
	}
	return -1
}
