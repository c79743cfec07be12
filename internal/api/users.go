package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/idilsaglam/qna/internal/model"
)

// tokenResponse is the token endpoint's success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// registerRequest is the registration body.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. The endpoint wants
// form-encoded fields, not JSON. A non-2xx answer means the credentials were
// rejected and comes back as ErrBadCredentials; transport failures stay
// distinguishable as *NetError.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	form := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/users/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s", ErrBadCredentials, detailOf(data))
	}
	var tr tokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return "", fmt.Errorf("decoding token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access_token")
	}
	return tr.AccessToken, nil
}

// Register creates a new account. On failure the server's detail field (e.g.
// "Email already registered") rides along in the *StatusError.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/users/register",
		registerRequest{Email: email, Password: password}, nil)
}
