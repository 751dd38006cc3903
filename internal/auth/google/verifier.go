package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

var ErrInvalidIDToken = errors.New("invalid google id token")

// Claims are the identity fields we keep from a verified ID token.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

// Verifier checks Google ID tokens against the tokeninfo endpoint, which
// validates signature and expiry server-side. We only verify the audience
// matches our OAuth client.
type Verifier struct {
	clientID     string
	tokenInfoURL string
	httpClient   *http.Client
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{
		clientID:     clientID,
		tokenInfoURL: defaultTokenInfoURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify returns the token's identity claims, or ErrInvalidIDToken when
// Google rejects the token or it was issued for another client.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*Claims, error) {
	if idToken == "" {
		return nil, ErrInvalidIDToken
	}

	endpoint := v.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request failed: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tokeninfo response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidIDToken
	}

	var parsed struct {
		Aud   string `json:"aud"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse tokeninfo response failed: %w", err)
	}
	if parsed.Aud != v.clientID || parsed.Sub == "" {
		return nil, ErrInvalidIDToken
	}

	return &Claims{
		Subject: parsed.Sub,
		Email:   parsed.Email,
		Name:    parsed.Name,
	}, nil
}
