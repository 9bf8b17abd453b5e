package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider negotiates with the external identity provider and returns the
// caller's identity on success.
type Provider interface {
	Login(ctx context.Context) (Identity, error)
}

// PasswordProvider authenticates against the identity endpoint with an email
// and password, receiving an identity token in exchange.
type PasswordProvider struct {
	IdentityURL string
	Email       string
	Password    string
	HTTPClient  *http.Client
}

func NewPasswordProvider(identityURL, email, password string, timeout time.Duration) *PasswordProvider {
	return &PasswordProvider{
		IdentityURL: identityURL,
		Email:       email,
		Password:    password,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

func (p *PasswordProvider) Login(ctx context.Context) (Identity, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    p.Email,
		"password": p.Password,
	})
	if err != nil {
		return Identity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.IdentityURL+"/api/v1/auth/login", bytes.NewReader(payload))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Identity{}, fmt.Errorf("identity provider rejected login: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Identity{}, fmt.Errorf("decode login response: %w", err)
	}
	return IdentityFromToken(out.Token)
}
