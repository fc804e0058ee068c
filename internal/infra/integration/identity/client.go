package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// listPageSize is the page size for the admin user listing. The provider caps
// pages at 1000.
const listPageSize = 1000

// Client talks to the auth provider's admin API with the service-role key.
// It is the only place in the codebase that knows accounts live behind HTTP.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewClient(serviceKey, baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateAccount provisions one confirmed account and returns its id. The
// credential is a throwaway; the member resets it via the recovery link.
func (c *Client) CreateAccount(ctx context.Context, email, credential string, metadata map[string]interface{}) (string, error) {
	url := fmt.Sprintf("%s/admin/users", c.baseURL)

	payload := createUserRequest{
		Email:        email,
		Password:     credential,
		EmailConfirm: true,
		UserMetadata: metadata,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal account payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("identity provider rejected account for %s (status %d): %s", email, resp.StatusCode, string(body))
	}

	var response userResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode account response: %w", err)
	}

	return response.ID, nil
}

// ListExistingEmails pages through every known account once and returns the
// emails as a set. Validation uses this for duplicate detection instead of a
// per-row lookup.
func (c *Client) ListExistingEmails(ctx context.Context) (map[string]struct{}, error) {
	emails := make(map[string]struct{})

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/admin/users?page=%s&per_page=%s",
			c.baseURL, strconv.Itoa(page), strconv.Itoa(listPageSize))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("identity provider request failed: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("identity provider listing failed (status %d): %s", resp.StatusCode, string(body))
		}

		var response listUsersResponse
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode user listing: %w", err)
		}
		resp.Body.Close()

		for _, user := range response.Users {
			if user.Email != "" {
				emails[user.Email] = struct{}{}
			}
		}

		if len(response.Users) < listPageSize {
			return emails, nil
		}
	}
}

// GenerateRecoveryLink asks the provider for a one-time password-setup link
// for the welcome email.
func (c *Client) GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	url := fmt.Sprintf("%s/admin/generate_link", c.baseURL)

	payload := generateLinkRequest{
		Type:       "recovery",
		Email:      email,
		RedirectTo: redirectTo,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal link payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("recovery link generation failed for %s (status %d): %s", email, resp.StatusCode, string(body))
	}

	var response generateLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode link response: %w", err)
	}

	return response.ActionLink, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
}
