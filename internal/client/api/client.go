// Package api is the HTTP client for the VLINKY backend.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vlinky/vlinky/internal/models"
)

const requestTimeout = 10 * time.Second

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Body)
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the backend on behalf of one signed-in user.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a Client for baseURL. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// NewHTTPClient returns an http.Client trusting only the PEM CA at caFile.
// An empty caFile uses the system roots.
// No overall timeout is set so event streams stay open; calls are bounded
// by their context instead.
func NewHTTPClient(caFile string) (*http.Client, error) {
	if caFile == "" {
		return &http.Client{}, nil
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12},
	}
	return &http.Client{Transport: transport}, nil
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the session token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends a JSON request and decodes a JSON response into out, if non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and stores its token on the client.
func (c *Client) Register(ctx context.Context, email, password string) (models.Session, error) {
	var s models.Session
	if err := c.do(ctx, http.MethodPost, "/api/register", credentials{email, password}, &s); err != nil {
		return models.Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Login signs in and stores the token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (models.Session, error) {
	var s models.Session
	if err := c.do(ctx, http.MethodPost, "/api/login", credentials{email, password}, &s); err != nil {
		return models.Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Logout ends the session and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	c.SetToken("")
	return err
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/api/me", nil, &u)
	return u, err
}

// Favorites lists the user's favorites.
func (c *Client) Favorites(ctx context.Context) ([]models.Favorite, error) {
	var favs []models.Favorite
	err := c.do(ctx, http.MethodGet, "/api/favorites", nil, &favs)
	return favs, err
}

// AddFavorite favorites creatorID and returns the stored row.
func (c *Client) AddFavorite(ctx context.Context, creatorID string) (models.Favorite, error) {
	var f models.Favorite
	err := c.do(ctx, http.MethodPost, "/api/favorites", map[string]string{"creatorId": creatorID}, &f)
	return f, err
}

// RemoveFavorite unfavorites creatorID.
func (c *Client) RemoveFavorite(ctx context.Context, creatorID string) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/"+url.PathEscape(creatorID), nil, nil)
}

// Countries lists countries ordered by name.
func (c *Client) Countries(ctx context.Context) ([]models.Country, error) {
	var out []models.Country
	err := c.do(ctx, http.MethodGet, "/api/countries", nil, &out)
	return out, err
}

// Creators searches approved creators. Empty arguments are not sent.
func (c *Client) Creators(ctx context.Context, query, category string, limit int) ([]models.Creator, error) {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if category != "" {
		v.Set("category", category)
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/creators"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []models.Creator
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// SubmitApplication sends the onboarding form.
func (c *Client) SubmitApplication(ctx context.Context, app models.CreatorApplication) (models.CreatorApplication, error) {
	var out models.CreatorApplication
	err := c.do(ctx, http.MethodPost, "/api/creator-applications", app, &out)
	return out, err
}

// LatestApproved returns the user's most recent approved application.
// found is false when there is none.
func (c *Client) LatestApproved(ctx context.Context) (app models.CreatorApplication, found bool, err error) {
	err = c.do(ctx, http.MethodGet, "/api/creator-applications/latest-approved", nil, &app)
	if IsStatus(err, http.StatusNotFound) {
		return models.CreatorApplication{}, false, nil
	}
	if err != nil {
		return models.CreatorApplication{}, false, err
	}
	return app, true, nil
}

// CreateVideoRequest asks creatorID for a video.
func (c *Client) CreateVideoRequest(ctx context.Context, creatorID, occasion, instructions string) (models.VideoRequest, error) {
	var out models.VideoRequest
	body := map[string]string{"creatorId": creatorID, "occasion": occasion, "instructions": instructions}
	err := c.do(ctx, http.MethodPost, "/api/video-requests", body, &out)
	return out, err
}

// VideoRequests lists the user's own requests.
func (c *Client) VideoRequests(ctx context.Context) ([]models.VideoRequest, error) {
	var out []models.VideoRequest
	err := c.do(ctx, http.MethodGet, "/api/video-requests", nil, &out)
	return out, err
}

// RateVideo stores rating for the request, replacing any earlier rating.
func (c *Client) RateVideo(ctx context.Context, requestID string, rating int) error {
	return c.do(ctx, http.MethodPut, "/api/video-requests/"+url.PathEscape(requestID)+"/rating",
		map[string]int{"rating": rating}, nil)
}
