// Package apiclient talks to a running quiz API over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"quiz-api/internal/domain"
)

const DefaultBaseURL = "http://127.0.0.1:5000"

var ErrServiceUnavailable = errors.New("quiz api unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Config carries everything a client needs. Token is sent as a bearer
// token when set.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, token: cfg.Token, httpClient: httpClient}
}

// WithToken returns a copy of the client that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type registerResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

type submitRequest struct {
	Answers any `json:"answers"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	var result LoginResult
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", loginRequest{Identifier: identifier, Password: password}, &result)
	return result, err
}

// Register creates an account. role is only honoured when the client holds
// an admin token.
func (c *Client) Register(ctx context.Context, username, email, password, role string) (domain.User, error) {
	var resp registerResponse
	req := registerRequest{Username: username, Email: email, Password: password, Role: role}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

func (c *Client) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	var quizzes []domain.QuizSummary
	err := c.doJSON(ctx, http.MethodGet, "/api/quiz", nil, &quizzes)
	return quizzes, err
}

func (c *Client) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Quiz{}, errors.New("quiz id is required")
	}
	var quiz domain.Quiz
	err := c.doJSON(ctx, http.MethodGet, "/api/quiz/"+url.PathEscape(id), nil, &quiz)
	return quiz, err
}

// Submit sends answers as given; each element is an option index or a list
// of option indexes.
func (c *Client) Submit(ctx context.Context, quizID string, answers []any) (domain.SubmissionResult, error) {
	var result domain.SubmissionResult
	path := "/api/quiz/" + url.PathEscape(quizID) + "/submit"
	err := c.doJSON(ctx, http.MethodPost, path, submitRequest{Answers: answers}, &result)
	return result, err
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	path := "/api/leaderboard"
	if limit > 0 {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(limit))
		path += "?" + query.Encode()
	}
	var entries []domain.LeaderboardEntry
	err := c.doJSON(ctx, http.MethodGet, path, nil, &entries)
	return entries, err
}

func (c *Client) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	var created domain.Quiz
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/quiz", quiz, &created)
	return created, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Message)
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
