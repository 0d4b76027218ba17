// Package client 是 FlashDeck 后端的 Go API 客户端，
// 供命令行前端和 pkg/reconcile 的同步循环使用。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"flashdeck_backend/internal/model"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// APIError 是服务端返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 换取 JWT 并保存在客户端上
func (c *Client) Login(ctx context.Context, email, password string) error {
	var data struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &data)
	if err != nil {
		return err
	}
	c.Token = data.Token
	return nil
}

type recordRequest struct {
	SetID  string `json:"setId"`
	CardID string `json:"cardId"`
	Status string `json:"status"`
}

func (c *Client) RecordProgress(ctx context.Context, setID, cardID string, status model.StudyStatus) (*model.StudyEvent, error) {
	var data struct {
		Progress model.StudyEvent `json:"progress"`
	}
	err := c.do(ctx, http.MethodPost, "/api/analytics/progress", recordRequest{
		SetID:  setID,
		CardID: cardID,
		Status: string(status),
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data.Progress, nil
}

func (c *Client) GetSetProgress(ctx context.Context) ([]model.SetProgress, error) {
	var data struct {
		Progress []model.SetProgress `json:"progress"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/analytics/progress", nil, &data); err != nil {
		return nil, err
	}
	return data.Progress, nil
}

func (c *Client) GetDailyActivity(ctx context.Context) ([]model.DailyActivity, error) {
	var data struct {
		Activity []model.DailyActivity `json:"activity"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/analytics/daily", nil, &data); err != nil {
		return nil, err
	}
	return data.Activity, nil
}

func (c *Client) GetTopicProgress(ctx context.Context) ([]model.TopicProgress, error) {
	var data struct {
		Topics []model.TopicProgress `json:"topics"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/analytics/topics", nil, &data); err != nil {
		return nil, err
	}
	return data.Topics, nil
}

func (c *Client) GetRecentCards(ctx context.Context, limit int) ([]model.RecentCard, error) {
	var data struct {
		Cards []model.RecentCard `json:"cards"`
	}
	path := "/api/analytics/recent"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Cards, nil
}

func (c *Client) GetSetWithCards(ctx context.Context, setID string) (*model.FlashcardSet, error) {
	var data struct {
		Set model.FlashcardSet `json:"set"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/flashcards/sets/"+url.PathEscape(setID), nil, &data); err != nil {
		return nil, err
	}
	return &data.Set, nil
}

func (c *Client) GetStudySession(ctx context.Context, setID, mode string, limit int) ([]model.Flashcard, error) {
	var data struct {
		Cards []model.Flashcard `json:"cards"`
	}
	path := fmt.Sprintf("/api/flashcards/sets/%s/study?mode=%s", url.PathEscape(setID), url.QueryEscape(mode))
	if limit > 0 {
		path += "&limit=" + strconv.Itoa(limit)
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Cards, nil
}
