package client

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
	"time"

	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/common"
	"github.com/google/uuid"
)

const maxErrorBody = 4 << 10

// HTTPClient is the JSON/HTTP implementation of Client.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	requestID  func() string
}

// NewHTTPClient builds an anonymous client for baseURL. A zero timeout
// leaves requests bounded only by their context.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", baseURL)
	}
	return &HTTPClient{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		requestID:  uuid.NewString,
	}, nil
}

// WithToken returns a copy of c that authenticates with token. An empty
// token yields an anonymous view.
func (c *HTTPClient) WithToken(token string) Client {
	cp := *c
	cp.token = token
	return &cp
}

// Authenticated reports whether c attaches a bearer token.
func (c *HTTPClient) Authenticated() bool {
	return c.token != ""
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	var out models.TokenResponse
	err := c.do(ctx, http.MethodPost, "/token", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodPost, "/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Credits(ctx context.Context) (float64, error) {
	var out models.CreditBalance
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/credits", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Credits, nil
}

func (c *HTTPClient) Models(ctx context.Context) ([]models.ModelPricing, error) {
	var out []models.ModelPricing
	if err := c.doJSON(ctx, http.MethodGet, "/models/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GenerateCode(ctx context.Context, req models.GenerateRequest) (*models.CodeGeneration, error) {
	var out models.CodeGeneration
	if err := c.doJSON(ctx, http.MethodPost, "/code/generate-code", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CodeHistory(ctx context.Context, page models.Page) ([]models.CodeGeneration, error) {
	var out []models.CodeGeneration
	if err := c.doJSON(ctx, http.MethodGet, "/code/history", pageQuery(page), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CodeHistoryCount(ctx context.Context) (int64, error) {
	var out models.Count
	if err := c.doJSON(ctx, http.MethodGet, "/code/history/count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *HTTPClient) CreatePayment(ctx context.Context, credits int64) (*models.PaymentIntent, error) {
	var out models.PaymentIntent
	body := models.PaymentCreateRequest{Credits: credits}
	if err := c.doJSON(ctx, http.MethodPost, "/payment/create", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) VerifyPayment(ctx context.Context, transactionID string) (bool, error) {
	var out bool
	path := "/payment/verify/" + url.PathEscape(transactionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return false, err
	}
	return out, nil
}

func (c *HTTPClient) PaymentHistory(ctx context.Context, page models.Page) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	if err := c.doJSON(ctx, http.MethodGet, "/payment/history", pageQuery(page), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context, page models.Page) ([]models.User, error) {
	var out []models.User
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", pageQuery(page), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AddCredits(ctx context.Context, userID int64, amount float64) (*models.CreditGrant, error) {
	q := url.Values{}
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	path := "/admin/users/" + strconv.FormatInt(userID, 10) + "/add-credits"

	var out models.CreditGrant
	if err := c.doJSON(ctx, http.MethodPost, path, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PaymentStatistics(ctx context.Context) (models.PaymentStatistics, error) {
	var out models.PaymentStatistics
	if err := c.doJSON(ctx, http.MethodGet, "/admin/payment-statistics", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func pageQuery(p models.Page) url.Values {
	p = p.Normalize()
	q := url.Values{}
	q.Set("skip", strconv.Itoa(p.Skip()))
	q.Set("limit", strconv.Itoa(p.Limit))
	return q
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if in == nil {
		return c.do(ctx, method, path, query, nil, "", out)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, method, path, query, bytes.NewReader(b), "application/json", out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, c.requestID())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Detail:     detail(raw),
		Body:       strings.TrimSpace(string(raw)),
	}
}

// detail extracts FastAPI's {"detail": ...}. Validation failures carry a list
// of objects with a "msg" field; those are joined.
func detail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(body.Detail)
}

// IsUnavailable reports whether err is a transport-level failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
