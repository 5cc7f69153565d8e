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
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/correlationid"
)

// Error is a non-2xx answer from the API.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// Client calls the product and auth endpoints of the catalog API.
type Client struct {
	baseURL string
	httpCl  *http.Client
}

// New creates a client for the API at baseURL. Requests go through the default
// transport, traced with otelhttp.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCl: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type listProductsResponse struct {
	Products []model.Product `json:"products"`
}

type createProductResponse struct {
	Product model.Product `json:"product"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var res listProductsResponse
	if err := c.do(ctx, http.MethodGet, "/product", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if res.Products == nil {
		res.Products = []model.Product{}
	}
	return res.Products, nil
}

func (c *Client) CreateProduct(ctx context.Context, fields model.ProductFields) (model.Product, error) {
	var res createProductResponse
	if err := c.do(ctx, http.MethodPost, "/product", nil, fields, &res); err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	return res.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, fields model.ProductFields) error {
	query := url.Values{"id": {id}}
	if err := c.do(ctx, http.MethodPut, "/product", query, fields, nil); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	query := url.Values{"id": {id}}
	if err := c.do(ctx, http.MethodDelete, "/product", query, nil, nil); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Login checks credentials against the API. A rejection is reported as ok=false with
// the server message, not as an error.
func (c *Client) Login(ctx context.Context, email, password string) (ok bool, message string, err error) {
	var res messageResponse
	err = c.do(ctx, http.MethodPost, "/auth", nil, loginRequest{Email: email, Password: password}, &res)

	var apiErr *Error
	switch {
	case err == nil:
		return true, res.Message, nil
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return false, apiErr.Message, nil
	default:
		return false, "", fmt.Errorf("login: %w", err)
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := correlationid.FromContext(ctx); ok {
		req.Header.Set(correlationid.Header, id)
	}

	resp, err := c.httpCl.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var msg messageResponse
		if json.Unmarshal(raw, &msg) == nil {
			apiErr.Code = msg.Code
			apiErr.Message = msg.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
