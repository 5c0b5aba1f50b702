package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrProductNotFound = errors.New("product not found")

// ServerError carries the message the order service returned with a
// non-success status. The message is surfaced to the shopper verbatim.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("order service returned status %d", e.StatusCode)
}

// Client talks to the remote order/catalog service over its fixed JSON
// contract. A circuit breaker sits in front of the endpoint; client-side
// rejections (4xx) do not trip it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func New(baseURL string, timeout time.Duration) *Client {
	settings := gobreaker.Settings{
		Name: "order-service",
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *ServerError
			if errors.As(err, &se) {
				return se.StatusCode < 500
			}
			return errors.Is(err, ErrProductNotFound)
		},
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

type productDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Sizes       []string        `json:"sizes,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
}

func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		var se *ServerError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}

	var dto productDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %d: %w", id, err)
	}

	return domain.Product{
		ID:          dto.ID,
		Name:        dto.Name,
		Description: dto.Description,
		Price:       dto.Price,
		ImageURL:    dto.Image,
		Sizes:       dto.Sizes,
		Colors:      dto.Colors,
	}, nil
}

// SubmitOrder issues exactly one request per call; retrying is left to the
// shopper. Returns the order id from the confirmation payload when the
// service provides one.
func (c *Client) SubmitOrder(ctx context.Context, sub domain.OrderSubmission) (string, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return "", err
	}

	var confirmation struct {
		OrderID string `json:"orderId"`
	}
	// A confirmation body without an order id is still a confirmed order.
	_ = json.Unmarshal(body, &confirmation)

	return confirmation.OrderID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("order service unreachable: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &ServerError{
				StatusCode: resp.StatusCode,
				Message:    errorMessage(body),
			}
		}

		return body, nil
	})
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
