package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nahuarce12/ecommerce/internal/usecase"
)

// Client is a thin REST client for the two MercadoPago calls order
// processing needs: creating a checkout preference and re-querying a
// payment. Outbound calls fail fast on the configured timeout rather than
// hang a webhook invocation.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: accessToken,
	}
}

type preferenceItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type preferencePhone struct {
	Number string `json:"number,omitempty"`
}

type preferenceAddress struct {
	StreetName string `json:"street_name,omitempty"`
	ZipCode    string `json:"zip_code,omitempty"`
}

type preferencePayer struct {
	Name    string             `json:"name,omitempty"`
	Email   string             `json:"email,omitempty"`
	Phone   *preferencePhone   `json:"phone,omitempty"`
	Address *preferenceAddress `json:"address,omitempty"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items               []preferenceItem   `json:"items"`
	Payer               preferencePayer    `json:"payer"`
	BackURLs            preferenceBackURLs `json:"back_urls"`
	AutoReturn          string             `json:"auto_return"`
	NotificationURL     string             `json:"notification_url"`
	ExternalReference   string             `json:"external_reference"`
	StatementDescriptor string             `json:"statement_descriptor,omitempty"`
	Expires             bool               `json:"expires"`
	ExpirationDateFrom  string             `json:"expiration_date_from"`
	ExpirationDateTo    string             `json:"expiration_date_to"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type paymentOrder struct {
	ID json.Number `json:"id"`
}

type paymentResponse struct {
	ID                json.Number  `json:"id"`
	Status            string       `json:"status"`
	ExternalReference string       `json:"external_reference"`
	TransactionAmount float64      `json:"transaction_amount"`
	Order             paymentOrder `json:"order"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) CreatePreference(ctx context.Context, req usecase.PreferenceRequest) (*usecase.PreferenceResult, error) {
	items := make([]preferenceItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, preferenceItem{
			ID:          it.ID,
			Title:       it.Title,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.InexactFloat64(),
			CurrencyID:  it.Currency,
		})
	}

	payer := preferencePayer{Name: req.Payer.Name, Email: req.Payer.Email}
	if req.Payer.Phone != "" {
		payer.Phone = &preferencePhone{Number: req.Payer.Phone}
	}
	if req.Payer.Street != "" || req.Payer.PostalCode != "" {
		payer.Address = &preferenceAddress{StreetName: req.Payer.Street, ZipCode: req.Payer.PostalCode}
	}

	body := preferenceRequest{
		Items: items,
		Payer: payer,
		BackURLs: preferenceBackURLs{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
		AutoReturn:          "approved",
		NotificationURL:     req.NotificationURL,
		ExternalReference:   req.ExternalReference,
		StatementDescriptor: req.StatementDescriptor,
		Expires:             true,
		ExpirationDateFrom:  time.Now().UTC().Format(time.RFC3339),
		ExpirationDateTo:    req.ExpiresAt.Format(time.RFC3339),
	}

	var out preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", body, &out); err != nil {
		return nil, err
	}
	return &usecase.PreferenceResult{
		ID:               out.ID,
		InitPoint:        out.InitPoint,
		SandboxInitPoint: out.SandboxInitPoint,
	}, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*usecase.PaymentInfo, error) {
	var out paymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &out); err != nil {
		return nil, err
	}
	return &usecase.PaymentInfo{
		ID:                out.ID.String(),
		Status:            out.Status,
		ExternalReference: out.ExternalReference,
		MerchantOrderID:   out.Order.ID.String(),
		TransactionAmount: decimal.NewFromFloat(out.TransactionAmount),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &usecase.ProviderError{Message: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return &usecase.ProviderError{Status: res.StatusCode, Message: err.Error()}
	}

	if res.StatusCode >= 400 {
		var apiErr apiError
		msg := string(raw)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return &usecase.ProviderError{Status: res.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &usecase.ProviderError{Status: res.StatusCode, Message: "decode response: " + err.Error()}
		}
	}
	return nil
}

var _ usecase.PaymentGateway = (*Client)(nil)
