package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"decor-storefront/internal/config"
	"decor-storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

var ErrEventSignature = fmt.Errorf("event signature verification failed")

type CreateSessionResponse struct {
	SessionID   string
	RedirectURL string
}

// PaymentClient is the contract of the hosted payment provider: it
// creates externally hosted checkout sessions and verifies webhook
// deliveries against the exact raw body bytes.
type PaymentClient interface {
	CreateSession(ctx context.Context, amount decimal.Decimal, currency string, reference string) (*CreateSessionResponse, error)
	VerifyEvent(ctx context.Context, headers http.Header, body []byte) (*model.ProviderEvent, error)
}

type paymentClientImpl struct {
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker[*http.Response]
	baseApiURL   string
	clientID     string
	clientSecret string
	webhookID    string
	returnURL    string
}

func NewPaymentClient(paymentCfg *config.Payment) PaymentClient {
	return &paymentClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name: "payment-provider",
		}),
		baseApiURL:   paymentCfg.BaseApiURL,
		clientID:     paymentCfg.ClientID,
		clientSecret: paymentCfg.ClientSecret,
		webhookID:    paymentCfg.WebhookID,
		returnURL:    paymentCfg.ReturnURL,
	}
}

func (c *paymentClientImpl) do(req *http.Request) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("provider error %d: %s", resp.StatusCode, string(b))
		}
		return resp, nil
	})
}

func (c *paymentClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paymentClientImpl) CreateSession(ctx context.Context, amount decimal.Decimal, currency string, reference string) (*CreateSessionResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get provider access token: %w", err)
	}

	payload := map[string]interface{}{
		"intent":    "CAPTURE",
		"reference": reference,
		"amount": map[string]string{
			"currency_code": currency,
			"value":         amount.StringFixed(2),
		},
		"application_context": map[string]string{
			"return_url": fmt.Sprintf("%s/api/payments/success", c.returnURL),
			"cancel_url": c.returnURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/checkout/sessions",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider error %d: %s", resp.StatusCode, string(b))
	}

	var result model.ProviderSessionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	redirectURL := _extractRedirectURL(result.Links)

	return &CreateSessionResponse{
		SessionID:   result.ID,
		RedirectURL: redirectURL,
	}, nil
}

// VerifyEvent submits the delivery's transmission headers and the raw
// body to the provider's verification endpoint. The body must be the
// exact bytes received; re-serializing the event breaks the signature.
func (c *paymentClientImpl) VerifyEvent(ctx context.Context, headers http.Header, body []byte) (*model.ProviderEvent, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get provider access token: %w", err)
	}

	payload := map[string]interface{}{
		"transmission_id":   headers.Get("Provider-Transmission-Id"),
		"transmission_time": headers.Get("Provider-Transmission-Time"),
		"transmission_sig":  headers.Get("Provider-Transmission-Sig"),
		"cert_url":          headers.Get("Provider-Cert-Url"),
		"auth_algo":         headers.Get("Provider-Auth-Algo"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal verification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/notifications/verify-webhook-signature",
		bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode verification response: %w", err)
	}

	if result.VerificationStatus != "SUCCESS" {
		return nil, ErrEventSignature
	}

	var event model.ProviderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}

	return &event, nil
}

func _extractRedirectURL(links []model.ProviderLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
