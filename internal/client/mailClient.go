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
)

// MailClient is the mail transport contract. A returned error is a
// normal, expected outcome for the caller to handle; it never means
// the process is in a bad state.
type MailClient interface {
	Send(ctx context.Context, to, subject, htmlBody string, attachment []byte) error
}

type mailClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
	sender     string
}

func NewMailClient(mailCfg *config.Mail) MailClient {
	return &mailClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: mailCfg.BaseApiURL,
		apiKey:     mailCfg.APIKey,
		sender:     mailCfg.Sender,
	}
}

func (c *mailClientImpl) Send(ctx context.Context, to, subject, htmlBody string, attachment []byte) error {
	payload := map[string]interface{}{
		"from":      c.sender,
		"to":        to,
		"subject":   subject,
		"html_body": htmlBody,
	}
	if len(attachment) > 0 {
		payload["attachments"] = []map[string]string{
			{
				"filename":     "invoice.html",
				"content_type": "text/html",
				"content":      base64.StdEncoding.EncodeToString(attachment),
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/messages",
		bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail api error %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
