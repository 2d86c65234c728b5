// internal/core/whatsapp/evolution.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// EvolutionProvider talks to an Evolution API server over REST.
type EvolutionProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// APIError carries a non-2xx response from the gateway.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("evolution api returned status %d: %s", e.StatusCode, e.Body)
}

func NewEvolutionProvider(baseURL, apiKey string, timeout time.Duration) *EvolutionProvider {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &EvolutionProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *EvolutionProvider) GetProviderName() string {
	return "EvolutionAPI"
}

type sendTextRequest struct {
	Number      string          `json:"number"`
	TextMessage textMessageBody `json:"textMessage"`
}

type textMessageBody struct {
	Text string `json:"text"`
}

func (e *EvolutionProvider) SendText(ctx context.Context, instance, phone, text string) error {
	payload := sendTextRequest{
		Number:      phone,
		TextMessage: textMessageBody{Text: text},
	}
	return e.do(ctx, http.MethodPost, "/message/sendText/"+url.PathEscape(instance), payload, nil)
}

type createInstanceResponse struct {
	Instance struct {
		InstanceName string `json:"instanceName"`
		Status       string `json:"status"`
	} `json:"instance"`
	QRCode struct {
		Base64 string `json:"base64"`
		Code   string `json:"code"`
	} `json:"qrcode"`
}

func (e *EvolutionProvider) CreateInstance(ctx context.Context, instance, phone string) (*InstanceInfo, error) {
	payload := map[string]interface{}{
		"instanceName": instance,
		"qrcode":       true,
		"integration":  "WHATSAPP-BAILEYS",
	}
	if phone != "" {
		payload["number"] = phone
	}

	var resp createInstanceResponse
	if err := e.do(ctx, http.MethodPost, "/instance/create", payload, &resp); err != nil {
		return nil, err
	}

	info := &InstanceInfo{
		Name:   resp.Instance.InstanceName,
		Status: resp.Instance.Status,
	}
	if info.Name == "" {
		info.Name = instance
	}

	png, err := qrFromPayload(resp.QRCode.Base64, resp.QRCode.Code)
	if err == nil {
		info.QRCode = png
	}
	return info, nil
}

func (e *EvolutionProvider) ConnectionState(ctx context.Context, instance string) (InstanceState, error) {
	var resp struct {
		Instance struct {
			State string `json:"state"`
		} `json:"instance"`
	}
	if err := e.do(ctx, http.MethodGet, "/instance/connectionState/"+url.PathEscape(instance), nil, &resp); err != nil {
		return StateClose, err
	}
	return InstanceState(resp.Instance.State), nil
}

func (e *EvolutionProvider) QRCode(ctx context.Context, instance string) ([]byte, error) {
	var resp struct {
		Base64 string `json:"base64"`
		Code   string `json:"code"`
	}
	if err := e.do(ctx, http.MethodGet, "/instance/connect/"+url.PathEscape(instance), nil, &resp); err != nil {
		return nil, err
	}
	return qrFromPayload(resp.Base64, resp.Code)
}

func (e *EvolutionProvider) DeleteInstance(ctx context.Context, instance string) error {
	return e.do(ctx, http.MethodDelete, "/instance/delete/"+url.PathEscape(instance), nil, nil)
}

func (e *EvolutionProvider) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", e.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("evolution api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// qrFromPayload prefers the gateway's rendered image and falls back to
// rendering the raw pairing code locally.
func qrFromPayload(b64, code string) ([]byte, error) {
	if b64 != "" {
		if i := strings.Index(b64, ","); i >= 0 {
			b64 = b64[i+1:]
		}
		png, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("invalid qr image: %w", err)
		}
		return png, nil
	}
	if code != "" {
		return qrcode.Encode(code, qrcode.Medium, 256)
	}
	return nil, fmt.Errorf("gateway returned no qr code")
}
