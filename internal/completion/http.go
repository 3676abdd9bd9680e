package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const providerHTTP = "http"

// HTTP calls a generic endpoint: POST {"prompt"} answering {"generatedText"}.
type HTTP struct {
	httpClient *http.Client
	url        string
}

// NewHTTP creates a completer for url.
func NewHTTP(httpClient *http.Client, url string) *HTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTP{httpClient: httpClient, url: url}
}

type httpRequest struct {
	Prompt string `json:"prompt"`
}

type httpResponse struct {
	GeneratedText string `json:"generatedText"`
}

func (c *HTTP) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(httpRequest{Prompt: joinPrompt(req.System, req.Prompt)})
	if err != nil {
		return "", &Error{Provider: providerHTTP, Kind: KindTransport, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Provider: providerHTTP, Kind: KindTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Provider: providerHTTP, Kind: KindTransport, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &Error{
			Provider:   providerHTTP,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(snippet))),
		}
	}

	var out httpResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &Error{Provider: providerHTTP, Kind: KindDecode, Err: err}
	}
	text := strings.TrimSpace(out.GeneratedText)
	if text == "" {
		return "", &Error{Provider: providerHTTP, Kind: KindEmpty}
	}
	return text, nil
}
