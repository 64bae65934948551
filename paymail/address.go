package paymail

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PostClient extends HTTPClient with POST capability.
// This is needed for P2P payment destination resolution, which requires
// a POST request after capability discovery (GET).
type PostClient interface {
	HTTPClient
	Post(url, contentType string, body io.Reader) (*http.Response, error)
}

// defaultPostClient wraps an http.Client with timeout to implement PostClient.
type defaultPostClient struct {
	client *http.Client
}

func (d *defaultPostClient) Get(rawURL string) (*http.Response, error) {
	return d.client.Get(rawURL)
}

func (d *defaultPostClient) Post(rawURL, contentType string, body io.Reader) (*http.Response, error) {
	return d.client.Post(rawURL, contentType, body)
}

// DefaultPostClient is the production PostClient with a 30-second timeout.
var DefaultPostClient PostClient = &defaultPostClient{
	client: &http.Client{Timeout: 30 * time.Second},
}

// PaymentOutput represents a single output in a P2P payment destination response.
type PaymentOutput struct {
	Script   string `json:"script"`
	Satoshis uint64 `json:"satoshis"`
}

// paymentDestinationRequest is the body POSTed to the P2P destination endpoint.
type paymentDestinationRequest struct {
	Satoshis uint64 `json:"satoshis"`
}

// paymentDestinationResponse is the JSON envelope returned by the payment destination endpoint.
type paymentDestinationResponse struct {
	Outputs   []PaymentOutput `json:"outputs"`
	Reference string          `json:"reference"`
}

// ResolvePaymentDestination resolves a handle to P2P payment destination
// outputs for the given amount using the default HTTP client.
func ResolvePaymentDestination(h Handle, satoshis uint64) ([]PaymentOutput, error) {
	return ResolvePaymentDestinationWithClient(h, satoshis, DefaultPostClient)
}

// ResolvePaymentDestinationWithClient performs capability discovery (GET),
// then POSTs the amount to the P2P payment destination endpoint to obtain
// the output scripts the payee wants to be paid on.
//
// The returned outputs must add up to satoshis; a server that splits the
// amount differently is rejected.
func ResolvePaymentDestinationWithClient(h Handle, satoshis uint64, client PostClient) ([]PaymentOutput, error) {
	if h.Alias == "" || h.Domain == "" {
		return nil, fmt.Errorf("%w: alias and domain are required", ErrAddressResolution)
	}
	if satoshis == 0 {
		return nil, fmt.Errorf("%w: zero amount", ErrAddressResolution)
	}

	caps, err := DiscoverCapabilitiesWithClient(h.Domain, client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAddressResolution, err)
	}
	if caps.P2PDestination == "" {
		return nil, fmt.Errorf("%w: no payment destination capability found for %s", ErrAddressResolution, h.Domain)
	}

	// Escape variables to prevent path traversal.
	destURL := expandTemplate(caps.P2PDestination, Handle{
		Alias:  url.PathEscape(h.Alias),
		Domain: url.PathEscape(h.Domain),
	})

	reqBody, err := json.Marshal(paymentDestinationRequest{Satoshis: satoshis})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrAddressResolution, err)
	}
	resp, err := client.Post(destURL, "application/json", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, fmt.Errorf("%w: POST %s: %w", ErrAddressResolution, destURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: POST %s returned status %d", ErrAddressResolution, destURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPaymailResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrAddressResolution, err)
	}

	var destResp paymentDestinationResponse
	if err := json.Unmarshal(body, &destResp); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %w", ErrAddressResolution, err)
	}
	if len(destResp.Outputs) == 0 {
		return nil, fmt.Errorf("%w: no outputs in response", ErrAddressResolution)
	}

	var total uint64
	for _, o := range destResp.Outputs {
		total += o.Satoshis
	}
	if total != satoshis {
		return nil, fmt.Errorf("%w: outputs sum to %d, requested %d", ErrAddressResolution, total, satoshis)
	}

	return destResp.Outputs, nil
}
