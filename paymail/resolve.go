package paymail

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxPaymailResponseSize bounds the body read from any paymail endpoint.
const MaxPaymailResponseSize = 1 << 20

// Capabilities holds the discovered capability URL templates a payer needs.
// Only P2P payment destinations are used; basic address resolution is
// ignored.
type Capabilities struct {
	P2PDestination string // P2P payment destination template
}

// HTTPClient defines the interface for HTTP requests.
// This allows tests to mock HTTP calls.
type HTTPClient interface {
	Get(url string) (*http.Response, error)
}

// wellKnownResponse represents the JSON structure of .well-known/bsvalias.
type wellKnownResponse struct {
	BSVAlias     string                 `json:"bsvalias"`
	Capabilities map[string]interface{} `json:"capabilities"`
}

// capP2PDestination is the BRFC id of the P2P payment destination capability.
const capP2PDestination = "2a40af698840"

// DiscoverCapabilitiesWithClient fetches capabilities using the provided HTTP client.
func DiscoverCapabilitiesWithClient(domain string, client HTTPClient) (*Capabilities, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrPaymailDiscovery)
	}

	url := "https://" + domain + "/.well-known/bsvalias"
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrPaymailDiscovery, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned status %d", ErrPaymailDiscovery, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPaymailResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrPaymailDiscovery, err)
	}

	var wk wellKnownResponse
	if err := json.Unmarshal(body, &wk); err != nil {
		return nil, fmt.Errorf("%w: parsing JSON: %w", ErrPaymailDiscovery, err)
	}

	caps := &Capabilities{}
	for key, val := range wk.Capabilities {
		urlStr, ok := val.(string)
		if !ok {
			continue
		}
		if key == capP2PDestination || strings.Contains(key, "p2p-payment-destination") {
			caps.P2PDestination = urlStr
		}
	}

	return caps, nil
}

// expandTemplate substitutes alias and domain into a capability URL template.
func expandTemplate(tmpl string, h Handle) string {
	out := strings.ReplaceAll(tmpl, "{alias}", h.Alias)
	return strings.ReplaceAll(out, "{domain.tld}", h.Domain)
}
