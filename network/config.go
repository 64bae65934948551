package network

import "fmt"

// Environment variables consulted by ResolveConfig.
const (
	EnvRPCURL      = "ROYALTY_RPC_URL"
	EnvRPCUser     = "ROYALTY_RPC_USER"
	EnvRPCPassword = "ROYALTY_RPC_PASS"
)

// RPCConfig holds the connection parameters for a BSV node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// NetworkPresets contains default RPC endpoints for local test networks.
// Mainnet has none and must be configured explicitly.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18332", User: "royalty", Password: "royalty"},
	"testnet": {URL: "http://localhost:18333", User: "royalty", Password: "royalty"},
}

// ResolveConfig layers the RPC configuration: network preset, then the
// ROYALTY_RPC_* variables in env, then explicit settings. Later layers win
// field by field; empty values never override.
func ResolveConfig(explicit *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	overlay := func(url, user, pass string) {
		if url != "" {
			result.URL = url
		}
		if user != "" {
			result.User = user
		}
		if pass != "" {
			result.Password = pass
		}
	}
	overlay(env[EnvRPCURL], env[EnvRPCUser], env[EnvRPCPassword])
	if explicit != nil {
		overlay(explicit.URL, explicit.User, explicit.Password)
	}

	if result.URL == "" {
		return nil, fmt.Errorf("%w: %s requires rpc_url or %s", ErrMissingRPCConfig, network, EnvRPCURL)
	}
	return &result, nil
}
