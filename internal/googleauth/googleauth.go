// Package googleauth builds an authenticated HTTP client from a Google
// service-account key, shared by the sheets and calendar services.
package googleauth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
)

// LoadKey returns the service-account key bytes from either a file path or an
// inline JSON blob. Exactly one source is required.
func LoadKey(file, inline string) ([]byte, error) {
	file = strings.TrimSpace(file)
	inline = strings.TrimSpace(inline)
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read google.credentials_file: %w", err)
		}
		return data, nil
	case inline != "":
		return []byte(inline), nil
	default:
		return nil, fmt.Errorf("missing google credentials (set google.credentials_file or google.credentials_json)")
	}
}

// HTTPClient validates the key and returns a JWT-authenticated client for the
// given scopes. A malformed key fails here, at startup.
func HTTPClient(ctx context.Context, key []byte, scopes ...string) (*http.Client, error) {
	cfg, err := google.JWTConfigFromJSON(key, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service-account key: %w", err)
	}
	return cfg.Client(ctx), nil
}
