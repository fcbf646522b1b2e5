package oauth

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const DefaultPort = 8080

// Scopes requested for every account. The mount tool needs drive; email is
// used to detect duplicate accounts.
var Scopes = []string{
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/userinfo.email",
}

// RedirectURI is the loopback redirect registered with the tool.
func RedirectURI(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// AuthURL builds the Google consent URL for clientID. It asks for offline
// access and an explicit account picker.
func AuthURL(clientID, redirectURI, state string) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		Endpoint:    google.Endpoint,
		RedirectURL: redirectURI,
		Scopes:      Scopes,
	}
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// LoadClientCredentials reads a client secret JSON downloaded from the
// Google Cloud console ("installed" or "web" application).
func LoadClientCredentials(path string) (clientID, clientSecret string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return "", "", fmt.Errorf("parse credentials file: %w", err)
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return "", "", fmt.Errorf("credentials file has no client_id or client_secret")
	}
	return cfg.ClientID, cfg.ClientSecret, nil
}
