// Package google looks up the signed-in user's email with a fresh access
// token.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/httpclient"
)

// Userinfo fetches the email bound to an access token.
type Userinfo struct {
	// HTTPClient is the transport base; nil uses httpclient.Default.
	HTTPClient *http.Client
	// Endpoint overrides the API root, for tests.
	Endpoint string
}

func (u *Userinfo) FetchEmail(ctx context.Context, accessToken string) (string, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return "", errors.New("empty access token")
	}
	base := u.HTTPClient
	if base == nil {
		base = httpclient.Default()
	}
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
	client := oauth2.NewClient(authCtx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if u.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(u.Endpoint))
	}
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(info.Email), nil
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		return apperrors.New(apperrors.KindOAuth, apperrors.CodeOAuthError, "", fmt.Errorf("userinfo rejected token (%d): %w", gerr.Code, err))
	}
	return fmt.Errorf("userinfo request: %w", err)
}
