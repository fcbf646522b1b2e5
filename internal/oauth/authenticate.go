package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/i18n"
	"github.com/oukeidos/gdmount/internal/logger"
)

const DefaultTimeout = 120 * time.Second

// Authenticator runs one consent round trip per call.
type Authenticator struct {
	Port    int
	Timeout time.Duration
	// OpenBrowser shows url to the user.
	OpenBrowser func(url string) error
	Localizer   *i18n.Localizer
}

// Grant is a captured authorization code and the redirect it was issued
// for; the tool must be given the same redirect.
type Grant struct {
	Code        string
	RedirectURI string
}

// Authenticate starts the callback server, opens the consent page for
// clientID and waits for the outcome. Cancelling ctx yields user_cancel, a
// browser-side refusal yields cancelled and silence yields timeout. The
// listener is always released before returning.
func (a *Authenticator) Authenticate(ctx context.Context, clientID string) (Grant, error) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	state := uuid.NewString()

	srv := NewServer(a.Port, state, a.Localizer)
	if err := srv.Start(); err != nil {
		return Grant{}, err
	}
	defer srv.Stop()

	redirect := RedirectURI(srv.Port())
	url := AuthURL(clientID, redirect, state)
	if a.OpenBrowser != nil {
		if err := a.OpenBrowser(url); err != nil {
			logger.Warn("Could not open browser; open the URL manually", "url", url, "error", err)
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-srv.Results():
		if r.Cancelled() {
			return Grant{}, apperrors.OAuth(apperrors.CodeCancelled, fmt.Errorf("consent declined: %s", r.Reason))
		}
		logger.Info("Authorization code captured")
		return Grant{Code: r.Code, RedirectURI: redirect}, nil
	case <-ctx.Done():
		return Grant{}, apperrors.OAuth(apperrors.CodeUserCancel, ctx.Err())
	case <-timer.C:
		return Grant{}, apperrors.OAuth(apperrors.CodeTimeout, fmt.Errorf("no callback within %s", timeout))
	}
}
