// Package oauth captures the authorization code from Google's loopback
// redirect.
package oauth

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oukeidos/gdmount/internal/apperrors"
	"github.com/oukeidos/gdmount/internal/i18n"
	"github.com/oukeidos/gdmount/internal/logger"
)

// Result is what the browser delivered.
type Result struct {
	Code string
	// Reason is the error parameter Google sent when the user declined.
	Reason string
}

func (r Result) Cancelled() bool { return r.Code == "" }

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{background:#2d2d2d;color:#fff;font-family:Arial,sans-serif;margin:0;padding:15vh 20px 0;text-align:center}
</style>
</head>
<body>
<div>
<h2>{{.Mark}} {{.Title}}</h2>
{{range .Lines}}<p>{{.}}</p>
{{end}}</div>
<script>setTimeout(function(){window.close();}, 3000);</script>
</body>
</html>
`))

type page struct {
	Lang  string
	Mark  string
	Title string
	Lines []string
}

// Server is a single-use loopback listener. The first code or cancellation
// wins; later requests still get a page but are not reported.
type Server struct {
	port  int
	state string
	loc   *i18n.Localizer

	results   chan Result
	deliver   sync.Once
	stopOnce  sync.Once
	srv       *http.Server
	listeners []net.Listener
	wg        sync.WaitGroup
}

// NewServer prepares a server for port. A non-empty state must match the
// state parameter of the redirect when the browser sends one.
func NewServer(port int, state string, loc *i18n.Localizer) *Server {
	return &Server{
		port:    port,
		state:   state,
		loc:     loc,
		results: make(chan Result, 1),
	}
}

// Handler returns the routing for the callback endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.cancelOnError)
	r.Get("/", s.handleCallback)
	r.Get("/oauth2callback", s.handleCallback)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, s.loc.T("Page not found"), http.StatusNotFound)
	})
	return r
}

// Start binds the loopback port on IPv4, and on IPv6 when available.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.port)))
	if err != nil {
		return apperrors.OAuth(apperrors.CodeServerError, err)
	}
	s.listeners = append(s.listeners, ln)
	port := ln.Addr().(*net.TCPAddr).Port
	if ln6, err := net.Listen("tcp", net.JoinHostPort("::1", strconv.Itoa(port))); err == nil {
		s.listeners = append(s.listeners, ln6)
	}
	s.port = port

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	for _, l := range s.listeners {
		s.wg.Add(1)
		go func(l net.Listener) {
			defer s.wg.Done()
			if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("OAuth callback server stopped", "error", err)
			}
		}(l)
	}
	logger.Info("OAuth callback server listening", "port", port)
	return nil
}

// Port is the bound port; useful when NewServer was given 0.
func (s *Server) Port() int { return s.port }

// Results yields at most one Result.
func (s *Server) Results() <-chan Result { return s.results }

// Stop shuts the listener down and waits for it to be released. It is safe
// to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.srv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(ctx); err != nil {
			_ = s.srv.Close()
		}
		s.wg.Wait()
		logger.Debug("OAuth callback server stopped", "port", s.port)
	})
}

func (s *Server) publish(r Result) {
	s.deliver.Do(func() { s.results <- r })
}

func (s *Server) cancelOnError(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has("error") {
			next.ServeHTTP(w, r)
			return
		}
		reason := q.Get("error")
		logger.Info("Authorization declined in browser", "reason", reason)
		s.publish(Result{Reason: reason})
		s.render(w, page{
			Mark:  "✗",
			Title: s.loc.T("Authorization Cancelled"),
			Lines: []string{s.loc.T("You cancelled access in Google. You can close this window and return to the application.")},
		})
	})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		http.Error(w, s.loc.T("Authorization code not found"), http.StatusBadRequest)
		return
	}
	if s.state != "" && q.Has("state") && q.Get("state") != s.state {
		logger.Warn("Ignoring callback with mismatched state")
		http.Error(w, s.loc.T("Invalid authorization state"), http.StatusBadRequest)
		return
	}
	s.publish(Result{Code: code})
	s.render(w, page{
		Mark:  "✓",
		Title: s.loc.T("Authorization Complete"),
		Lines: []string{
			s.loc.T("The authorization code was captured successfully."),
			s.loc.T("You can close this window and return to the application."),
		},
	})
}

func (s *Server) render(w http.ResponseWriter, p page) {
	p.Lang = s.loc.Code()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTmpl.Execute(w, p); err != nil {
		logger.Warn("Failed to render callback page", "error", err)
	}
}
