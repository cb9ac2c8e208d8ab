package web

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/routes"
)

type ctxKey struct{}

// WithViewer stores the authenticated account in ctx.
func WithViewer(ctx context.Context, a *models.Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ViewerFrom returns the authenticated account, or nil.
func ViewerFrom(ctx context.Context) *models.Account {
	a, _ := ctx.Value(ctxKey{}).(*models.Account)
	return a
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// RequestLogger logs one line per request with method, path, status,
// response size and latency.
func RequestLogger(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			l.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"latency", time.Since(start).String(),
			)
		})
	}
}

// WithSession resolves the session cookie, when present, into the viewer.
// Invalid or expired sessions are treated as anonymous.
func (s *Server) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := readSessionCookie(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		account, err := s.sessions.Resolve(r.Context(), token)
		if err != nil {
			s.logger.Debug(r.Context(), "session rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), account)))
	})
}

// LoginRequired redirects anonymous callers to the sign-in page.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ViewerFrom(r.Context()) == nil {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ConsoleRequired is LoginRequired plus the console capability check.
func ConsoleRequired(next http.Handler) http.Handler {
	return LoginRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := admin.Authorize(ViewerFrom(r.Context())); err != nil {
			renderError(w, r, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := routes.MustReverse(routes.Login) + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}
