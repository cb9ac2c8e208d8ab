// Package web serves the account pages, the sign-in flow and the admin
// console over HTTP.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/signin/internal/server/routes"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// Accounts is what the account pages need from the account manager.
type Accounts interface {
	forms.AccountStore
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context, q accounts.ListQuery) ([]*models.Account, error)
}

// Sessions authenticates credentials and resolves session tokens.
type Sessions interface {
	Login(ctx context.Context, email, password string) (string, *models.Account, error)
	Resolve(ctx context.Context, token string) (*models.Account, error)
	TTL() time.Duration
}

// Console is the admin backend behind /admin/accounts/.
type Console interface {
	Options() admin.ModelAdmin
	ChangeList(ctx context.Context, p admin.ChangeListParams) (*admin.ChangeList, error)
	Get(ctx context.Context, email string) (*models.Account, error)
	Add(ctx context.Context, f forms.CreationForm) (*models.Account, error)
	Change(ctx context.Context, email string, f forms.ChangeForm) (*models.Account, error)
	Deactivate(ctx context.Context, email string) (*models.Account, error)
	Export(ctx context.Context, p admin.ChangeListParams) (*services.ExportResult, error)
}

// Pinger reports storage health; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var (
	_ Accounts = (*services.AccountManager)(nil)
	_ Sessions = (*services.SessionService)(nil)
	_ Console  = (*admin.AccountAdmin)(nil)
)

// Deps are the collaborators of the HTTP server. DB may be nil.
type Deps struct {
	Accounts Accounts
	Sessions Sessions
	Console  Console
	DB       Pinger
}

type Server struct {
	address  string
	logger   logging.Logger
	accounts Accounts
	sessions Sessions
	console  Console
	db       Pinger
}

func NewServer(address string, l logging.Logger, d Deps) *Server {
	return &Server{
		address:  address,
		logger:   l.With("module", "http_server"),
		accounts: d.Accounts,
		sessions: d.Sessions,
		console:  d.Console,
		db:       d.DB,
	}
}

// pattern builds a ServeMux pattern for a named route. Trailing-slash
// paths are anchored so they do not act as subtree prefixes.
func pattern(method, name string) string {
	p := routes.Path(name)
	if strings.HasSuffix(p, "/") {
		p += "{$}"
	}
	return method + " " + p
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(pattern(http.MethodGet, routes.Health), s.health)
	mux.HandleFunc(pattern(http.MethodGet, routes.Login), s.loginPage)
	mux.HandleFunc(pattern(http.MethodPost, routes.Login), s.login)
	mux.HandleFunc(pattern(http.MethodPost, routes.Logout), s.logout)

	mux.Handle(pattern(http.MethodGet, routes.List), LoginRequired(http.HandlerFunc(s.listAccounts)))
	mux.Handle(pattern(http.MethodGet, routes.Redirect), LoginRequired(http.HandlerFunc(s.selfRedirect)))
	mux.Handle(pattern(http.MethodGet, routes.Update), LoginRequired(http.HandlerFunc(s.updateSelfPage)))
	mux.Handle(pattern(http.MethodPost, routes.Update), LoginRequired(http.HandlerFunc(s.updateSelf)))
	mux.Handle(pattern(http.MethodGet, routes.Detail), LoginRequired(http.HandlerFunc(s.accountDetail)))

	mux.Handle(pattern(http.MethodGet, routes.AdminList), ConsoleRequired(http.HandlerFunc(s.adminList)))
	mux.Handle(pattern(http.MethodGet, routes.AdminAdd), ConsoleRequired(http.HandlerFunc(s.adminAddPage)))
	mux.Handle(pattern(http.MethodPost, routes.AdminAdd), ConsoleRequired(http.HandlerFunc(s.adminAdd)))
	mux.Handle(pattern(http.MethodGet, routes.AdminChange), ConsoleRequired(http.HandlerFunc(s.adminChangePage)))
	mux.Handle(pattern(http.MethodPost, routes.AdminChange), ConsoleRequired(http.HandlerFunc(s.adminChange)))
	mux.Handle(pattern(http.MethodPost, routes.AdminDeactivate), ConsoleRequired(http.HandlerFunc(s.adminDeactivate)))
	mux.Handle(pattern(http.MethodGet, routes.AdminExport), ConsoleRequired(http.HandlerFunc(s.adminExport)))

	return RequestLogger(s.logger)(s.WithSession(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
