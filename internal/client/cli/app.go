package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/codecredits/internal/client/client"
	"github.com/dmitrijs2005/codecredits/internal/client/config"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/client/notify"
	"github.com/dmitrijs2005/codecredits/internal/client/repositories/session"
	"github.com/dmitrijs2005/codecredits/internal/client/store"
	"github.com/dmitrijs2005/codecredits/internal/filex"
	"github.com/dmitrijs2005/codecredits/internal/logging"
)

// Actions is the part of store.Store the CLI drives.
type Actions interface {
	IsLoggedIn() bool
	IsAdmin() bool
	Token() string
	CurrentUser() *models.User
	Credits() float64

	Login(ctx context.Context, creds models.Credentials) error
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context)
	RestoreSession(ctx context.Context) error

	FetchCredits(ctx context.Context) (*float64, error)
	FetchModels(ctx context.Context) ([]models.ModelPricing, error)
	FetchCodeHistory(ctx context.Context, page models.Page) ([]models.CodeGeneration, error)
	FetchCodeHistoryCount(ctx context.Context) (int64, error)
	GenerateCode(ctx context.Context, req models.GenerateRequest) (*models.CodeGeneration, error)

	CreatePayment(ctx context.Context, credits int64) (*models.PaymentIntent, error)
	VerifyPayment(ctx context.Context, transactionID string) (bool, error)
	VerifyLatestPayment(ctx context.Context) (bool, error)
	FetchPaymentHistory(ctx context.Context, page models.Page) ([]models.PaymentTransaction, error)

	FetchUsers(ctx context.Context, page models.Page) ([]models.User, error)
	GrantCredits(ctx context.Context, userID int64, amount float64) (*models.CreditGrant, error)
	FetchPaymentStatistics(ctx context.Context) (models.PaymentStatistics, error)

	RefreshCreditsEvery(ctx context.Context, interval time.Duration)

	Snapshot() store.State
	Subscribe(fn func(store.State)) (unsubscribe func())
}

var _ Actions = (*store.Store)(nil)

type App struct {
	store    Actions
	notifier notify.Notifier
	reader   *bufio.Reader
	out      io.Writer
	log      logging.Logger

	pageSize        int
	refreshInterval time.Duration

	db *sql.DB

	statusMu    sync.RWMutex
	status      string
	unsubscribe func()
}

func newApp(st Actions, n notify.Notifier, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.NewNop()
	}
	a := &App{
		store:    st,
		notifier: n,
		reader:   bufio.NewReader(in),
		out:      out,
		log:      log,
		pageSize: 10,
	}
	a.unsubscribe = st.Subscribe(a.onStateChange)
	a.onStateChange(st.Snapshot())
	return a
}

// NewApp opens the session database and wires the API client, the state
// store and a terminal notifier on stdin/stdout.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(cfg.SessionDBPath); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	db, err := session.OpenSQLite(ctx, cfg.SessionDBPath)
	if err != nil {
		log.Error(ctx, "error initializing session database", "path", cfg.SessionDBPath, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sessions := session.NewStore(session.NewSQLiteRepository(db))
	st := store.New(api, sessions, log.With("component", "store"))

	a := newApp(st, notify.NewTerminalNotifier(os.Stdout), os.Stdin, os.Stdout, log)
	a.pageSize = cfg.PageSize
	a.refreshInterval = cfg.CreditsRefreshInterval
	a.db = db
	return a, nil
}

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.store.IsLoggedIn()
}

func (a *App) isAdmin() bool {
	return a.store.IsAdmin()
}

// onStateChange keeps the prompt status in step with the store.
func (a *App) onStateChange(st store.State) {
	status := ""
	if st.User != nil {
		status = fmt.Sprintf("(%s, %s credits)", st.User.Username, formatCredits(st.Credits))
	}
	a.statusMu.Lock()
	a.status = status
	a.statusMu.Unlock()
}

// getStatus renders "(user, N credits)" for the prompt, or "" when logged out.
func (a *App) getStatus() string {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}

func (a *App) page(n int) models.Page {
	return models.Page{Page: n, Limit: a.pageSize}
}
