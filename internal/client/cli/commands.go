package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/codecredits/internal/client/client"
	"github.com/dmitrijs2005/codecredits/internal/client/guard"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/client/notify"
	"github.com/dmitrijs2005/codecredits/internal/common"
)

// ErrRedirected is returned by Exec when the guard refused the command.
var ErrRedirected = errors.New("command not allowed")

// ErrUnknownCommand is returned by Exec for names missing from the table.
var ErrUnknownCommand = errors.New("unknown command")

type command struct {
	name  string
	usage string
	short string
	route guard.RouteName
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"register", "register [username]", "create an account", guard.Register, (*App).register},
	{"login", "login [username]", "log in", guard.Login, (*App).login},
	{"logout", "logout", "log out and forget the saved session", guard.Home, (*App).logout},
	{"whoami", "whoami", "show the current user and token expiry", guard.Home, (*App).whoami},
	{"credits", "credits", "refresh and show the credit balance", guard.BuyCredits, (*App).credits},
	{"models", "models", "list generation models and their cost", guard.Generate, (*App).models},
	{"generate", "generate [model] [prompt...]", "generate code", guard.Generate, (*App).generate},
	{"history", "history [page]", "show code generation history", guard.History, (*App).history},
	{"payments", "payments [page]", "show payment history", guard.BuyCredits, (*App).payments},
	{"buy", "buy [credits]", "start a credit purchase", guard.BuyCredits, (*App).buy},
	{"verify", "verify [transaction-id]", "verify a payment (latest when no id is given)", guard.PaymentResult, (*App).verify},
	{"admin", "admin users [page] | grant <user-id> <amount> | stats", "administration", guard.Admin, (*App).admin},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// Exec runs one command after the navigation guard allowed it. Failures are
// reported through the notifier and returned.
func (a *App) Exec(ctx context.Context, name string, args []string) error {
	c, ok := lookupCommand(name)
	if !ok {
		notify.Error(a.notifier, "Unknown command: %s (type 'help')", name)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	d := guard.Resolve(c.route, a.store.IsLoggedIn(), a.store.IsAdmin())
	if !d.Allow {
		switch d.Redirect {
		case guard.Login:
			notify.Warning(a.notifier, "Please log in first: run 'login'")
		default:
			notify.Warning(a.notifier, "Administrator privileges are required for '%s'", name)
		}
		return fmt.Errorf("%w: %s redirects to %s", ErrRedirected, name, d.Redirect)
	}

	if err := c.run(a, ctx, args); err != nil {
		a.report(ctx, name, err)
		return err
	}
	return nil
}

// report turns an action error into one user-facing message.
func (a *App) report(ctx context.Context, name string, err error) {
	a.log.Debug(ctx, "command failed", "command", name, "status", client.StatusCode(err), "error", err)

	var apiErr *client.APIError
	switch {
	case errors.Is(err, context.Canceled):
		notify.Info(a.notifier, "Cancelled")
	case errors.Is(err, client.ErrUnauthorized):
		notify.Error(a.notifier, "Session expired or credentials rejected. Please log in again.")
	case errors.Is(err, client.ErrForbidden):
		notify.Error(a.notifier, "Not enough permissions")
	case client.IsUnavailable(err):
		notify.Error(a.notifier, "Server unavailable, try again later")
	case errors.Is(err, common.ErrNoSession):
		notify.Error(a.notifier, "Not logged in")
	case errors.As(err, &apiErr) && client.StatusCode(err) >= 500:
		notify.Error(a.notifier, "Server error (HTTP %d): %s", client.StatusCode(err), apiErr.Message())
	case errors.As(err, &apiErr):
		notify.Error(a.notifier, "%s", apiErr.Message())
	default:
		notify.Error(a.notifier, "%s", err.Error())
	}
}

func (a *App) register(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter username")
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if string(password) != string(confirm) {
		return errors.New("passwords do not match")
	}

	u, err := a.store.Register(ctx, models.RegisterRequest{Username: username, Email: email, Password: string(password)})
	if err != nil {
		return err
	}
	notify.Success(a.notifier, "Account %s created. Run 'login' to sign in.", u.Username)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter username")
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.store.Login(ctx, models.Credentials{Username: username, Password: string(password)}); err != nil {
		return err
	}
	notify.Success(a.notifier, "Logged in as %s. Credits: %s", username, formatCredits(a.store.Credits()))
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	a.store.Logout(ctx)
	notify.Success(a.notifier, "Logged out")
	return nil
}

func (a *App) whoami(_ context.Context, _ []string) error {
	u := a.store.CurrentUser()
	if u == nil {
		notify.Info(a.notifier, "Not logged in")
		return nil
	}

	role := "user"
	if u.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(a.out, "%s (id %d, %s)\n", u.Username, u.ID, role)
	if u.Email != "" {
		fmt.Fprintf(a.out, "email:   %s\n", u.Email)
	}
	fmt.Fprintf(a.out, "credits: %s\n", formatCredits(a.store.Credits()))

	claims, err := client.ParseTokenClaims(a.store.Token())
	if err != nil {
		return nil
	}
	if !claims.ExpiresAt.IsZero() {
		state := "valid until"
		if claims.Expired(time.Now()) {
			state = "expired at"
		}
		fmt.Fprintf(a.out, "token:   %s %s\n", state, claims.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) credits(ctx context.Context, _ []string) error {
	if _, err := a.store.FetchCredits(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "credits: %s\n", formatCredits(a.store.Credits()))
	return nil
}

func (a *App) models(ctx context.Context, _ []string) error {
	ms, err := a.store.FetchModels(ctx)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		notify.Info(a.notifier, "No models available")
		return nil
	}
	renderModels(a.out, ms)
	return nil
}

func (a *App) generate(ctx context.Context, args []string) error {
	model, err := a.argOrPrompt(args, 0, "Enter model name (see 'models')")
	if err != nil {
		return err
	}

	prompt := ""
	if len(args) > 1 {
		prompt = strings.Join(args[1:], " ")
	} else {
		prompt, err = GetMultiline(a.reader, "Describe the code to generate", a.out)
		if err != nil {
			return err
		}
	}

	g, err := a.store.GenerateCode(ctx, models.GenerateRequest{ModelName: model, Prompt: prompt})
	if err != nil {
		return err
	}
	if g == nil {
		return common.ErrNoSession
	}

	renderGeneration(a.out, g)
	notify.Success(a.notifier, "Used %s credits, %s left", formatCredits(g.CreditsUsed), formatCredits(a.store.Credits()))
	return nil
}

func (a *App) history(ctx context.Context, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return err
	}
	h, err := a.store.FetchCodeHistory(ctx, a.page(page))
	if err != nil {
		return err
	}
	if len(h) == 0 {
		notify.Info(a.notifier, "No generations on page %d", page)
		return nil
	}

	total, err := a.store.FetchCodeHistoryCount(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to fetch history count", "error", err)
		total = int64(len(h))
	}
	renderHistory(a.out, h, page, total)
	return nil
}

func (a *App) payments(ctx context.Context, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return err
	}
	txs, err := a.store.FetchPaymentHistory(ctx, a.page(page))
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		notify.Info(a.notifier, "No payments on page %d", page)
		return nil
	}
	renderPayments(a.out, txs)
	return nil
}

func (a *App) buy(ctx context.Context, args []string) error {
	var (
		credits int64
		err     error
	)
	if len(args) > 0 {
		credits, err = parsePositiveInt(args[0])
	} else {
		credits, err = GetPositiveInt(a.reader, "How many credits?", a.out)
	}
	if err != nil {
		return err
	}

	intent, err := a.store.CreatePayment(ctx, credits)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Complete the payment at:\n  %s\n", intent.CheckoutURL)
	fmt.Fprintf(a.out, "transaction: %s, amount: %d, credits: %d\n", intent.TransactionID, intent.Amount, intent.Credits)
	notify.Info(a.notifier, "Run 'verify %s' once the payment is done", intent.TransactionID)
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	var (
		ok  bool
		err error
	)
	if len(args) > 0 {
		ok, err = a.store.VerifyPayment(ctx, args[0])
	} else {
		ok, err = a.store.VerifyLatestPayment(ctx)
	}
	if err != nil {
		return err
	}

	if !ok {
		notify.Info(a.notifier, "No completed payment to apply yet")
		return nil
	}
	notify.Success(a.notifier, "Payment confirmed. Credits: %s", formatCredits(a.store.Credits()))
	return nil
}

// argOrPrompt returns args[i] when present, otherwise asks for it.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if len(args) > i && args[i] != "" {
		return args[i], nil
	}
	return GetRequiredText(a.reader, prompt, a.out)
}

func pageArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return common.DefaultPage, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page %q", args[i])
	}
	return n, nil
}
