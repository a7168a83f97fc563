package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/codecredits/internal/client/client"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/client/notify"
	"github.com/dmitrijs2005/codecredits/internal/client/repositories/session"
	"github.com/dmitrijs2005/codecredits/internal/client/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu     sync.Mutex
	hits   map[string]int
	bodies map[string][]byte
	routes map[string]any
	status map[string]int
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	f := &fakeAPI{hits: map[string]int{}, bodies: map[string][]byte{}, routes: map[string]any{}, status: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		payload, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.hits[key]++
		f.bodies[key] = payload
		body, ok := f.routes[key]
		code := f.status[key]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		if code == 0 {
			code = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func (f *fakeAPI) on(route string, code int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = body
	f.status[route] = code
}

func (f *fakeAPI) body(route string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

type testApp struct {
	*App
	api *fakeAPI
	rec *notify.Recorder
	out *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	api, url := newFakeAPI(t)
	hc, err := client.NewHTTPClient(url, 5*time.Second)
	require.NoError(t, err)
	st := store.New(hc, session.NewStore(session.NewMemoryRepository()), nil)

	rec := &notify.Recorder{}
	var out bytes.Buffer
	return &testApp{App: newApp(st, rec, strings.NewReader(input), &out, nil), api: api, rec: rec, out: &out}
}

func (ta *testApp) loginAs(t *testing.T, user models.User, credits float64) {
	t.Helper()
	ta.api.on("POST /token", http.StatusOK, models.TokenResponse{AccessToken: "T1"})
	ta.api.on("GET /users/me", http.StatusOK, user)
	ta.api.on("GET /users/me/credits", http.StatusOK, models.CreditBalance{Credits: credits})
	require.NoError(t, ta.store.Login(context.Background(), models.Credentials{Username: user.Username, Password: "pw"}))
}

func TestExec_GuardRedirectsAnonymousToLogin(t *testing.T) {
	ta := newTestApp(t, "")

	for _, name := range []string{"history", "generate", "buy", "verify", "credits", "payments", "models"} {
		err := ta.Exec(context.Background(), name, nil)
		require.ErrorIs(t, err, ErrRedirected, name)
		assert.Equal(t, notify.SeverityWarning, ta.rec.Last().Severity)
		assert.Contains(t, ta.rec.Last().Text, "log in")
	}
	assert.Zero(t, ta.api.total())
}

func TestExec_GuardRedirectsNonAdminHome(t *testing.T) {
	ta := newTestApp(t, "")
	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 1)
	before := ta.api.total()

	err := ta.Exec(context.Background(), "admin", []string{"stats"})
	require.ErrorIs(t, err, ErrRedirected)
	assert.Contains(t, ta.rec.Last().Text, "Administrator")
	assert.Equal(t, before, ta.api.total())
}

func TestExec_UnknownCommand(t *testing.T) {
	ta := newTestApp(t, "")
	err := ta.Exec(context.Background(), "frobnicate", nil)
	require.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, notify.SeverityError, ta.rec.Last().Severity)
}

func TestLoginCommand_PromptsAndLogsIn(t *testing.T) {
	ta := newTestApp(t, "alice\nsecret\n")
	ta.api.on("POST /token", http.StatusOK, models.TokenResponse{AccessToken: "T1"})
	ta.api.on("GET /users/me", http.StatusOK, models.User{ID: 1, Username: "alice"})
	ta.api.on("GET /users/me/credits", http.StatusOK, models.CreditBalance{Credits: 100})

	require.NoError(t, ta.Exec(context.Background(), "login", nil))
	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, notify.Message{Severity: notify.SeveritySuccess, Text: "Logged in as alice. Credits: 100"}, ta.rec.Last())
	assert.Equal(t, "(alice, 100 credits)", ta.getStatus())
}

func TestLoginCommand_RejectedCredentials(t *testing.T) {
	ta := newTestApp(t, "secret\n")
	ta.api.on("POST /token", http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})

	err := ta.Exec(context.Background(), "login", []string{"alice"})
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, ta.isLoggedIn())
	assert.Equal(t, notify.SeverityError, ta.rec.Last().Severity)
}

func TestRegisterCommand(t *testing.T) {
	ta := newTestApp(t, "bob\nbob@example.com\npw\npw\n")
	ta.api.on("POST /register", http.StatusOK, models.User{ID: 2, Username: "bob"})

	require.NoError(t, ta.Exec(context.Background(), "register", nil))
	assert.Contains(t, ta.rec.Last().Text, "Account bob created")
	assert.False(t, ta.isLoggedIn())
}

func TestRegisterCommand_PasswordMismatch(t *testing.T) {
	ta := newTestApp(t, "bob@example.com\npw\nother\n")

	err := ta.Exec(context.Background(), "register", []string{"bob"})
	require.Error(t, err)
	assert.Zero(t, ta.api.total())
}

func TestGenerateCommand_RendersCodeAndDebits(t *testing.T) {
	ta := newTestApp(t, "")
	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 100)
	ta.api.on("POST /code/generate-code", http.StatusOK, models.CodeGeneration{ID: 1, ModelName: "gpt-x", GeneratedCode: "print('hi')", CreditsUsed: 5})

	require.NoError(t, ta.Exec(context.Background(), "generate", []string{"gpt-x", "say", "hi"}))
	assert.Contains(t, ta.out.String(), "print('hi')")
	assert.Equal(t, "Used 5 credits, 95 left", ta.rec.Last().Text)
	assert.Equal(t, "(a, 95 credits)", ta.getStatus())
}

func TestGenerateCommand_ReadsMultilinePrompt(t *testing.T) {
	ta := newTestApp(t, "line one\nline two\n\n")
	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 10)
	ta.api.on("POST /code/generate-code", http.StatusOK, models.CodeGeneration{ID: 1, GeneratedCode: "x", CreditsUsed: 1})

	require.NoError(t, ta.Exec(context.Background(), "generate", []string{"gpt-x"}))
	var req models.GenerateRequest
	require.NoError(t, json.Unmarshal(ta.api.body("POST /code/generate-code"), &req))
	assert.Equal(t, models.GenerateRequest{ModelName: "gpt-x", Prompt: "line one\nline two"}, req)
}

func TestGenerateCommand_InsufficientCreditsShowsDetail(t *testing.T) {
	ta := newTestApp(t, "")
	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 1)
	ta.api.on("POST /code/generate-code", http.StatusPaymentRequired, map[string]string{"detail": "Insufficient credits"})

	err := ta.Exec(context.Background(), "generate", []string{"gpt-x", "p"})
	require.Error(t, err)
	assert.Equal(t, notify.Message{Severity: notify.SeverityError, Text: "Insufficient credits"}, ta.rec.Last())
}

func TestHistoryCommand(t *testing.T) {
	ta := newTestApp(t, "")
	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 1)
	ta.api.on("GET /code/history", http.StatusOK, []models.CodeGeneration{{ID: 7, ModelName: "gpt-x", Prompt: "hello", CreditsUsed: 2}})
	ta.api.on("GET /code/history/count", http.StatusOK, models.Count{Count: 11})

	require.NoError(t, ta.Exec(context.Background(), "history", []string{"2"}))
	out := ta.out.String()
	assert.Contains(t, out, "gpt-x")
	assert.Contains(t, out, "page 2, 11 total")

	err := ta.Exec(context.Background(), "history", []string{"zero"})
	require.Error(t, err)
}

func TestBuyAndVerifyCommands(t *testing.T) {
	ta := newTestApp(t, "")
	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 0)
	ta.api.on("POST /payment/create", http.StatusOK, models.PaymentIntent{CheckoutURL: "https://pay.example/c/1", TransactionID: "tx1", Amount: 50000, Credits: 50})

	require.NoError(t, ta.Exec(context.Background(), "buy", []string{"50"}))
	assert.Contains(t, ta.out.String(), "https://pay.example/c/1")
	assert.Contains(t, ta.rec.Last().Text, "verify tx1")

	before := ta.api.total()
	require.NoError(t, ta.Exec(context.Background(), "verify", []string{"{paymentLinkId}"}))
	assert.Equal(t, before, ta.api.total())
	assert.Equal(t, notify.SeverityInfo, ta.rec.Last().Severity)

	ta.api.on("GET /payment/verify/tx1", http.StatusOK, true)
	ta.api.on("GET /users/me/credits", http.StatusOK, models.CreditBalance{Credits: 50})
	require.NoError(t, ta.Exec(context.Background(), "verify", []string{"tx1"}))
	assert.Equal(t, "Payment confirmed. Credits: 50", ta.rec.Last().Text)
}

func TestBuyCommand_InvalidAmount(t *testing.T) {
	ta := newTestApp(t, "")
	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 0)
	before := ta.api.total()

	require.Error(t, ta.Exec(context.Background(), "buy", []string{"-5"}))
	assert.Equal(t, before, ta.api.total())
}

func TestAdminCommands(t *testing.T) {
	ta := newTestApp(t, "")
	ta.loginAs(t, models.User{ID: 1, Username: "root", IsAdmin: true}, 0)
	ta.api.on("GET /admin/users", http.StatusOK, []models.User{{ID: 2, Username: "bob", Credits: 3}})
	ta.api.on("POST /admin/users/2/add-credits", http.StatusOK, models.CreditGrant{Message: "Added 10 credits to user bob", CurrentCredits: 13})
	ta.api.on("GET /admin/payment-statistics", http.StatusOK, map[string]any{"total_transactions": 4})
	ctx := context.Background()

	require.NoError(t, ta.Exec(ctx, "admin", []string{"users"}))
	assert.Contains(t, ta.out.String(), "bob")

	require.NoError(t, ta.Exec(ctx, "admin", []string{"grant", "2", "10"}))
	assert.Equal(t, "Added 10 credits to user bob (now 13)", ta.rec.Last().Text)

	require.NoError(t, ta.Exec(ctx, "admin", []string{"stats"}))
	assert.Contains(t, ta.out.String(), "total_transactions")

	require.Error(t, ta.Exec(ctx, "admin", []string{"grant", "x", "1"}))
	require.Error(t, ta.Exec(ctx, "admin", nil))
}

func TestLogoutAndWhoami(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, ta.Exec(ctx, "whoami", nil))
	assert.Equal(t, "Not logged in", ta.rec.Last().Text)

	ta.loginAs(t, models.User{ID: 3, Username: "carol", Email: "c@x"}, 7)
	require.NoError(t, ta.Exec(ctx, "whoami", nil))
	assert.Contains(t, ta.out.String(), "carol (id 3, user)")
	assert.Contains(t, ta.out.String(), "credits: 7")

	require.NoError(t, ta.Exec(ctx, "logout", nil))
	assert.False(t, ta.isLoggedIn())
	assert.Empty(t, ta.getStatus())
}

func TestRoot_RestoresNothingAndExits(t *testing.T) {
	capturePrintln(t)
	ta := newTestApp(t, "exit\n")

	ta.Root(context.Background())
	assert.Equal(t, notify.Message{Severity: notify.SeverityInfo, Text: "Not logged in. Run 'login' or 'register'."}, ta.rec.Messages()[0])
	assert.Zero(t, ta.api.total())
}

func TestStatus_FollowsStoreChanges(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()
	assert.Empty(t, ta.getStatus())

	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 3)
	assert.Equal(t, "(a, 3 credits)", ta.getStatus())

	ta.api.on("GET /users/me/credits", http.StatusOK, models.CreditBalance{Credits: 7.5})
	_, err := ta.store.FetchCredits(ctx)
	require.NoError(t, err)
	assert.Equal(t, "(a, 7.5 credits)", ta.getStatus())

	require.NoError(t, ta.Close())
	ta.store.Logout(ctx)
	assert.Equal(t, "(a, 7.5 credits)", ta.getStatus())
}

func TestReport_ServerAndTransportErrors(t *testing.T) {
	ta := newTestApp(t, "")
	ta.loginAs(t, models.User{ID: 1, Username: "a"}, 3)
	ta.api.on("GET /users/me/credits", http.StatusInternalServerError, map[string]string{"detail": "db down"})

	require.Error(t, ta.Exec(context.Background(), "credits", nil))
	assert.Equal(t, notify.Message{Severity: notify.SeverityError, Text: "Server error (HTTP 500): db down"}, ta.rec.Last())

	ta.report(context.Background(), "credits", fmt.Errorf("fetch credits: %w", client.ErrUnavailable))
	assert.Equal(t, "Server unavailable, try again later", ta.rec.Last().Text)
}
