package store

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/codecredits/internal/client/client"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetches_ZeroCallsWithoutToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.store.FetchCredits(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	ms, err := f.store.FetchModels(ctx)
	require.NoError(t, err)
	assert.Nil(t, ms)

	h, err := f.store.FetchCodeHistory(ctx, models.Page{})
	require.NoError(t, err)
	assert.Nil(t, h)

	txs, err := f.store.FetchPaymentHistory(ctx, models.Page{})
	require.NoError(t, err)
	assert.Nil(t, txs)

	n, err := f.store.FetchCodeHistoryCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	g, err := f.store.GenerateCode(ctx, models.GenerateRequest{ModelName: "m", Prompt: "p"})
	require.NoError(t, err)
	assert.Nil(t, g)

	assert.Zero(t, f.be.total())
}

func TestFetches_ExactlyOneCallWithToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, models.User{ID: 1, Username: "a"}, 1)
	f.be.json("GET /models/", http.StatusOK, []models.ModelPricing{{ID: 1, ModelName: "gpt-x", CreditCostPerRequest: 5}})
	f.be.json("GET /code/history", http.StatusOK, []models.CodeGeneration{{ID: 2}, {ID: 1}})
	f.be.json("GET /payment/history", http.StatusOK, []models.PaymentTransaction{{TransactionID: "tx"}})

	cases := []struct {
		route string
		run   func() error
	}{
		{"GET /users/me/credits", func() error { _, err := f.store.FetchCredits(ctx); return err }},
		{"GET /models/", func() error { _, err := f.store.FetchModels(ctx); return err }},
		{"GET /code/history", func() error { _, err := f.store.FetchCodeHistory(ctx, models.Page{Page: 2}); return err }},
		{"GET /payment/history", func() error { _, err := f.store.FetchPaymentHistory(ctx, models.Page{}); return err }},
	}
	for _, tc := range cases {
		before := f.be.total()
		beforeRoute := f.be.count(tc.route)
		require.NoError(t, tc.run(), tc.route)
		assert.Equal(t, before+1, f.be.total(), tc.route)
		assert.Equal(t, beforeRoute+1, f.be.count(tc.route), tc.route)
	}

	assert.Len(t, f.store.Models(), 1)
	assert.Len(t, f.store.CodeHistory(), 2)
	assert.Len(t, f.store.PaymentTransactions(), 1)
}

func TestFetchCodeHistory_WholesaleReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, models.User{ID: 1, Username: "a"}, 1)

	f.be.json("GET /code/history", http.StatusOK, []models.CodeGeneration{{ID: 3}, {ID: 2}})
	_, err := f.store.FetchCodeHistory(ctx, models.Page{})
	require.NoError(t, err)

	f.be.json("GET /code/history", http.StatusOK, []models.CodeGeneration{{ID: 9}})
	_, err = f.store.FetchCodeHistory(ctx, models.Page{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, []models.CodeGeneration{{ID: 9}}, f.store.CodeHistory())
}

func TestGenerateCode_PrependsAndDebits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, models.User{ID: 1, Username: "a"}, 100)
	f.be.json("GET /code/history", http.StatusOK, []models.CodeGeneration{{ID: 1, CreditsUsed: 5}})
	_, err := f.store.FetchCodeHistory(ctx, models.Page{})
	require.NoError(t, err)

	rec := models.CodeGeneration{ID: 2, ModelName: "gpt-x", Prompt: "p", GeneratedCode: "...", CreditsUsed: 5}
	f.be.json("POST /code/generate-code", http.StatusOK, rec)

	got, err := f.store.GenerateCode(ctx, models.GenerateRequest{ModelName: "gpt-x", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, &rec, got)

	h := f.store.CodeHistory()
	require.Len(t, h, 2)
	assert.Equal(t, rec, h[0])
	assert.InDelta(t, 95.0, f.store.Credits(), 1e-9)
	assert.Equal(t, 1, f.be.count("GET /users/me/credits"), "no re-fetch after generation")
}

func TestGenerateCode_FailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, models.User{ID: 1, Username: "a"}, 3)
	f.be.json("POST /code/generate-code", http.StatusPaymentRequired, map[string]string{"detail": "Insufficient credits"})

	_, err := f.store.GenerateCode(ctx, models.GenerateRequest{ModelName: "m", Prompt: "p"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Insufficient credits", apiErr.Detail)
	assert.Empty(t, f.store.CodeHistory())
	assert.InDelta(t, 3.0, f.store.Credits(), 1e-9)
}

func TestGenerateCode_EmptyPrompt(t *testing.T) {
	f := newFixture(t)
	f.login(t, models.User{ID: 1, Username: "a"}, 3)
	before := f.be.total()

	_, err := f.store.GenerateCode(context.Background(), models.GenerateRequest{ModelName: "m", Prompt: "  "})
	require.ErrorIs(t, err, common.ErrEmptyPrompt)
	assert.Equal(t, before, f.be.total())
}

func TestFetchCredits_UnauthorizedSurfacedWithoutLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t, models.User{ID: 1, Username: "a"}, 3)
	f.be.json("GET /users/me/credits", http.StatusUnauthorized, map[string]string{"detail": "expired"})

	_, err := f.store.FetchCredits(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.True(t, f.store.IsLoggedIn())
}

func TestSnapshot_IsACopy(t *testing.T) {
	f := newFixture(t)
	f.login(t, models.User{ID: 1, Username: "a"}, 3)
	f.be.json("GET /models/", http.StatusOK, []models.ModelPricing{{ID: 1}})
	_, err := f.store.FetchModels(context.Background())
	require.NoError(t, err)

	snap := f.store.Snapshot()
	snap.User.Username = "mutated"
	snap.Models[0].ID = 99

	assert.Equal(t, "a", f.store.CurrentUser().Username)
	assert.Equal(t, int64(1), f.store.Models()[0].ID)
}

func TestRefreshCreditsEvery(t *testing.T) {
	f := newFixture(t)
	f.login(t, models.User{ID: 1, Username: "a"}, 3)
	f.be.json("GET /users/me/credits", http.StatusOK, models.CreditBalance{Credits: 7})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.store.RefreshCreditsEvery(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return f.be.count("GET /users/me/credits") >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	wg.Wait()

	assert.InDelta(t, 7.0, f.store.Credits(), 1e-9)
}

func TestRefreshCreditsEvery_SkipsWhenLoggedOut(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	f.store.RefreshCreditsEvery(ctx, 2*time.Millisecond)
	assert.Zero(t, f.be.total())
}
