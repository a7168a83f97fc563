package client

import (
	"context"

	"github.com/dmitrijs2005/codecredits/internal/client/models"
)

// Client is the backend contract the application state container depends on.
// Authenticated calls are only meaningful on a view returned by WithToken.
type Client interface {
	WithToken(token string) Client
	Authenticated() bool

	Login(ctx context.Context, creds models.Credentials) (*models.TokenResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	Credits(ctx context.Context) (float64, error)

	Models(ctx context.Context) ([]models.ModelPricing, error)
	GenerateCode(ctx context.Context, req models.GenerateRequest) (*models.CodeGeneration, error)
	CodeHistory(ctx context.Context, page models.Page) ([]models.CodeGeneration, error)
	CodeHistoryCount(ctx context.Context) (int64, error)

	CreatePayment(ctx context.Context, credits int64) (*models.PaymentIntent, error)
	VerifyPayment(ctx context.Context, transactionID string) (bool, error)
	PaymentHistory(ctx context.Context, page models.Page) ([]models.PaymentTransaction, error)

	ListUsers(ctx context.Context, page models.Page) ([]models.User, error)
	AddCredits(ctx context.Context, userID int64, amount float64) (*models.CreditGrant, error)
	PaymentStatistics(ctx context.Context) (models.PaymentStatistics, error)
}
