package handlers_test

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tendermarket/db"
	"tendermarket/internal/auth"
	"tendermarket/internal/handlers"
)

// MockStorage implements StorageInterface. Each method has an optional
// override; the defaults model a store with one tender owned by user 1
// and one bid by user 2.
type MockStorage struct {
	CreateUserFunc             func(ctx context.Context, u *db.User) error
	GetUserByEmailFunc         func(ctx context.Context, email string) (*db.User, error)
	GetUserByIDFunc            func(ctx context.Context, id int) (*db.User, error)
	GetUsersFunc               func(ctx context.Context) ([]db.User, error)
	UpdateUserRegistrationFunc func(ctx context.Context, u *db.User) error

	CreateTenderFunc func(ctx context.Context, t *db.Tender) error
	GetTenderFunc    func(ctx context.Context, id int) (*db.Tender, error)
	GetTendersFunc   func(ctx context.Context, userID int) ([]db.Tender, error)

	CreateBidFunc             func(ctx context.Context, b *db.Bid) error
	GetBidFunc                func(ctx context.Context, id int) (*db.Bid, error)
	GetBidByTenderAndUserFunc func(ctx context.Context, tenderID, userID int) (*db.Bid, error)
	GetBidsForTenderFunc      func(ctx context.Context, tenderID int) ([]db.Bid, error)
	GetUserBidsFunc           func(ctx context.Context, userID int) ([]db.BidWithTender, error)
	UpdateBidStatusFunc       func(ctx context.Context, b *db.Bid) error
}

func strPtr(s string) *string { return &s }

func sampleTender(id int) *db.Tender {
	return &db.Tender{
		ID:                   id,
		UserID:               1,
		Title:                "Lift Maintenance",
		ServiceType:          "maintenance",
		ScopeOfWork:          "Quarterly lift servicing",
		ContractPeriodMonths: 12,
		ClosingDate:          "2026-10-01",
		ClosingTime:          "17:00:00",
		ContactPerson:        "Jane",
		ContactEmail:         "jane@example.com",
		ContactPhone:         "0123456789",
		Status:               "open",
		ApprovalStatus:       "pending",
		CreatedAt:            time.Now(),
	}
}

func sampleBid(id int) *db.Bid {
	return &db.Bid{
		ID:             id,
		TenderID:       1,
		UserID:         2,
		ProposedAmount: 1000,
		CompanyName:    "Acme",
		Status:         "pending",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func (m *MockStorage) CreateUser(ctx context.Context, u *db.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, u)
	}
	u.ID = 1
	return nil
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return nil, sql.ErrNoRows
}

func (m *MockStorage) GetUserByID(ctx context.Context, id int) (*db.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return &db.User{ID: id, Email: "user@example.com", Role: "jmb"}, nil
}

func (m *MockStorage) GetUsers(ctx context.Context) ([]db.User, error) {
	if m.GetUsersFunc != nil {
		return m.GetUsersFunc(ctx)
	}
	return []db.User{{ID: 1, Name: strPtr("Alice"), Email: "alice@example.com", Role: "jmb"}}, nil
}

func (m *MockStorage) UpdateUserRegistration(ctx context.Context, u *db.User) error {
	if m.UpdateUserRegistrationFunc != nil {
		return m.UpdateUserRegistrationFunc(ctx, u)
	}
	return nil
}

func (m *MockStorage) CreateTender(ctx context.Context, t *db.Tender) error {
	if m.CreateTenderFunc != nil {
		return m.CreateTenderFunc(ctx, t)
	}
	t.ID = 1
	t.CreatedAt = time.Now()
	return nil
}

func (m *MockStorage) GetTender(ctx context.Context, id int) (*db.Tender, error) {
	if m.GetTenderFunc != nil {
		return m.GetTenderFunc(ctx, id)
	}
	return sampleTender(id), nil
}

func (m *MockStorage) GetTenders(ctx context.Context, userID int) ([]db.Tender, error) {
	if m.GetTendersFunc != nil {
		return m.GetTendersFunc(ctx, userID)
	}
	return []db.Tender{*sampleTender(1)}, nil
}

func (m *MockStorage) CreateBid(ctx context.Context, b *db.Bid) error {
	if m.CreateBidFunc != nil {
		return m.CreateBidFunc(ctx, b)
	}
	b.ID = 1
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	return nil
}

func (m *MockStorage) GetBid(ctx context.Context, id int) (*db.Bid, error) {
	if m.GetBidFunc != nil {
		return m.GetBidFunc(ctx, id)
	}
	return sampleBid(id), nil
}

func (m *MockStorage) GetBidByTenderAndUser(ctx context.Context, tenderID, userID int) (*db.Bid, error) {
	if m.GetBidByTenderAndUserFunc != nil {
		return m.GetBidByTenderAndUserFunc(ctx, tenderID, userID)
	}
	return nil, sql.ErrNoRows
}

func (m *MockStorage) GetBidsForTender(ctx context.Context, tenderID int) ([]db.Bid, error) {
	if m.GetBidsForTenderFunc != nil {
		return m.GetBidsForTenderFunc(ctx, tenderID)
	}
	b := sampleBid(1)
	b.TenderID = tenderID
	return []db.Bid{*b}, nil
}

func (m *MockStorage) GetUserBids(ctx context.Context, userID int) ([]db.BidWithTender, error) {
	if m.GetUserBidsFunc != nil {
		return m.GetUserBidsFunc(ctx, userID)
	}
	b := sampleBid(1)
	b.UserID = userID
	return []db.BidWithTender{{
		Bid: *b,
		Tender: db.TenderSummary{
			Title:       "Lift Maintenance",
			ServiceType: "maintenance",
			ClosingDate: "2026-10-01",
		},
	}}, nil
}

func (m *MockStorage) UpdateBidStatus(ctx context.Context, b *db.Bid) error {
	if m.UpdateBidStatusFunc != nil {
		return m.UpdateBidStatusFunc(ctx, b)
	}
	b.UpdatedAt = time.Now()
	return nil
}

func newTestHandler(store handlers.StorageInterface) *handlers.Handler {
	return handlers.NewHandler(store, zap.NewNop())
}

// asUser marks the request as authenticated, the way RequireAuth would.
func asUser(req *http.Request, u *db.User) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), u))
}
