package handlers

import (
	"context"

	"tendermarket/db"
)

type StorageInterface interface {
	CreateUser(ctx context.Context, u *db.User) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id int) (*db.User, error)
	GetUsers(ctx context.Context) ([]db.User, error)
	UpdateUserRegistration(ctx context.Context, u *db.User) error

	CreateTender(ctx context.Context, t *db.Tender) error
	GetTender(ctx context.Context, id int) (*db.Tender, error)
	GetTenders(ctx context.Context, userID int) ([]db.Tender, error)

	CreateBid(ctx context.Context, b *db.Bid) error
	GetBid(ctx context.Context, id int) (*db.Bid, error)
	GetBidByTenderAndUser(ctx context.Context, tenderID, userID int) (*db.Bid, error)
	GetBidsForTender(ctx context.Context, tenderID int) ([]db.Bid, error)
	GetUserBids(ctx context.Context, userID int) ([]db.BidWithTender, error)
	UpdateBidStatus(ctx context.Context, b *db.Bid) error
}
