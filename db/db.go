package db

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// User
type User struct {
	ID       int     `db:"id" json:"id"`
	Name     *string `db:"name" json:"name"`
	Email    string  `db:"email" json:"email"`
	Password string  `db:"password" json:"-"`
	Role     string  `db:"role" json:"role"`
	Remark   *string `db:"remark" json:"remark"`
	Status   int     `db:"status" json:"status"`
}

func (s *Storage) CreateUser(ctx context.Context, u *User) error {
	query := `
        INSERT INTO users (name, email, password, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, status`
	return s.db.QueryRowContext(ctx, query, u.Name, u.Email, u.Password, u.Role).
		Scan(&u.ID, &u.Status)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE email=$1`
	err := s.db.GetContext(ctx, u, query, email)
	return u, err
}

func (s *Storage) GetUserByID(ctx context.Context, id int) (*User, error) {
	u := &User{}
	query := `SELECT * FROM users WHERE id=$1`
	err := s.db.GetContext(ctx, u, query, id)
	return u, err
}

func (s *Storage) GetUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	query := `SELECT * FROM users ORDER BY id ASC`
	err := s.db.SelectContext(ctx, &users, query)
	return users, err
}

func (s *Storage) UpdateUserRegistration(ctx context.Context, u *User) error {
	query := `
        UPDATE users
        SET remark = $1, status = $2
        WHERE id = $3`
	_, err := s.db.ExecContext(ctx, query, u.Remark, u.Status, u.ID)
	return err
}

// Tender
type Tender struct {
	ID                   int            `db:"id" json:"id"`
	UserID               int            `db:"user_id" json:"user_id"`
	Title                string         `db:"title" json:"title" validate:"required,max=200"`
	ServiceType          string         `db:"service_type" json:"service_type" validate:"required"`
	PropertyName         *string        `db:"property_name" json:"property_name"`
	PropertyAddress      *string        `db:"property_address" json:"property_address"`
	ScopeOfWork          string         `db:"scope_of_work" json:"scope_of_work" validate:"required"`
	ContractPeriodMonths int            `db:"contract_period_months" json:"contract_period_months" validate:"required,min=1"`
	MinBudget            *float64       `db:"min_budget" json:"min_budget"`
	MaxBudget            *float64       `db:"max_budget" json:"max_budget"`
	ClosingDate          string         `db:"closing_date" json:"closing_date" validate:"required,datetime=2006-01-02"`
	ClosingTime          string         `db:"closing_time" json:"closing_time" validate:"required,datetime=15:04:05"`
	SiteVisitDate        *string        `db:"site_visit_date" json:"site_visit_date" validate:"omitempty,datetime=2006-01-02"`
	SiteVisitTime        *string        `db:"site_visit_time" json:"site_visit_time" validate:"omitempty,datetime=15:04:05"`
	ContactPerson        string         `db:"contact_person" json:"contact_person" validate:"required"`
	ContactEmail         string         `db:"contact_email" json:"contact_email" validate:"required,email"`
	ContactPhone         string         `db:"contact_phone" json:"contact_phone" validate:"required"`
	RequiredLicenses     pq.StringArray `db:"required_licenses" json:"required_licenses"`
	EvaluationCriteria   CriteriaList   `db:"evaluation_criteria" json:"evaluation_criteria"`
	TenderFee            *float64       `db:"tender_fee" json:"tender_fee"`
	TenderDocuments      pq.StringArray `db:"tender_documents" json:"tender_documents"`
	Status               string         `db:"status" json:"status"`
	ApprovalStatus       string         `db:"approval_status" json:"approval_status"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
}

func (s *Storage) CreateTender(ctx context.Context, t *Tender) error {
	query := `
        INSERT INTO tenders
            (user_id, title, service_type, property_name, property_address,
             scope_of_work, contract_period_months, min_budget, max_budget,
             closing_date, closing_time, site_visit_date, site_visit_time,
             contact_person, contact_email, contact_phone,
             required_licenses, evaluation_criteria, tender_fee, tender_documents,
             status, approval_status)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
             $17, $18, $19, $20, $21, $22)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		t.UserID, t.Title, t.ServiceType, t.PropertyName, t.PropertyAddress,
		t.ScopeOfWork, t.ContractPeriodMonths, t.MinBudget, t.MaxBudget,
		t.ClosingDate, t.ClosingTime, t.SiteVisitDate, t.SiteVisitTime,
		t.ContactPerson, t.ContactEmail, t.ContactPhone,
		t.RequiredLicenses, t.EvaluationCriteria, t.TenderFee, t.TenderDocuments,
		t.Status, t.ApprovalStatus).
		Scan(&t.ID, &t.CreatedAt)
}

func (s *Storage) GetTender(ctx context.Context, id int) (*Tender, error) {
	t := &Tender{}
	query := `SELECT * FROM tenders WHERE id=$1`
	err := s.db.GetContext(ctx, t, query, id)
	return t, err
}

// GetTenders returns all tenders, or only those owned by userID when userID > 0.
func (s *Storage) GetTenders(ctx context.Context, userID int) ([]Tender, error) {
	tenders := []Tender{}
	if userID > 0 {
		query := `SELECT * FROM tenders WHERE user_id=$1 ORDER BY id ASC`
		err := s.db.SelectContext(ctx, &tenders, query, userID)
		return tenders, err
	}
	query := `SELECT * FROM tenders ORDER BY id ASC`
	err := s.db.SelectContext(ctx, &tenders, query)
	return tenders, err
}

// DeleteTender removes a tender; its bids go with it through the FK cascade.
func (s *Storage) DeleteTender(ctx context.Context, id int) error {
	query := `DELETE FROM tenders WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// Bid
type Bid struct {
	ID                  int       `db:"id" json:"id"`
	TenderID            int       `db:"tender_id" json:"tender_id" validate:"required"`
	UserID              int       `db:"user_id" json:"user_id"`
	ProposedAmount      float64   `db:"proposed_amount" json:"proposed_amount" validate:"required,gt=0"`
	ProposalDocument    *string   `db:"proposal_document" json:"proposal_document"`
	CoverLetter         *string   `db:"cover_letter" json:"cover_letter"`
	CompanyName         string    `db:"company_name" json:"company_name" validate:"required"`
	CompanyRegistration *string   `db:"company_registration" json:"company_registration"`
	YearsOfExperience   *int      `db:"years_of_experience" json:"years_of_experience"`
	Status              string    `db:"status" json:"status"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// TenderSummary is the slice of the parent tender attached to bid listings.
type TenderSummary struct {
	Title       string `db:"title" json:"title"`
	ServiceType string `db:"service_type" json:"service_type"`
	ClosingDate string `db:"closing_date" json:"closing_date"`
}

type BidWithTender struct {
	Bid
	Tender TenderSummary `db:"tender" json:"tender"`
}

func (s *Storage) CreateBid(ctx context.Context, b *Bid) error {
	query := `
        INSERT INTO bids
            (tender_id, user_id, proposed_amount, proposal_document, cover_letter,
             company_name, company_registration, years_of_experience, status)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`
	return s.db.QueryRowContext(ctx, query,
		b.TenderID, b.UserID, b.ProposedAmount, b.ProposalDocument, b.CoverLetter,
		b.CompanyName, b.CompanyRegistration, b.YearsOfExperience, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (s *Storage) GetBid(ctx context.Context, id int) (*Bid, error) {
	b := &Bid{}
	query := `SELECT * FROM bids WHERE id=$1`
	err := s.db.GetContext(ctx, b, query, id)
	return b, err
}

func (s *Storage) GetBidByTenderAndUser(ctx context.Context, tenderID, userID int) (*Bid, error) {
	b := &Bid{}
	query := `SELECT * FROM bids WHERE tender_id=$1 AND user_id=$2`
	err := s.db.GetContext(ctx, b, query, tenderID, userID)
	return b, err
}

func (s *Storage) GetBidsForTender(ctx context.Context, tenderID int) ([]Bid, error) {
	bids := []Bid{}
	query := `SELECT * FROM bids WHERE tender_id=$1 ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &bids, query, tenderID)
	return bids, err
}

// GetUserBids returns the user's bids together with a summary of each parent tender.
func (s *Storage) GetUserBids(ctx context.Context, userID int) ([]BidWithTender, error) {
	bids := []BidWithTender{}
	query := `
        SELECT b.*,
               t.title AS "tender.title",
               t.service_type AS "tender.service_type",
               t.closing_date AS "tender.closing_date"
        FROM bids b
        JOIN tenders t ON b.tender_id = t.id
        WHERE b.user_id = $1
        ORDER BY b.created_at DESC`
	err := s.db.SelectContext(ctx, &bids, query, userID)
	return bids, err
}

func (s *Storage) UpdateBidStatus(ctx context.Context, b *Bid) error {
	query := `
        UPDATE bids
        SET status = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING updated_at`
	return s.db.QueryRowContext(ctx, query, b.Status, b.ID).Scan(&b.UpdatedAt)
}

// IsUniqueViolation reports whether err is a postgres unique constraint error.
// The bids table has a unique index on (tender_id, user_id), so a concurrent
// duplicate submission surfaces here even when the read-then-write check races.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
