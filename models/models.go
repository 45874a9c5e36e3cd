// Package models holds the request and response shapes of the users API.
// Tender and bid payloads decode straight into the db entities.
package models

import "encoding/json"

type RegisterRequest struct {
	Name     *string `json:"name"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Role     string  `json:"role"`
}

// RegisterUpdateRequest carries the activation remark. Remark is either a
// plain string or a structured JSON object; both are normalized to text
// before storage.
type RegisterUpdateRequest struct {
	Email  string          `json:"email" validate:"required,email"`
	Remark json.RawMessage `json:"remark" validate:"required"`
}

type LoginUser struct {
	ID    int     `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        LoginUser `json:"user"`
}

type BidStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}
