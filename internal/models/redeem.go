package models

import "time"

// GrantCreditsRequest is the admin-facing additive credit delta. Bounds are
// enforced server-side, not just in the client form.
type GrantCreditsRequest struct {
	Credits int `json:"credits" validate:"required,gte=1,lte=1000"`
}

// RedeemResponse pairs the minted code with the remaining balance.
type RedeemResponse struct {
	Code    RedeemCode `json:"code"`
	Credits int        `json:"credits"`
}

// RedeemCode is an opaque reward token minted when a citizen redeems credits.
type RedeemCode struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	UserID    string    `db:"user_id" json:"user_id"`
	Redeemed  bool      `db:"redeemed" json:"redeemed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
