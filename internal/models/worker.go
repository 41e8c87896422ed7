package models

import "time"

// CreateWorkerRequest adds a collector to the directory.
type CreateWorkerRequest struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Area         string `json:"area" validate:"required"`
	PriceSteel   int    `json:"price_steel" validate:"gte=0"`
	PricePlastic int    `json:"price_plastic" validate:"gte=0"`
	PricePaper   int    `json:"price_paper" validate:"gte=0"`
}

// Worker is a waste-collection service provider with per-material unit prices.
type Worker struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	Area         string    `db:"area" json:"area"`
	PriceSteel   int       `db:"price_steel" json:"price_steel"`
	PricePlastic int       `db:"price_plastic" json:"price_plastic"`
	PricePaper   int       `db:"price_paper" json:"price_paper"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
