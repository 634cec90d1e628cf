package model

import "time"

// InstallmentState describes a single entry of a payment schedule.
type InstallmentState string

const (
	InstallmentStatePending InstallmentState = "pending"
	InstallmentStatePaid    InstallmentState = "paid"
	InstallmentStateRefused InstallmentState = "refused"
)

// Installment is one dated fraction of the order total.
type Installment struct {
	ID       string           `json:"id"`
	Amount   float64          `json:"amount"`
	Currency string           `json:"currency"`
	DueDate  time.Time        `json:"due_date"`
	State    InstallmentState `json:"state"`
}

// CreditCard is a tokenized payment method stored by the payment provider.
type CreditCard struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Brand           string `json:"brand"`
	LastNumbers     string `json:"last_numbers"`
	ExpirationMonth int    `json:"expiration_month"`
	ExpirationYear  int    `json:"expiration_year"`
	IsMain          bool   `json:"is_main"`
}
