package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	TermsAgreed  bool      `json:"terms_agreed"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Address struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	AddressType string    `json:"address_type"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PaymentMethod struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	CardType    string    `json:"card_type"`
	LastFour    string    `json:"last_four"`
	ExpiryMonth string    `json:"expiry_month"`
	ExpiryYear  string    `json:"expiry_year"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type WishlistItem struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	EventID int64     `json:"event_id"`
	AddedAt time.Time `json:"added_at"`
	Event   *Event    `json:"event,omitempty"`
}
