package store

import "time"

type User struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Category groups services on the public site. Referenced by id from
// services; the slug is only used in public URLs and never changes.
type Category struct {
	ID        string
	Name      string
	Slug      string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Service struct {
	ID         string
	CategoryID string
	Title      string
	Content    string
	Icon       string
	SortOrder  int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PriceCategory struct {
	ID        string
	Name      string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceItem is one row of the price list. PriceTo is nil for fixed prices;
// PriceNote carries text like "fra" or "efter aftale".
type PriceItem struct {
	ID         string
	CategoryID string
	Name       string
	PriceFrom  int
	PriceTo    *int
	PriceNote  string
	SortOrder  int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type FAQ struct {
	ID        string
	Question  string
	Answer    string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TeamMember struct {
	ID        string
	Name      string
	Title     string
	Bio       string
	ImagePath string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InstagramPost struct {
	ID        string
	ImagePath string
	Caption   string
	Permalink string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
