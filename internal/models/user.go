package models

import "time"

// Fixed role set, created once during first-run seeding
const (
	RoleAdmin   = "Admin"
	RoleUser    = "User"
	RoleTrainer = "Trainer"
)

// User represents a registered account in the users table
type User struct {
	UserID         string          `json:"user_id" dynamodbav:"user_id"`   // Primary Key
	Username       string          `json:"username" dynamodbav:"username"` // As entered at registration
	UsernameNorm   string          `json:"-" dynamodbav:"username_norm"`   // Lower-cased, uniqueness key (GSI)
	PasswordHash   string          `json:"-" dynamodbav:"password_hash"`   // bcrypt hash (never in JSON)
	Roles          []string        `json:"roles,omitempty" dynamodbav:"roles,stringset,omitempty"`
	KnownAs        string          `json:"known_as" dynamodbav:"known_as"`
	Gender         int             `json:"gender" dynamodbav:"gender"`
	Introduction   string          `json:"introduction" dynamodbav:"introduction"`
	IsTrainer      bool            `json:"is_trainer" dynamodbav:"is_trainer"`
	AdsBidding     float64         `json:"ads_bidding" dynamodbav:"ads_bidding"`
	Address        *Address        `json:"address,omitempty" dynamodbav:"address,omitempty"`
	Photo          *Photo          `json:"photo,omitempty" dynamodbav:"photo,omitempty"`
	Certifications []Certification `json:"certifications,omitempty" dynamodbav:"certifications,omitempty"`
	Focuses        []Focus         `json:"focuses,omitempty" dynamodbav:"focuses,omitempty"`
	CreatedAt      time.Time       `json:"created_at" dynamodbav:"created_at"`
	LastActive     time.Time       `json:"last_active" dynamodbav:"last_active"`
}

// Address holds the profile address block, opaque to the auth core
type Address struct {
	City        string `json:"city" dynamodbav:"city"`
	Province    string `json:"province" dynamodbav:"province"`
	Country     string `json:"country" dynamodbav:"country"`
	FullAddress string `json:"full_address" dynamodbav:"full_address"`
}

// Photo is the profile image attached to an account
type Photo struct {
	URL         string `json:"url" dynamodbav:"url"`
	Description string `json:"description" dynamodbav:"description"`
}

// Certification is a trainer certification entry
type Certification struct {
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description" dynamodbav:"description"`
}

// Focus is a named training focus area. Focus entities are minted per
// seed run (legacy behavior carried over from the original seeder).
type Focus struct {
	FocusID string `json:"focus_id" dynamodbav:"focus_id"`
	Name    string `json:"name" dynamodbav:"name"`
}

// Role represents an item in the roles table
type Role struct {
	Name           string `json:"name" dynamodbav:"name"` // Primary Key
	NormalizedName string `json:"normalized_name" dynamodbav:"normalized_name"`
}

// Daily counter kinds
const (
	CounterSignup = "signup"
	CounterSignin = "signin"
)

// DailyCounter aggregates successful signups/signins per calendar day.
// At most one item exists per kind+date.
type DailyCounter struct {
	CounterKey string `json:"counter_key" dynamodbav:"counter_key"` // Primary Key: "<kind>#YYYY-MM-DD"
	Kind       string `json:"kind" dynamodbav:"kind"`
	Date       string `json:"date" dynamodbav:"date"` // YYYY-MM-DD
	EventCount int64  `json:"event_count" dynamodbav:"event_count"`
}

// RegisterRequest represents registration request payload
type RegisterRequest struct {
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required"`
	KnownAs      string `json:"known_as"`
	Gender       int    `json:"gender"`
	Introduction string `json:"introduction"`
	IsTrainer    bool   `json:"is_trainer"`
	City         string `json:"city"`
	Province     string `json:"province"`
	Country      string `json:"country"`
	Address      string `json:"address"`
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the signed token and its absolute UTC expiry
type LoginResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

// SeedUser is one record of the static seed dataset (data/user_seed.json)
type SeedUser struct {
	Username       string          `json:"username"`
	KnownAs        string          `json:"known_as"`
	Gender         int             `json:"gender"`
	Introduction   string          `json:"introduction"`
	IsTrainer      bool            `json:"is_trainer"`
	AdsBidding     float64         `json:"ads_bidding"`
	Address        *Address        `json:"address"`
	Profile        *Photo          `json:"profile"`
	Certifications []Certification `json:"certifications"`
	Focus          []SeedFocus     `json:"focus"`
}

// SeedFocus is a named focus item inside a seed record
type SeedFocus struct {
	Name string `json:"name"`
}

// DailyStats is the admin view over today's counters
type DailyStats struct {
	Date    string `json:"date"`
	Signups int64  `json:"signups"`
	Signins int64  `json:"signins"`
}
