package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER         = "USER"
	ROLE_AGENCY_ADMIN = "AGENCY_ADMIN"
	ROLE_SUPER_ADMIN  = "SUPER_ADMIN"
)

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email        string    `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Password     string    `gorm:"type:text" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null;default:'USER';index" json:"role" validate:"oneof=USER AGENCY_ADMIN SUPER_ADMIN"`
	AgencyID     *string   `gorm:"type:varchar(36);index" json:"agency_id,omitempty"`
	DealershipID *string   `gorm:"type:varchar(36);index" json:"dealership_id,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = ROLE_USER
	}
	return nil
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// NewUser builds a validated user with a hashed password.
func NewUser(name, email, password, role string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: pw,
		Role:     role,
	}
	if u.Role == "" {
		u.Role = ROLE_USER
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == ROLE_SUPER_ADMIN
}

func (u *User) IsAgencyAdmin() bool {
	return u.Role == ROLE_AGENCY_ADMIN
}
