package models

import (
	"time"

	"github.com/fabrictrade/backend/internal/domain/identity"
)

// UserModel is the persistence model for a login account.
type UserModel struct {
	VersionedRow
	Username       string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email          string        `gorm:"type:varchar(200)"`
	PasswordHash   string        `gorm:"type:varchar(100);not null"`
	Role           identity.Role `gorm:"type:varchar(20);not null;index"`
	Active         bool          `gorm:"not null;default:true"`
	FailedAttempts int           `gorm:"not null;default:0"`
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.root(),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Active:            m.Active,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
		LastLoginAt:       m.LastLoginAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:       u.Username,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Role:           u.Role,
		Active:         u.Active,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
		LastLoginAt:    u.LastLoginAt,
	}
	m.VersionedRow = versionedRowOf(u.BaseAggregateRoot)
	return m
}
