// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:255;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'transporter'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Phone        string     `json:"phone,omitempty" gorm:"size:20"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Transporters []Transporter    `json:"transporters,omitempty" gorm:"foreignKey:OwnerID"`
	Vehicles     []Vehicle        `json:"vehicles,omitempty" gorm:"foreignKey:OwnerID"`
	Requests     []LicenseRequest `json:"requests,omitempty" gorm:"foreignKey:OwnerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
