// internal/config/database.go
package config

import (
	"fmt"
)

// DSN builds the PostgreSQL connection string for GORM.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
