// internal/services/testing_test.go
package services

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taot23/aetlicencas/internal/models"
)

// newTestDB opens a throwaway SQLite database with the full schema. A file
// in the test temp dir is used instead of :memory: so every pooled
// connection sees the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "aet_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Transporter{},
		&models.Vehicle{},
		&models.LicenseRequest{},
		&models.AuditLog{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:   "Test " + string(role),
		Email:  string(role) + "-" + uuid.NewString()[:8] + "@example.com",
		Role:   role,
		Status: models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Senha123"))
	require.NoError(t, db.Create(user).Error)
	require.NotEqual(t, uuid.Nil, user.ID)
	return user
}

func createTestVehicle(t *testing.T, db *gorm.DB, ownerID uuid.UUID, vehicleType models.VehicleType, plate string) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{
		OwnerID:     ownerID,
		Plate:       plate,
		VehicleType: vehicleType,
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func createTestTransporter(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *models.Transporter {
	t.Helper()

	transporter := &models.Transporter{
		OwnerID: ownerID,
		Name:    "Transportes Teste Ltda",
		CNPJ:    "12345678000195",
		City:    "São Paulo",
		State:   "SP",
	}
	require.NoError(t, db.Create(transporter).Error)
	return transporter
}
