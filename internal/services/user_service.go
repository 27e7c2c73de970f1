// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taot23/aetlicencas/internal/database"
	"github.com/taot23/aetlicencas/internal/models"
	"github.com/taot23/aetlicencas/internal/utils"
)

// ErrUserHasRequests is returned when deleting a user that still owns
// submitted license requests.
var ErrUserHasRequests = errors.New("user still owns submitted license requests")

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) List(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "email", "role"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// Delete removes a user and cascade-deletes the vehicles and transporters
// they own, all within a single transaction. Deletion is refused while the
// user still owns submitted (non-draft) license requests; drafts go with
// the user.
func (s *UserService) Delete(id uuid.UUID, actor Actor) error {
	if actor.Role != models.UserRoleAdmin {
		return ErrForbidden
	}

	if _, err := s.Get(id); err != nil {
		return err
	}

	var submitted int64
	err := s.db.Model(&models.LicenseRequest{}).
		Where("owner_id = ? AND is_draft = ?", id, false).
		Count(&submitted).Error
	if err != nil {
		return fmt.Errorf("failed to check owned requests: %w", err)
	}
	if submitted > 0 {
		return ErrUserHasRequests
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Delete(&models.LicenseRequest{}, "owner_id = ? AND is_draft = ?", id, true).Error; err != nil {
			return fmt.Errorf("failed to delete owned drafts: %w", err)
		}
		if err := tx.Delete(&models.Vehicle{}, "owner_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete owned vehicles: %w", err)
		}
		if err := tx.Delete(&models.Transporter{}, "owner_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete owned transporters: %w", err)
		}
		if err := tx.Delete(&models.User{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// UpdateRole changes a user's role; admin only.
func (s *UserService) UpdateRole(id uuid.UUID, actor Actor, role models.UserRole) (*models.User, error) {
	if actor.Role != models.UserRoleAdmin {
		return nil, ErrForbidden
	}
	switch role {
	case models.UserRoleTransporter, models.UserRoleOperational,
		models.UserRoleSupervisor, models.UserRoleAdmin:
	default:
		return nil, fmt.Errorf("validation failed: unknown role %q", role)
	}

	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return user, nil
}
