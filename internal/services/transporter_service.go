// internal/services/transporter_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taot23/aetlicencas/internal/models"
	"github.com/taot23/aetlicencas/internal/utils"
)

// ErrTransporterInUse is returned when a transporter is still referenced by
// a non-deleted license request.
var ErrTransporterInUse = errors.New("transporter is referenced by license requests")

type TransporterService struct {
	db   *gorm.DB
	cnpj *CNPJService
}

func NewTransporterService(db *gorm.DB, cnpj *CNPJService) *TransporterService {
	return &TransporterService{db: db, cnpj: cnpj}
}

type TransporterRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	TradeName string `json:"trade_name,omitempty"`
	CNPJ      string `json:"cnpj" validate:"required,cnpj"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty" validate:"omitempty,state_code"`
}

func (s *TransporterService) Create(ownerID uuid.UUID, req *TransporterRequest) (*models.Transporter, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	transporter := &models.Transporter{
		OwnerID:   ownerID,
		Name:      req.Name,
		TradeName: req.TradeName,
		CNPJ:      req.CNPJ,
		City:      req.City,
		State:     strings.ToUpper(req.State),
	}

	if err := s.db.Create(transporter).Error; err != nil {
		return nil, fmt.Errorf("failed to create transporter: %w", err)
	}
	return transporter, nil
}

func (s *TransporterService) Update(id uuid.UUID, actor Actor, req *TransporterRequest) (*models.Transporter, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	transporter, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if transporter.OwnerID != actor.ID && !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}

	transporter.Name = req.Name
	transporter.TradeName = req.TradeName
	transporter.CNPJ = req.CNPJ
	transporter.City = req.City
	transporter.State = strings.ToUpper(req.State)

	if err := s.db.Save(transporter).Error; err != nil {
		return nil, fmt.Errorf("failed to update transporter: %w", err)
	}
	return transporter, nil
}

// Delete removes a transporter unless a non-deleted license request still
// references it.
func (s *TransporterService) Delete(id uuid.UUID, actor Actor) error {
	transporter, err := s.get(id)
	if err != nil {
		return err
	}
	if transporter.OwnerID != actor.ID && actor.Role != models.UserRoleAdmin {
		return ErrForbidden
	}

	var refs int64
	err = s.db.Model(&models.LicenseRequest{}).
		Where("transporter_id = ?", id).
		Count(&refs).Error
	if err != nil {
		return fmt.Errorf("failed to check transporter references: %w", err)
	}
	if refs > 0 {
		return ErrTransporterInUse
	}

	if err := s.db.Delete(&models.Transporter{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete transporter: %w", err)
	}
	return nil
}

func (s *TransporterService) Get(id uuid.UUID, actor Actor) (*models.Transporter, error) {
	transporter, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if transporter.OwnerID != actor.ID && !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}
	return transporter, nil
}

func (s *TransporterService) List(scope Scope, params utils.PaginationParams) ([]models.Transporter, int64, error) {
	query := scope.apply(s.db.Model(&models.Transporter{}))

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR cnpj LIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transporters: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "cnpj"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transporters []models.Transporter
	if err := query.Find(&transporters).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transporters: %w", err)
	}

	return transporters, total, nil
}

// LookupCNPJ prefills transporter data from the Portal da Transparência.
func (s *TransporterService) LookupCNPJ(cnpj string) (*CNPJCompany, error) {
	if s.cnpj == nil {
		return nil, errors.New("CNPJ lookup is not configured")
	}
	return s.cnpj.Lookup(cnpj)
}

func (s *TransporterService) get(id uuid.UUID) (*models.Transporter, error) {
	var transporter models.Transporter
	if err := s.db.First(&transporter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &transporter, nil
}
