// internal/services/vehicle_service.go
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

// ErrVehicleInUse is returned when a vehicle still backs a non-deleted
// license request.
var ErrVehicleInUse = errors.New("vehicle is referenced by license requests")

type VehicleService struct {
	db *gorm.DB
}

func NewVehicleService(db *gorm.DB) *VehicleService {
	return &VehicleService{db: db}
}

type VehicleRequest struct {
	Plate       string             `json:"plate" validate:"required,plate"`
	VehicleType models.VehicleType `json:"vehicle_type" validate:"required"`
	Renavam     string             `json:"renavam,omitempty" validate:"omitempty,len=11"`
	Brand       string             `json:"brand,omitempty"`
	ModelName   string             `json:"model,omitempty"`
	Year        int                `json:"year,omitempty"`
	AxleCount   int                `json:"axle_count,omitempty"`
	TareWeight  int                `json:"tare_weight,omitempty"`
}

func (s *VehicleService) Create(ownerID uuid.UUID, req *VehicleRequest) (*models.Vehicle, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	vehicle := &models.Vehicle{
		OwnerID:     ownerID,
		Plate:       strings.ToUpper(req.Plate),
		VehicleType: req.VehicleType,
		Renavam:     req.Renavam,
		Brand:       req.Brand,
		ModelName:   req.ModelName,
		Year:        req.Year,
		AxleCount:   req.AxleCount,
		TareWeight:  req.TareWeight,
	}

	if err := s.db.Create(vehicle).Error; err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	return vehicle, nil
}

func (s *VehicleService) Update(id uuid.UUID, actor Actor, req *VehicleRequest) (*models.Vehicle, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	vehicle, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != actor.ID && !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}

	vehicle.Plate = strings.ToUpper(req.Plate)
	vehicle.VehicleType = req.VehicleType
	vehicle.Renavam = req.Renavam
	vehicle.Brand = req.Brand
	vehicle.ModelName = req.ModelName
	vehicle.Year = req.Year
	vehicle.AxleCount = req.AxleCount
	vehicle.TareWeight = req.TareWeight

	if err := s.db.Save(vehicle).Error; err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return vehicle, nil
}

// Delete removes a vehicle unless a non-deleted license request still
// references it in any slot.
func (s *VehicleService) Delete(id uuid.UUID, actor Actor) error {
	vehicle, err := s.get(id)
	if err != nil {
		return err
	}
	if vehicle.OwnerID != actor.ID && actor.Role != models.UserRoleAdmin {
		return ErrForbidden
	}

	var refs int64
	err = s.db.Model(&models.LicenseRequest{}).
		Where("tractor_unit_id = ? OR first_trailer_id = ? OR second_trailer_id = ? OR dolly_id = ? OR flatbed_id = ?",
			id, id, id, id, id).
		Count(&refs).Error
	if err != nil {
		return fmt.Errorf("failed to check vehicle references: %w", err)
	}
	if refs > 0 {
		return ErrVehicleInUse
	}

	if err := s.db.Delete(&models.Vehicle{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	return nil
}

func (s *VehicleService) Get(id uuid.UUID, actor Actor) (*models.Vehicle, error) {
	vehicle, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != actor.ID && !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}
	return vehicle, nil
}

func (s *VehicleService) List(scope Scope, params utils.PaginationParams) ([]models.Vehicle, int64, error) {
	query := scope.apply(s.db.Model(&models.Vehicle{}))

	if params.Search != "" {
		query = query.Where("plate ILIKE ?", "%"+strings.ToUpper(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	allowedSortFields := []string{"created_at", "plate", "vehicle_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var vehicles []models.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vehicles: %w", err)
	}

	return vehicles, total, nil
}

func (s *VehicleService) get(id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &vehicle, nil
}
