package service

import (
	"context"
	"strings"
	"time"

	"shopinventory/internal/apierror"
	"shopinventory/internal/dto"
	"shopinventory/internal/model"
	"shopinventory/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SupplierService manages suppliers. Suppliers are never deleted, only deactivated.
type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	// SetActive returns a message describing what happened; flipping to the
	// current state is a no-op, not an error.
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*dto.SupplierResponse, string, error)
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierror.Validation("name is required")
	}
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	sup := &model.Supplier{Name: name, Active: true}
	if err := s.repo.Create(ctx, sup); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("Supplier %s already exists", name)
		}
		return nil, apierror.Internal("create supplier", err)
	}
	resp := supplierToResponse(sup)
	return &resp, nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Supplier")
	}
	resp := supplierToResponse(sup)
	return &resp, nil
}

func (s *supplierService) List(ctx context.Context, includeInactive bool) ([]dto.SupplierResponse, error) {
	list, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, apierror.Internal("list suppliers", err)
	}
	resp := make([]dto.SupplierResponse, len(list))
	for i := range list {
		resp[i] = supplierToResponse(&list[i])
	}
	return resp, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Supplier")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apierror.Validation("name cannot be empty")
		}
		if name != sup.Name {
			if err := s.ensureNameFree(ctx, name, sup.ID); err != nil {
				return nil, err
			}
			sup.Name = name
			sup.UpdatedAt = time.Now()
			if err := s.repo.Update(ctx, sup); err != nil {
				if repository.IsUniqueViolation(err) {
					return nil, apierror.Conflict("Supplier %s already exists", name)
				}
				return nil, apierror.Internal("update supplier", err)
			}
		}
	}
	resp := supplierToResponse(sup)
	return &resp, nil
}

func (s *supplierService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*dto.SupplierResponse, string, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", lookupErr(err, "Supplier")
	}
	state := stateWord(active)
	if sup.Active == active {
		resp := supplierToResponse(sup)
		return &resp, "Supplier is already " + state, nil
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, "", apierror.Internal("set supplier state", err)
	}
	sup.Active = active
	log.Info().Str("supplier_id", id.String()).Bool("active", active).Msg("supplier state changed")

	resp := supplierToResponse(sup)
	return &resp, "Supplier " + transitionWord(active), nil
}

// ensureNameFree rejects case-insensitive duplicates other than self.
func (s *supplierService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return apierror.Conflict("Supplier %s already exists", existing.Name)
	case err != nil && !repository.IsNotFound(err):
		return apierror.Internal("check supplier name", err)
	}
	return nil
}

func transitionWord(active bool) string {
	if active {
		return "activated"
	}
	return "deactivated"
}

func stateWord(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
