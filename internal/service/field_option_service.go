package service

import (
	"context"
	"strings"

	"shopinventory/internal/apierror"
	"shopinventory/internal/dto"
	"shopinventory/internal/model"
	"shopinventory/internal/repository"

	"github.com/google/uuid"
)

// FieldOptionService is the option registry behind the product choice fields.
type FieldOptionService interface {
	List(ctx context.Context, optType string, includeInactive bool) ([]dto.FieldOptionResponse, error)
	Create(ctx context.Context, optType string, req dto.CreateFieldOptionRequest) (*dto.FieldOptionResponse, error)
	SetActive(ctx context.Context, optType string, id uuid.UUID, active bool) (*dto.FieldOptionResponse, string, error)
}

type fieldOptionService struct {
	repo repository.FieldOptionRepository
}

func NewFieldOptionService(repo repository.FieldOptionRepository) FieldOptionService {
	return &fieldOptionService{repo: repo}
}

func parseOptionType(raw string) (model.FieldOptionType, error) {
	t := model.FieldOptionType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", apierror.Validation("Unknown option type %q, expected size, color_print or supplier", raw)
	}
	return t, nil
}

func (s *fieldOptionService) List(ctx context.Context, optType string, includeInactive bool) ([]dto.FieldOptionResponse, error) {
	t, err := parseOptionType(optType)
	if err != nil {
		return nil, err
	}
	opts, err := s.repo.List(ctx, t, includeInactive)
	if err != nil {
		return nil, apierror.Internal("list field options", err)
	}
	resp := make([]dto.FieldOptionResponse, len(opts))
	for i := range opts {
		resp[i] = fieldOptionToResponse(&opts[i])
	}
	return resp, nil
}

func (s *fieldOptionService) Create(ctx context.Context, optType string, req dto.CreateFieldOptionRequest) (*dto.FieldOptionResponse, error) {
	t, err := parseOptionType(optType)
	if err != nil {
		return nil, err
	}
	value := strings.TrimSpace(req.Value)
	if value == "" {
		return nil, apierror.Validation("value is required")
	}

	existing, err := s.repo.FindByValue(ctx, t, value)
	if err == nil {
		return nil, apierror.Conflict("Option %s already exists for %s", existing.Value, t)
	}
	if !repository.IsNotFound(err) {
		return nil, apierror.Internal("check field option", err)
	}

	opt := &model.FieldOption{Type: t, Value: value, Active: true}
	if err := s.repo.Create(ctx, opt); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apierror.Conflict("Option %s already exists for %s", value, t)
		}
		return nil, apierror.Internal("create field option", err)
	}
	resp := fieldOptionToResponse(opt)
	return &resp, nil
}

func (s *fieldOptionService) SetActive(ctx context.Context, optType string, id uuid.UUID, active bool) (*dto.FieldOptionResponse, string, error) {
	t, err := parseOptionType(optType)
	if err != nil {
		return nil, "", err
	}
	opt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", lookupErr(err, "Option")
	}
	if opt.Type != t {
		return nil, "", apierror.NotFound("Option not found")
	}

	if opt.Active == active {
		resp := fieldOptionToResponse(opt)
		return &resp, "Option is already " + stateWord(active), nil
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, "", apierror.Internal("set option state", err)
	}
	opt.Active = active
	resp := fieldOptionToResponse(opt)
	return &resp, "Option " + transitionWord(active), nil
}
