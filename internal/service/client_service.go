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
	"github.com/shopspring/decimal"
)

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context) ([]dto.ClientResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	// Delete keeps the client's sales; their client reference is cleared.
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	repo  repository.ClientRepository
	sales repository.SaleRepository
}

func NewClientService(repo repository.ClientRepository, sales repository.SaleRepository) ClientService {
	return &clientService{repo: repo, sales: sales}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierror.Validation("name is required")
	}
	c := &model.Client{
		Name:    name,
		Phone:   trimOptional(req.Phone),
		Email:   trimOptional(req.Email),
		Address: trimOptional(req.Address),
		Notes:   req.Notes,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apierror.Internal("create client", err)
	}
	resp := clientToResponse(c, decimal.Zero)
	return &resp, nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Client")
	}
	totals, err := s.sales.TotalsForClient(ctx, id)
	if err != nil {
		return nil, apierror.Internal("client totals", err)
	}
	resp := clientToResponse(c, totals.TotalSpent)
	return &resp, nil
}

func (s *clientService) List(ctx context.Context) ([]dto.ClientResponse, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.Internal("list clients", err)
	}
	totals, err := s.sales.TotalsByClient(ctx)
	if err != nil {
		return nil, apierror.Internal("client totals", err)
	}
	spent := make(map[uuid.UUID]decimal.Decimal, len(totals))
	for _, t := range totals {
		spent[t.ClientID] = t.TotalSpent
	}

	resp := make([]dto.ClientResponse, len(clients))
	for i := range clients {
		total, ok := spent[clients[i].ID]
		if !ok {
			total = decimal.Zero
		}
		resp[i] = clientToResponse(&clients[i], total)
	}
	return resp, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Client")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apierror.Validation("name cannot be empty")
		}
		c.Name = name
	}
	if req.Phone != nil {
		c.Phone = trimOptional(req.Phone)
	}
	if req.Email != nil {
		c.Email = trimOptional(req.Email)
	}
	if req.Address != nil {
		c.Address = trimOptional(req.Address)
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	c.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apierror.Internal("update client", err)
	}
	return s.Get(ctx, id)
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr(err, "Client")
	}
	return nil
}

func clientToResponse(c *model.Client, totalSpent decimal.Decimal) dto.ClientResponse {
	return dto.ClientResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		Notes:      c.Notes,
		TotalSpent: totalSpent,
		CreatedAt:  formatTime(c.CreatedAt),
	}
}

// trimOptional turns blank strings into nil.
func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
