package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
)

type ListCustomersParams struct {
	Query  string
	Limit  int32
	Offset int32
}

type CustomerPage struct {
	Items []model.Customer `json:"items"`
	Total int64            `json:"total"`
}

type CustomerDetail struct {
	model.Customer
	Orders []model.Order `json:"orders"`
}

type CustomerService interface {
	ListCustomers(ctx context.Context, params ListCustomersParams) (CustomerPage, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (CustomerDetail, error)
}

type customerService struct {
	logger       *slog.Logger
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
}

func NewCustomerService(
	logger *slog.Logger,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
) CustomerService {
	return &customerService{
		logger:       logger.With(slog.String("service", "customer")),
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

func (s *customerService) ListCustomers(ctx context.Context, params ListCustomersParams) (CustomerPage, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	customers, total, err := s.customerRepo.ListCustomers(ctx, repository.ListCustomersParams{
		Query:  params.Query,
		Limit:  limit,
		Offset: params.Offset,
	})
	if err != nil {
		return CustomerPage{}, fmt.Errorf("customer repository list customers: %w", err)
	}

	return CustomerPage{Items: customers, Total: total}, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (CustomerDetail, error) {
	customer, err := s.customerRepo.GetCustomer(ctx, id)
	if err != nil {
		return CustomerDetail{}, notFound(fmt.Errorf("customer repository get customer: %w", err), apperr.CustomerNotFoundErr)
	}

	orders, err := s.orderRepo.ListCustomerOrders(ctx, id)
	if err != nil {
		return CustomerDetail{}, fmt.Errorf("order repository list customer orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return CustomerDetail{Customer: customer, Orders: orders}, nil
}
