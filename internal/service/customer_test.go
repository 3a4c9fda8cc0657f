package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
)

func TestCustomerService(t *testing.T) {
	ctx := context.Background()

	newSvc := func() (CustomerService, *mockCustomerRepository, *mockOrderRepository) {
		customers := &mockCustomerRepository{}
		orders := &mockOrderRepository{}
		return NewCustomerService(testLogger(), customers, orders), customers, orders
	}

	jane := model.Customer{ID: uuid.New(), Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}

	t.Run("Should default the page size", func(t *testing.T) {
		svc, customers, _ := newSvc()
		customers.On("ListCustomers", mock.Anything, repository.ListCustomersParams{Query: "doe", Limit: 50, Offset: 10}).
			Return([]model.Customer{jane}, int64(11), nil)

		page, err := svc.ListCustomers(ctx, ListCustomersParams{Query: "doe", Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(11), page.Total)
		assert.Equal(t, []model.Customer{jane}, page.Items)
		customers.AssertExpectations(t)
	})

	t.Run("Should return the customer with the order history", func(t *testing.T) {
		svc, customers, orders := newSvc()
		history := []model.Order{{ID: uuid.New(), Number: "LFS-000002"}, {ID: uuid.New(), Number: "LFS-000001"}}

		customers.On("GetCustomer", mock.Anything, jane.ID).Return(jane, nil)
		orders.On("ListCustomerOrders", mock.Anything, jane.ID).Return(history, nil)

		detail, err := svc.GetCustomer(ctx, jane.ID)
		require.NoError(t, err)
		assert.Equal(t, jane, detail.Customer)
		assert.Equal(t, history, detail.Orders)
	})

	t.Run("Should return an empty order history instead of null", func(t *testing.T) {
		svc, customers, orders := newSvc()

		customers.On("GetCustomer", mock.Anything, jane.ID).Return(jane, nil)
		orders.On("ListCustomerOrders", mock.Anything, jane.ID).Return([]model.Order(nil), nil)

		detail, err := svc.GetCustomer(ctx, jane.ID)
		require.NoError(t, err)
		assert.NotNil(t, detail.Orders)
		assert.Empty(t, detail.Orders)
	})

	t.Run("Should report unknown customers", func(t *testing.T) {
		svc, customers, orders := newSvc()
		id := uuid.New()

		customers.On("GetCustomer", mock.Anything, id).Return(model.Customer{}, pgx.ErrNoRows)

		_, err := svc.GetCustomer(ctx, id)
		require.ErrorIs(t, err, apperr.CustomerNotFoundErr)
		orders.AssertNotCalled(t, "ListCustomerOrders", mock.Anything, mock.Anything)
	})
}
