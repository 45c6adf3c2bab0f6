package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var orderColumns = []string{
	"order_uid", "customer_id", "customer_name", "total", "items", "status",
	"collection_address", "collection_time", "delivery_address", "delivery_time", "created_at",
}

var createdAt = time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows(orderColumns).AddRow(
		"ORD-1", "c1", "Ana Souza", "25.00",
		`[{"serviceId":"a","name":"A","quantity":2,"price":10},{"serviceId":"b","name":"B","quantity":1,"price":5}]`,
		"Pending Collection", "Rua A, 10", "02/05/2024 - 🌅 Manhã (8h-12h)", nil, nil, createdAt,
	)
}

func TestStore_ListOrders(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, time.Second)

	mock.ExpectQuery(`SELECT \* FROM "orders" ORDER BY created_at DESC`).WillReturnRows(orderRows())

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "ORD-1", o.ID)
	assert.Equal(t, "c1", o.CustomerID)
	assert.Equal(t, "2024-05-01", o.Date)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, models.OrderStatusPendingCollection, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Empty(t, o.DeliveryAddress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetOrder_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, time.Second)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE order_uid = \$1`).WillReturnRows(sqlmock.NewRows(orderColumns))

	order, err := store.GetOrder(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListOrdersByCustomer(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, time.Second)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE customer_id = \$1 ORDER BY created_at DESC`).
		WithArgs("c1").
		WillReturnRows(orderRows())

	orders, err := store.ListOrdersByCustomer(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateOrder(t *testing.T) {
	items := []models.OrderItem{
		{ServiceID: "a", Name: "A", Quantity: 2, Price: decimal.NewFromInt(10)},
		{ServiceID: "b", Name: "B", Quantity: 1, Price: decimal.NewFromInt(5)},
	}

	tests := []struct {
		name      string
		order     models.NewOrder
		mockSetup func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "created",
			order: models.NewOrder{
				CustomerID: "c1", CustomerName: "Ana Souza", Address: "Rua A, 10",
				Items: items, Total: decimal.NewFromInt(25), CollectionTime: "02/05/2024 - 🌅 Manhã (8h-12h)",
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO "orders"`).WillReturnRows(orderRows())
			},
		},
		{
			name: "total drift rejected before the database",
			order: models.NewOrder{
				CustomerID: "c1", CustomerName: "Ana Souza", Items: items, Total: decimal.NewFromInt(30),
			},
			mockSetup: func(mock sqlmock.Sqlmock) {},
			wantErr:   repository.ErrInvalidInput,
		},
		{
			name: "database failure",
			order: models.NewOrder{
				CustomerID: "c1", CustomerName: "Ana Souza", Items: items, Total: decimal.NewFromInt(25),
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO "orders"`).WillReturnError(errors.New("connection refused"))
			},
			wantErr: repository.ErrRemote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			store := NewStore(db, time.Second)
			tt.mockSetup(mock)

			order, err := store.CreateOrder(context.Background(), tt.order)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ORD-1", order.ID)
				assert.Equal(t, models.OrderStatusPendingCollection, order.Status)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_UpdateOrderStatus(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		store := NewStore(db, time.Second)

		rows := sqlmock.NewRows(orderColumns).AddRow(
			"ORD-1", "c1", "Ana Souza", "25.00", `[]`, "Completed", "", "", nil, nil, createdAt,
		)
		mock.ExpectQuery(`UPDATE "orders" SET "status"=\$1 WHERE order_uid = \$2 RETURNING \*`).
			WithArgs("Completed", "ORD-1").
			WillReturnRows(rows)

		order, err := store.UpdateOrderStatus(context.Background(), "ORD-1", models.OrderStatusCompleted)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, models.OrderStatusCompleted, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		db, mock := newMockDB(t)
		store := NewStore(db, time.Second)

		mock.ExpectQuery(`UPDATE "orders"`).WillReturnRows(sqlmock.NewRows(orderColumns))

		order, err := store.UpdateOrderStatus(context.Background(), "nope", models.OrderStatusCompleted)
		assert.NoError(t, err)
		assert.Nil(t, order)
	})

	t.Run("invalid status", func(t *testing.T) {
		db, _ := newMockDB(t)
		store := NewStore(db, time.Second)

		_, err := store.UpdateOrderStatus(context.Background(), "ORD-1", "Lost")
		assert.ErrorIs(t, err, repository.ErrInvalidInput)
	})
}

func TestStore_CreateCustomer(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, time.Second)

	joined := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO "customers"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "email", "phone", "address", "joined_date"}).
			AddRow("c1", "Ana Souza", "ana@example.com", "11 9999", "Rua A, 10", joined),
	)

	customer, err := store.CreateCustomer(context.Background(), models.Customer{
		ID: "c1", Name: "Ana Souza", Email: "ana@example.com", Phone: "11 9999", Address: "Rua A, 10",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", customer.JoinedDate)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = store.CreateCustomer(context.Background(), models.Customer{Name: "No id"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

var serviceColumns = []string{"id", "name", "description", "price", "category", "availability", "created_at"}

func TestStore_Services(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, time.Second)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "services" ORDER BY created_at ASC`).WillReturnRows(
		sqlmock.NewRows(serviceColumns).
			AddRow("s1", "Lavar e Passar", "", "12.50", "Base Service", "both", createdAt).
			AddRow("s2", "Cabide", "", "1.00", "Packaging", "both", createdAt),
	)
	services, err := store.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.True(t, services[0].Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, models.CategoryPackaging, services[1].Category)

	mock.ExpectQuery(`INSERT INTO "services"`).WillReturnRows(
		sqlmock.NewRows(serviceColumns).AddRow("s3", "Edredom", "King", "45.00", "Special Care", "avulso", createdAt),
	)
	created, err := store.CreateService(ctx, models.Service{
		Name: "Edredom", Description: "King", Price: decimal.NewFromInt(45),
		Category: models.CategorySpecialCare, Availability: models.AvailabilityOneOffOnly,
	})
	require.NoError(t, err)
	assert.Equal(t, "s3", created.ID)

	mock.ExpectQuery(`UPDATE "services" SET .* WHERE id = \$\d+ RETURNING \*`).WillReturnRows(
		sqlmock.NewRows(serviceColumns).AddRow("s3", "Edredom", "King", "50.00", "Special Care", "avulso", createdAt),
	)
	created.Price = decimal.NewFromInt(50)
	updated, err := store.UpdateService(ctx, *created)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(50)))

	mock.ExpectExec(`DELETE FROM "services" WHERE id = \$1`).
		WithArgs("s3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.DeleteService(ctx, "s3"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ServiceValidation(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, time.Second)
	ctx := context.Background()

	_, err := store.CreateService(ctx, models.Service{Name: "", Price: decimal.NewFromInt(1),
		Category: models.CategoryExtra, Availability: models.AvailabilityBoth})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = store.UpdateService(ctx, models.Service{Name: "X", Price: decimal.NewFromInt(1),
		Category: models.CategoryExtra, Availability: models.AvailabilityBoth})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	assert.ErrorIs(t, store.DeleteService(ctx, ""), repository.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RemoteFailure(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, time.Second)

	mock.ExpectQuery(`SELECT \* FROM "customers"`).WillReturnError(errors.New("connection reset"))

	customers, err := store.ListCustomers(context.Background())
	assert.Nil(t, customers)
	assert.ErrorIs(t, err, repository.ErrRemote)
	assert.Contains(t, err.Error(), "customers.list")
}
