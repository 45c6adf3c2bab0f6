package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

type recorded struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   body,
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{URL: srv.URL + "/", AnonKey: "anon-key", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client, &calls
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const orderRowJSON = `{
	"order_uid": "ORD-1",
	"customer_id": "c1",
	"customer_name": "Ana Souza",
	"total": 25,
	"items": [{"serviceId":"a","name":"A","quantity":2,"price":10},{"serviceId":"b","name":"B","quantity":1,"price":5}],
	"status": "Pending Collection",
	"collection_address": "Rua A, 10",
	"collection_time": "02/05/2024 - 🌅 Manhã (8h-12h)",
	"delivery_address": null,
	"delivery_time": null,
	"created_at": "2024-05-01T23:30:00.123456+00:00"
}`

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Config{AnonKey: "k"})
	assert.Error(t, err)
	_, err = New(Config{URL: "http://x"})
	assert.Error(t, err)
}

func TestStore_ListOrders(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "["+orderRowJSON+"]")
	})
	store := NewStore(client)

	orders, err := store.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "ORD-1", o.ID)
	assert.Equal(t, "c1", o.CustomerID)
	assert.Equal(t, "Ana Souza", o.CustomerName)
	assert.Equal(t, "2024-05-01", o.Date)
	assert.Equal(t, "Rua A, 10", o.CollectionAddress)
	assert.Equal(t, "", o.DeliveryAddress)
	assert.Equal(t, models.OrderStatusPendingCollection, o.Status)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(25)))
	assert.Len(t, o.Items, 2)

	call := (*calls)[0]
	assert.Equal(t, http.MethodGet, call.method)
	assert.Equal(t, "/rest/v1/orders", call.path)
	assert.Contains(t, call.query, "order=created_at.desc")
	assert.Contains(t, call.query, "select=%2A")
	assert.Equal(t, "anon-key", call.header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", call.header.Get("Authorization"))
}

func TestStore_GetOrder_NotFoundIsEmpty(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "[]")
	})
	store := NewStore(client)

	order, err := store.GetOrder(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Contains(t, (*calls)[0].query, "order_uid=eq.missing")
}

func TestStore_UsesCallerAccessToken(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "[]")
	})
	store := NewStore(client)

	ctx := repository.WithAccessToken(context.Background(), "user-token")
	_, err := store.ListOrdersByCustomer(ctx, "c1")
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "Bearer user-token", call.header.Get("Authorization"))
	assert.Equal(t, "anon-key", call.header.Get("apikey"))
	assert.Contains(t, call.query, "customer_id=eq.c1")
}

func TestStore_CreateOrder_RoundTrip(t *testing.T) {
	var inserted map[string]any
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, "["+orderRowJSON+"]")
			return
		}
		writeJSON(w, http.StatusOK, "["+orderRowJSON+"]")
	})
	store := NewStore(client)

	items := []models.OrderItem{
		{ServiceID: "a", Name: "A", Quantity: 2, Price: decimal.NewFromInt(10)},
		{ServiceID: "b", Name: "B", Quantity: 1, Price: decimal.NewFromInt(5)},
	}
	created, err := store.CreateOrder(context.Background(), models.NewOrder{
		CustomerID:     "c1",
		CustomerName:   "Ana Souza",
		Address:        "Rua A, 10",
		Items:          items,
		Total:          models.ItemsTotal(items),
		CollectionTime: "02/05/2024 - 🌅 Manhã (8h-12h)",
	})
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "/rest/v1/orders", call.path)
	assert.Equal(t, "return=representation", call.header.Get("Prefer"))
	require.NoError(t, json.Unmarshal(call.body, &inserted))
	assert.Equal(t, "c1", inserted["customer_id"])
	assert.Equal(t, "Rua A, 10", inserted["collection_address"])
	assert.Equal(t, float64(25), inserted["total"])
	assert.Equal(t, "Pending Collection", inserted["status"])

	fetched, err := store.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Items, fetched.Items)
	assert.True(t, fetched.Total.Equal(decimal.NewFromInt(25)))
}

func TestStore_CreateOrder_RejectsDriftingTotal(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no remote call expected")
	})
	store := NewStore(client)

	_, err := store.CreateOrder(context.Background(), models.NewOrder{
		CustomerID: "c1",
		Items:      []models.OrderItem{{Name: "A", Quantity: 1, Price: decimal.NewFromInt(10)}},
		Total:      decimal.NewFromInt(11),
	})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
	assert.Empty(t, *calls)
}

func TestStore_UpdateOrderStatus(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "["+orderRowJSON+"]")
	})
	store := NewStore(client)

	_, err := store.UpdateOrderStatus(context.Background(), "ORD-1", models.OrderStatusCompleted)
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPatch, call.method)
	assert.Contains(t, call.query, "order_uid=eq.ORD-1")
	assert.JSONEq(t, `{"status":"Completed"}`, string(call.body))

	_, err = store.UpdateOrderStatus(context.Background(), "ORD-1", "Shipped")
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
	assert.Len(t, *calls, 1)
}

func TestStore_RemoteFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"message":"relation \"orders\" does not exist"}`)
	})
	store := NewStore(client)

	_, err := store.ListOrders(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrRemote)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestStore_Customers(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"c1","name":"Ana","email":"ana@example.com","phone":"555","address":"Rua A","joined_date":"2024-04-30"}]`)
	})
	store := NewStore(client)

	customers, err := store.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "2024-04-30", customers[0].JoinedDate)

	_, err = store.CreateCustomer(context.Background(), models.Customer{ID: "c1", Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal((*calls)[1].body, &body))
	_, hasJoined := body["joined_date"]
	assert.False(t, hasJoined, "joined_date is left to the store default")
}

func TestStore_ServicesCRUD(t *testing.T) {
	svc := `{"id":"s1","name":"Wash Service","description":"","price":20,"category":"Base Service","availability":"avulso"}`
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, "[]")
		default:
			writeJSON(w, http.StatusOK, "["+svc+"]")
		}
	})
	store := NewStore(client)
	ctx := context.Background()

	service := models.Service{
		ID:           "ignored",
		Name:         "Wash Service",
		Price:        decimal.NewFromInt(20),
		Category:     models.CategoryBase,
		Availability: models.AvailabilityOneOffOnly,
	}
	created, err := store.CreateService(ctx, service)
	require.NoError(t, err)
	assert.Equal(t, "s1", created.ID)
	assert.NotContains(t, string((*calls)[0].body), "ignored")

	service.ID = "s1"
	_, err = store.UpdateService(ctx, service)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, (*calls)[1].method)
	assert.Contains(t, (*calls)[1].query, "id=eq.s1")

	require.NoError(t, store.DeleteService(ctx, "s1"))
	assert.Equal(t, http.MethodDelete, (*calls)[2].method)

	service.Price = decimal.NewFromInt(-1)
	_, err = store.UpdateService(ctx, service)
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
	assert.Len(t, *calls, 3)
}
