package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/infra"
	"shop-service/internal/mocks"
	"shop-service/internal/receipt"
	"shop-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.IntCmd)
}

const testSecret = "handler-secret"

type testEnv struct {
	orders    *mocks.MockOrderRepository
	catalog   *mocks.MockCatalogRepository
	users     *mocks.MockUserRepository
	gateway   *mocks.MockPaymentGateway
	notifier  *mocks.MockNotifier
	publisher *mocks.MockPublisher
	auth      *services.AuthService
	handler   *Handler
	router    *gin.Engine
}

func newTestEnv(t *testing.T, rdb CacheClient) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		orders:    new(mocks.MockOrderRepository),
		catalog:   new(mocks.MockCatalogRepository),
		users:     new(mocks.MockUserRepository),
		gateway:   new(mocks.MockPaymentGateway),
		notifier:  new(mocks.MockNotifier),
		publisher: new(mocks.MockPublisher),
	}
	env.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	currencies, err := domain.NewCurrencies("usd", map[string]string{"eur": "0.92"})
	require.NoError(t, err)
	env.auth = services.NewAuthService(env.users, testSecret, time.Hour)

	h := NewHandler(Services{
		Catalog:  services.NewCatalogService(env.catalog),
		Orders:   services.NewOrderService(env.orders),
		Checkout: services.NewCheckoutService(env.orders, env.catalog, env.gateway, env.notifier, env.publisher, currencies),
		Webhook:  services.NewWebhookService(env.orders, env.gateway, env.notifier, env.publisher),
		Receipts: services.NewReceiptService(env.orders, receipt.NewRenderer(receipt.Merchant{Name: "Acme"})),
		Auth:     env.auth,
	}, rdb)
	h.WithHealthCheck(func(ctx context.Context) error { return nil })
	env.handler = h

	env.router = gin.New()
	h.RegisterRoutes(env.router)
	return env
}

func (e *testEnv) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) bearer(t *testing.T, staff bool) map[string]string {
	t.Helper()
	token, err := e.auth.IssueToken(&domain.User{ID: 1, Username: "admin", IsStaff: staff})
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func product(id uint64, name, price string) domain.Product {
	return domain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Description: name, Image: name + ".png"}
}

const checkoutBody = `{
	"items": [{"product": {"id": 1}, "quantity": 2}, {"product": {"id": 2}, "quantity": 1}],
	"email": "jane@example.com", "firstName": "Jane", "lastName": "Doe",
	"address": "42 Elm Street", "city": "Springfield", "country": "US",
	"postalCode": "12345", "phone": "555-0199", "shipping_cost": 5.00
}`

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateCheckoutSession(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*testEnv)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "redirect url for a valid cart",
			body: checkoutBody,
			setupMocks: func(e *testEnv) {
				e.catalog.On("FindProductsByIDs", mock.Anything, []uint64{1, 2}).Return(map[uint64]domain.Product{
					1: product(1, "Shampoo", "10.00"),
					2: product(2, "Conditioner", "20.00"),
				}, nil)
				e.orders.On("CreateWithItems", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
					return o.Total.Equal(decimal.RequireFromString("45.00"))
				})).Return(nil).Run(func(args mock.Arguments) { args.Get(1).(*domain.Order).ID = 7 })
				e.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(r infra.CheckoutSessionRequest) bool {
					return len(r.Lines) == 3 && r.Lines[2].UnitAmount == 500
				})).Return(&domain.CheckoutSession{ID: "cs_1", URL: "https://pay.example/cs_1"}, nil)
				e.orders.On("SetPaymentSession", mock.Anything, uint64(7), "cs_1").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"url":"https://pay.example/cs_1"}`,
		},
		{
			name:           "unknown field",
			body:           `{"items": [], "coupon": "FREE"}`,
			setupMocks:     func(e *testEnv) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown product",
			body: checkoutBody,
			setupMocks: func(e *testEnv) {
				e.catalog.On("FindProductsByIDs", mock.Anything, []uint64{1, 2}).Return(map[uint64]domain.Product{
					2: product(2, "Conditioner", "20.00"),
				}, nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"product 1 not found"}`,
		},
		{
			name: "payment processor failure",
			body: checkoutBody,
			setupMocks: func(e *testEnv) {
				e.catalog.On("FindProductsByIDs", mock.Anything, []uint64{1, 2}).Return(map[uint64]domain.Product{
					1: product(1, "Shampoo", "10.00"),
					2: product(2, "Conditioner", "20.00"),
				}, nil)
				e.orders.On("CreateWithItems", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) { args.Get(1).(*domain.Order).ID = 8 })
				e.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, domain.ExternalError("Invalid API Key provided", errors.New("401")))
				e.orders.On("UpdateStatus", mock.Anything, uint64(8), domain.StatusCancelled).Return(&domain.Order{ID: 8}, nil)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"Invalid API Key provided"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			tt.setupMocks(env)

			w := env.do(http.MethodPost, "/api/payments/create-checkout-session", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			env.orders.AssertExpectations(t)
			env.gateway.AssertExpectations(t)
		})
	}
}

func TestCheckoutValidationFields(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/payments/create-checkout-session", `{"items":[{"product":{"id":1},"quantity":0}],"email":"bad"}`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "items[0].quantity")
	assert.Contains(t, fields, "email")
	env.catalog.AssertNotCalled(t, "FindProductsByIDs", mock.Anything, mock.Anything)
}

func TestCheckoutRejectsBeforeSaving(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedField string
		expectedMsg   string
	}{
		{
			name:          "missing shipping cost",
			body:          strings.Replace(checkoutBody, `, "shipping_cost": 5.00`, "", 1),
			expectedField: "shipping_cost",
			expectedMsg:   "is required",
		},
		{
			name:          "phone longer than the column",
			body:          strings.Replace(checkoutBody, `"555-0199"`, `"`+strings.Repeat("5", 21)+`"`, 1),
			expectedField: "phone",
			expectedMsg:   "must be at most 20 characters",
		},
		{
			name:          "quantity above the per-line limit",
			body:          strings.Replace(checkoutBody, `"quantity": 2`, `"quantity": 1000`, 1),
			expectedField: "items[0].quantity",
			expectedMsg:   "must be at most 999",
		},
		{
			name:          "malformed currency",
			body:          strings.Replace(checkoutBody, `"shipping_cost": 5.00`, `"shipping_cost": 5.00, "currency": "eu1"`, 1),
			expectedField: "currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			w := env.do(http.MethodPost, "/api/payments/create-checkout-session", tt.body, nil)

			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, "invalid request", body["error"])
			fields := body["fields"].(map[string]any)
			require.Contains(t, fields, tt.expectedField)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, fields[tt.expectedField])
			}
			env.catalog.AssertNotCalled(t, "FindProductsByIDs", mock.Anything, mock.Anything)
			env.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything)
		})
	}
}

func TestWebhook(t *testing.T) {
	t.Run("bad signature", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.gateway.On("ParseWebhook", []byte(`{"id":"evt_1"}`), "t=1,v1=bad").
			Return(nil, &domain.Error{Kind: domain.KindValidation, Message: domain.ErrInvalidSignature.Message, Err: errors.New("mismatch")})

		w := env.do(http.MethodPost, "/api/payments/webhook", `{"id":"evt_1"}`, map[string]string{"Stripe-Signature": "t=1,v1=bad"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completed session", func(t *testing.T) {
		env := newTestEnv(t, nil)
		evt := &domain.PaymentEvent{ID: "evt_2", Type: domain.EventCheckoutSessionCompleted, Metadata: map[string]string{"order_id": "7"}}
		env.gateway.On("ParseWebhook", mock.Anything, "sig").Return(evt, nil)
		env.orders.On("MarkPaid", mock.Anything, uint64(7), evt).Return(&domain.Order{ID: 7, Status: domain.StatusPaid}, true, nil)
		env.notifier.On("SendOrderConfirmation", mock.Anything, mock.Anything).Return(true)

		w := env.do(http.MethodPost, "/api/payments/webhook", `{}`, map[string]string{"Stripe-Signature": "sig"})

		assert.Equal(t, http.StatusOK, w.Code)
		env.orders.AssertExpectations(t)
		env.notifier.AssertExpectations(t)
	})

	t.Run("oversized payload", func(t *testing.T) {
		env := newTestEnv(t, nil)
		body := `{"pad":"` + strings.Repeat("x", maxWebhookBody) + `"}`

		w := env.do(http.MethodPost, "/api/payments/webhook", body, map[string]string{"Stripe-Signature": "sig"})

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		env.gateway.AssertNotCalled(t, "ParseWebhook", mock.Anything, mock.Anything)
	})
}

func TestGenerateReceipt(t *testing.T) {
	env := newTestEnv(t, nil)
	pid := uint64(1)
	env.orders.On("FindByID", mock.Anything, uint64(12)).Return(&domain.Order{
		ID: 12, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Currency: "usd",
		Status: domain.StatusPaid, Total: decimal.RequireFromString("28.00"), Shipping: decimal.RequireFromString("3.00"),
		Items:     []domain.OrderItem{{ProductID: &pid, Name: "Shampoo", Price: decimal.RequireFromString("12.50"), Quantity: 2}},
		CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}, nil)
	env.orders.On("FindByID", mock.Anything, uint64(13)).Return(nil, nil)

	w := env.do(http.MethodGet, "/api/payments/generate-receipt/12", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="receipt_12.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = env.do(http.MethodGet, "/api/payments/generate-receipt/13", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/payments/generate-receipt/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminAccess(t *testing.T) {
	env := newTestEnv(t, nil)
	env.orders.On("List", mock.Anything, 50, 0).Return([]domain.Order{{ID: 1}}, nil)

	w := env.do(http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/orders", "", map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/orders", "", env.bearer(t, false))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/orders", "", env.bearer(t, true))
	assert.Equal(t, http.StatusOK, w.Code)
	env.orders.AssertNumberOfCalls(t, "List", 1)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	env.orders.On("UpdateStatus", mock.Anything, uint64(3), domain.StatusShipped).Return(&domain.Order{ID: 3, Status: domain.StatusShipped}, nil)

	w := env.do(http.MethodPatch, "/api/orders/3", `{"status":"shipped"}`, env.bearer(t, true))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shipped", decode(t, w)["status"])

	w = env.do(http.MethodPatch, "/api/orders/3", `{"status":"teleported"}`, env.bearer(t, true))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t, nil)
	env.users.On("FindByUsername", mock.Anything, "ghost").Return(nil, nil)
	w := env.do(http.MethodPost, "/api/login", `{"username":"ghost","password":"whatever1"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.users.On("FindByID", mock.Anything, uint64(1)).Return(&domain.User{ID: 1, Username: "admin", IsStaff: true}, nil)
	token, err := env.auth.IssueToken(&domain.User{ID: 1, Username: "admin", IsStaff: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decode(t, rec)["username"])

	w = env.do(http.MethodPost, "/api/logout", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session=;")
}

func TestCatalogCache(t *testing.T) {
	rdb := new(MockRedisClient)
	env := newTestEnv(t, rdb)
	cat := &domain.Category{ID: 2, Name: "Hair"}
	p := product(5, "Shampoo", "10.00")
	p.CategoryID = &cat.ID
	p.Category = cat

	rdb.On("Get", mock.Anything, catalogVersionKey).Return(redis.NewStringResult("3", nil))
	rdb.On("Get", mock.Anything, "catalog:v3:product:5").Return(redis.NewStringResult("", redis.Nil)).Once()
	rdb.On("Set", mock.Anything, "catalog:v3:product:5", mock.Anything, catalogCacheTTL).Return(redis.NewStatusResult("OK", nil)).Once()
	env.catalog.On("FindProduct", mock.Anything, uint64(5)).Return(&p, nil).Once()

	w := env.do(http.MethodGet, "/api/products/5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Hair", body["category_name"])
	cached := w.Body.String()

	rdb.On("Get", mock.Anything, "catalog:v3:product:5").Return(redis.NewStringResult(cached, nil)).Once()
	w = env.do(http.MethodGet, "/api/products/5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, cached, w.Body.String())
	env.catalog.AssertNumberOfCalls(t, "FindProduct", 1)

	rdb.On("Incr", mock.Anything, catalogVersionKey).Return(redis.NewIntResult(4, nil)).Once()
	env.catalog.On("DeleteProduct", mock.Anything, uint64(5)).Return(true, nil)
	w = env.do(http.MethodDelete, "/api/products/5", "", env.bearer(t, true))
	assert.Equal(t, http.StatusNoContent, w.Code)
	rdb.AssertExpectations(t)
}

func TestCatalogWithoutCache(t *testing.T) {
	env := newTestEnv(t, nil)
	featured := true
	env.catalog.On("ListProducts", mock.Anything, domain.ProductFilter{Featured: &featured}).Return([]domain.Product{product(1, "Shampoo", "10.00")}, nil)

	w := env.do(http.MethodGet, "/api/products?featured=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Nil(t, list[0]["category_name"])

	w = env.do(http.MethodGet, "/api/products?featured=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env.handler.WithHealthCheck(func(ctx context.Context) error {
		return errors.New("dial tcp 10.0.0.5:3306: connect: connection refused")
	})
	w = env.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestCatalogCacheFillIgnoresCallerCancellation(t *testing.T) {
	rdb := new(MockRedisClient)
	rdb.On("Get", mock.Anything, catalogVersionKey).Return(redis.NewStringResult("1", nil))
	rdb.On("Get", mock.Anything, "catalog:v1:categories").Return(redis.NewStringResult("", redis.Nil))
	rdb.On("Set", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), "catalog:v1:categories", mock.Anything, catalogCacheTTL).
		Return(redis.NewStatusResult("OK", nil))
	cache := newCatalogCache(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, err := cache.fetch(ctx, "categories", func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []string{"Hair"}, nil
	})

	require.NoError(t, err)
	assert.JSONEq(t, `["Hair"]`, string(data))
	rdb.AssertExpectations(t)
}
