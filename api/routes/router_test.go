package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/internal/catalog"
	"github.com/motorforge/workshop-backend/internal/notifications"
	"github.com/motorforge/workshop-backend/internal/workorders"
	pkgauth "github.com/motorforge/workshop-backend/pkg/auth"
	"github.com/motorforge/workshop-backend/pkg/config"
	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
	"github.com/motorforge/workshop-backend/pkg/logger"
	"github.com/motorforge/workshop-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubRouterOrdersService struct {
	create func(ctx context.Context, input workorders.CreateOrderInput) (*models.Order, error)
	get    func(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

func (s stubRouterOrdersService) CreateOrder(ctx context.Context, input workorders.CreateOrderInput) (*models.Order, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusAwaitingReview}, nil
}

func (s stubRouterOrdersService) SubmitBudget(ctx context.Context, input workorders.SubmitBudgetInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID}, nil
}

func (s stubRouterOrdersService) CustomerApproval(ctx context.Context, input workorders.CustomerApprovalInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID}, nil
}

func (stubRouterOrdersService) MarkWorkCompleted(ctx context.Context, input workorders.MarkWorkCompletedInput) error {
	return nil
}

func (stubRouterOrdersService) MarkReadyForDelivery(ctx context.Context, input workorders.TransitionInput) error {
	return nil
}

func (stubRouterOrdersService) DeliverOrder(ctx context.Context, input workorders.TransitionInput) error {
	return nil
}

func (stubRouterOrdersService) StartWork(ctx context.Context, input workorders.TransitionInput) error {
	return nil
}

func (stubRouterOrdersService) RecordPayment(ctx context.Context, input workorders.RecordPaymentInput) error {
	return nil
}

func (stubRouterOrdersService) HoldOrder(ctx context.Context, input workorders.TransitionInput) error {
	return nil
}

func (stubRouterOrdersService) ResumeOrder(ctx context.Context, input workorders.TransitionInput) error {
	return nil
}

func (stubRouterOrdersService) CancelOrder(ctx context.Context, input workorders.TransitionInput) error {
	return nil
}

func (s stubRouterOrdersService) UpdateOrderDetails(ctx context.Context, input workorders.UpdateOrderDetailsInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID}, nil
}

func (s stubRouterOrdersService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &models.Order{ID: id, Status: enums.OrderStatusReadyForWork}, nil
}

func (stubRouterOrdersService) ListOrders(ctx context.Context, params pagination.Params, filters workorders.ListFilters) (*workorders.OrderList, error) {
	return &workorders.OrderList{}, nil
}

type stubRouterOrdersRepo struct{}

func (s *stubRouterOrdersRepo) WithTx(tx *gorm.DB) workorders.Repository {
	return s
}

func (s *stubRouterOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) FindItemIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) UpsertOrderServices(ctx context.Context, services []models.OrderService) error {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) FindServicesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderService, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) AuthorizeServices(ctx context.Context, orderID uuid.UUID, serviceIDs []uuid.UUID) (int64, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) CompleteServices(ctx context.Context, orderID uuid.UUID, serviceIDs []uuid.UUID) (int64, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) FindMotorInfo(ctx context.Context, orderID uuid.UUID) (*models.MotorInfo, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) InsertMotorInfo(ctx context.Context, info *models.MotorInfo) error {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) UpdateMotorInfo(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) InsertHistory(ctx context.Context, rows []models.OrderHistory) error {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) FindLastStatusChange(ctx context.Context, orderID uuid.UUID) (*models.OrderHistory, error) {
	panic("unimplemented")
}

func (s *stubRouterOrdersRepo) FindHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error) {
	return []models.OrderHistory{}, nil
}

func (s *stubRouterOrdersRepo) ListOrders(ctx context.Context, params pagination.Params, filters workorders.ListFilters) (*workorders.OrderList, error) {
	panic("unimplemented")
}

type stubCatalogService struct{}

func (stubCatalogService) FindActiveByKeys(ctx context.Context, keys []string) (map[string]models.CatalogService, error) {
	return map[string]models.CatalogService{}, nil
}

func (stubCatalogService) ListServices(ctx context.Context) ([]models.CatalogService, error) {
	return []models.CatalogService{}, nil
}

func (stubCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return []models.Category{}, nil
}

func (stubCatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return &models.Category{ID: id}, nil
}

type stubRouterNotificationsService struct{}

func (stubRouterNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubRouterNotificationsService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubRouterNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubRouterNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, svc workorders.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis
		nil, // feature flags
		svc,
		&stubRouterOrdersRepo{},
		stubCatalogService{},
		stubRouterNotificationsService{},
	)
}

var _ catalog.Service = stubCatalogService{}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), stubRouterOrdersService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for health live got %d", resp.Code)
	}
}

func TestOrdersRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), stubRouterOrdersService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCreateOrderRequiresStaffRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubRouterOrdersService{})
	body := `{"title":"Rebuild B230","customer_id":"` + uuid.NewString() + `"}`

	customer := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, uuid.New()))
	customer.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer create got %d", resp.Code)
	}

	staff := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	staff.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleEmployee, uuid.New()))
	staff.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, staff)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for staff create got %d", resp.Code)
	}
}

func TestStartWorkRequiresStaffRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubRouterOrdersService{})
	target := "/api/v1/orders/" + uuid.NewString() + "/start-work"

	customer := httptest.NewRequest(http.MethodPost, target, nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer start-work got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin, uuid.New()))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin start-work got %d", resp.Code)
	}
}

func TestOrderListAcceptsAnyAuthenticatedRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubRouterOrdersService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for customer list got %d", resp.Code)
	}
}

func TestApprovalAllowsOwningCustomer(t *testing.T) {
	cfg := testConfig()
	customerID := uuid.New()
	svc := stubRouterOrdersService{
		get: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id, CustomerID: customerID, Status: enums.OrderStatusAwaitingCustomerApproval}, nil
		},
	}
	router := newTestRouter(cfg, svc)

	body := `{"service_ids":["` + uuid.NewString() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/approval", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, customerID))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owning customer approval got %d", resp.Code)
	}
}

func TestApprovalRejectsForeignCustomer(t *testing.T) {
	cfg := testConfig()
	svc := stubRouterOrdersService{
		get: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id, CustomerID: uuid.New(), Status: enums.OrderStatusAwaitingCustomerApproval}, nil
		},
	}
	router := newTestRouter(cfg, svc)

	body := `{"service_ids":["` + uuid.NewString() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/approval", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, uuid.New()))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign customer approval got %d", resp.Code)
	}
}

func TestNotificationsRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubRouterOrdersService{})
	token := buildToken(t, cfg, enums.RoleCustomer, uuid.New())

	list := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	list.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, list)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for notifications list got %d", resp.Code)
	}

	markAll := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil)
	markAll.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, markAll)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for mark all read got %d", resp.Code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubRouterOrdersService{})
	token := buildToken(t, cfg, enums.RoleEmployee, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/services", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for catalog services got %d", resp.Code)
	}
}
