package workorders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
	pkgerrors "github.com/motorforge/workshop-backend/pkg/errors"
	"github.com/motorforge/workshop-backend/pkg/outbox"
	"github.com/motorforge/workshop-backend/pkg/outbox/payloads"
	"github.com/motorforge/workshop-backend/pkg/pagination"
)

type stubWorkOrdersRepo struct {
	order     *models.Order
	motorInfo *models.MotorInfo
	itemIDs   []uuid.UUID
	services  map[uuid.UUID]*models.OrderService
	history   []models.OrderHistory

	createOrder func(ctx context.Context, order *models.Order) (*models.Order, error)
}

func (s *stubWorkOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubWorkOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createOrder != nil {
		return s.createOrder(ctx, order)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		s.itemIDs = append(s.itemIDs, order.Items[i].ID)
	}
	if order.MotorInfo != nil {
		info := *order.MotorInfo
		info.OrderID = order.ID
		s.motorInfo = &info
	}
	s.order = order
	return order, nil
}

func (s *stubWorkOrdersRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubWorkOrdersRepo) FindOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, id)
}

func (s *stubWorkOrdersRepo) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.order == nil || s.order.ID != id {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			if v, ok := value.(enums.OrderStatus); ok {
				s.order.Status = v
			}
		case "updated_by":
			if v, ok := value.(uuid.UUID); ok {
				s.order.UpdatedBy = v
			}
		case "total_cost":
			if v, ok := value.(decimal.Decimal); ok {
				s.order.TotalCost = v
			}
		case "title":
			if v, ok := value.(string); ok {
				s.order.Title = v
			}
		case "priority":
			if v, ok := value.(enums.Priority); ok {
				s.order.Priority = v
			}
		case "actual_completion":
			if v, ok := value.(time.Time); ok {
				s.order.ActualCompletion = &v
			}
		case "assigned_to":
			if v, ok := value.(uuid.UUID); ok {
				s.order.AssignedTo = &v
			}
		}
	}
	return nil
}

func (s *stubWorkOrdersRepo) FindItemIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	return s.itemIDs, nil
}

func (s *stubWorkOrdersRepo) UpsertOrderServices(ctx context.Context, services []models.OrderService) error {
	if s.services == nil {
		s.services = make(map[uuid.UUID]*models.OrderService)
	}
	for i := range services {
		svc := services[i]
		if svc.ID == uuid.Nil {
			svc.ID = uuid.New()
		}
		s.services[svc.ID] = &svc
	}
	return nil
}

func (s *stubWorkOrdersRepo) FindServicesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderService, error) {
	out := make([]models.OrderService, 0, len(s.services))
	for _, svc := range s.services {
		if svc.OrderID == orderID {
			out = append(out, *svc)
		}
	}
	return out, nil
}

func (s *stubWorkOrdersRepo) AuthorizeServices(ctx context.Context, orderID uuid.UUID, serviceIDs []uuid.UUID) (int64, error) {
	var affected int64
	for _, id := range serviceIDs {
		if svc, ok := s.services[id]; ok && svc.OrderID == orderID {
			svc.IsAuthorized = true
			affected++
		}
	}
	return affected, nil
}

func (s *stubWorkOrdersRepo) CompleteServices(ctx context.Context, orderID uuid.UUID, serviceIDs []uuid.UUID) (int64, error) {
	var affected int64
	for _, id := range serviceIDs {
		if svc, ok := s.services[id]; ok && svc.OrderID == orderID {
			svc.IsCompleted = true
			affected++
		}
	}
	return affected, nil
}

func (s *stubWorkOrdersRepo) FindMotorInfo(ctx context.Context, orderID uuid.UUID) (*models.MotorInfo, error) {
	if s.motorInfo == nil || s.motorInfo.OrderID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.motorInfo, nil
}

func (s *stubWorkOrdersRepo) InsertMotorInfo(ctx context.Context, info *models.MotorInfo) error {
	s.motorInfo = info
	return nil
}

func (s *stubWorkOrdersRepo) UpdateMotorInfo(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	if s.motorInfo == nil || s.motorInfo.OrderID != orderID {
		return nil
	}
	for key, value := range updates {
		switch key {
		case "down_payment":
			if v, ok := value.(decimal.Decimal); ok {
				s.motorInfo.DownPayment = v
			}
		case "total_cost":
			if v, ok := value.(decimal.Decimal); ok {
				s.motorInfo.TotalCost = v
			}
		case "is_fully_paid":
			if v, ok := value.(bool); ok {
				s.motorInfo.IsFullyPaid = v
			}
		}
	}
	return nil
}

func (s *stubWorkOrdersRepo) InsertHistory(ctx context.Context, rows []models.OrderHistory) error {
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	s.history = append(s.history, rows...)
	return nil
}

func (s *stubWorkOrdersRepo) FindLastStatusChange(ctx context.Context, orderID uuid.UUID) (*models.OrderHistory, error) {
	for i := len(s.history) - 1; i >= 0; i-- {
		row := s.history[i]
		if row.OrderID == orderID && row.Field == trackedFieldStatus {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubWorkOrdersRepo) FindHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error) {
	return s.history, nil
}

func (s *stubWorkOrdersRepo) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

type stubEventSink struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubEventSink) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubEventSink) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return s.Emit(ctx, tx, event)
}

func (s *stubEventSink) byType(eventType enums.OutboxEventType) []outbox.DomainEvent {
	var out []outbox.DomainEvent
	for _, event := range s.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

type stubCatalogSource struct {
	entries map[string]models.CatalogService
}

func (s *stubCatalogSource) FindActiveByKeys(ctx context.Context, keys []string) (map[string]models.CatalogService, error) {
	out := make(map[string]models.CatalogService)
	for _, key := range keys {
		if entry, ok := s.entries[key]; ok {
			out[key] = entry
		}
	}
	return out, nil
}

type stubSequences struct {
	next int64
}

func (s *stubSequences) NextSequence(ctx context.Context, name string) (int64, error) {
	s.next++
	return s.next, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubWorkOrdersRepo, sink *stubEventSink, catalog *stubCatalogSource) Service {
	t.Helper()
	observer, err := NewObserver(sink)
	if err != nil {
		t.Fatalf("observer constructor failed: %v", err)
	}
	if catalog == nil {
		catalog = &stubCatalogSource{}
	}
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Tx:        stubTxRunner{},
		Outbox:    sink,
		Observer:  observer,
		Catalog:   catalog,
		Sequences: &stubSequences{next: 1000},
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func staffActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func seedOrder(repo *stubWorkOrdersRepo, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: 42,
		Title:       "V8 rebuild",
		Status:      status,
		Priority:    enums.PriorityNormal,
		TotalCost:   decimal.Zero,
		CustomerID:  uuid.New(),
		CreatedBy:   uuid.New(),
		UpdatedBy:   uuid.New(),
	}
	repo.order = order
	return order
}

func seedService(repo *stubWorkOrdersRepo, orderID uuid.UUID, key string, price int64, budgeted, authorized bool) uuid.UUID {
	if repo.services == nil {
		repo.services = make(map[uuid.UUID]*models.OrderService)
	}
	id := uuid.New()
	repo.services[id] = &models.OrderService{
		ID:           id,
		OrderID:      orderID,
		OrderItemID:  uuid.New(),
		ServiceKey:   key,
		IsBudgeted:   budgeted,
		IsAuthorized: authorized,
		NetPrice:     decimal.NewFromInt(price),
		BasePrice:    decimal.NewFromInt(price),
	}
	return id
}

func TestCreateOrderAdvancesToAwaitingReview(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)
	actor := staffActor()

	down := decimal.NewFromInt(100)
	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Title:             "Crankshaft regrind",
		CustomerID:        uuid.New(),
		DownPayment:       &down,
		MotorItemsEnabled: true,
		Items: []CreateOrderItemInput{
			{Type: enums.ItemTypeEngineBlock, Components: []string{"block", "caps"}},
		},
		Actor: actor,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if order.Status != enums.OrderStatusAwaitingReview {
		t.Fatalf("expected awaiting_review got %s", order.Status)
	}
	if order.OrderNumber == 0 {
		t.Fatal("expected allocated order number")
	}
	if repo.motorInfo == nil {
		t.Fatal("expected motor info row")
	}
	if !repo.motorInfo.DownPayment.Equal(down) {
		t.Fatalf("expected down payment %s got %s", down, repo.motorInfo.DownPayment)
	}
	if len(order.Items) != 1 || !order.Items[0].Received {
		t.Fatal("expected received item")
	}
	for _, component := range order.Items[0].Components {
		if !component.Received {
			t.Fatalf("expected component %s marked received", component.Name)
		}
	}

	if got := sink.byType(enums.EventOrderCreated); len(got) != 1 {
		t.Fatalf("expected one created event got %d", len(got))
	}
	statusEvents := sink.byType(enums.EventOrderStatusChanged)
	if len(statusEvents) != 1 {
		t.Fatalf("expected one status change event got %d", len(statusEvents))
	}
	payload := statusEvents[0].Data.(payloads.OrderStatusChangedEvent)
	if payload.OldStatus != enums.OrderStatusReceived || payload.NewStatus != enums.OrderStatusAwaitingReview {
		t.Fatalf("unexpected status payload %s -> %s", payload.OldStatus, payload.NewStatus)
	}
	if payload.TrackingStatus != enums.TrackingStatusFor(enums.OrderStatusAwaitingReview) {
		t.Fatalf("unexpected tracking status %s", payload.TrackingStatus)
	}

	if len(repo.history) != 1 {
		t.Fatalf("expected one history row got %d", len(repo.history))
	}
	row := repo.history[0]
	if row.Field != trackedFieldStatus || row.NewValue == nil || *row.NewValue != "awaiting_review" {
		t.Fatalf("unexpected history row %+v", row)
	}
}

func TestCreateOrderWithoutMotorItems(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Title:             "Head resurface",
		CustomerID:        uuid.New(),
		MotorItemsEnabled: false,
		Items: []CreateOrderItemInput{
			{Type: enums.ItemTypeCylinderHead},
		},
		Actor: staffActor(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.motorInfo != nil {
		t.Fatal("expected no motor info when feature is off")
	}
	if len(order.Items) != 0 {
		t.Fatalf("expected no items got %d", len(order.Items))
	}
	if order.Status != enums.OrderStatusAwaitingReview {
		t.Fatalf("expected awaiting_review got %s", order.Status)
	}
}

func TestCreateOrderRequiresTitle(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: uuid.New(),
		Actor:      staffActor(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestSubmitBudgetChainsToCustomerApproval(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	catalog := &stubCatalogSource{entries: map[string]models.CatalogService{
		"bore_hone": {Key: "bore_hone", NetPrice: decimal.NewFromInt(150), BasePrice: decimal.NewFromInt(180)},
		"deck_mill": {Key: "deck_mill", NetPrice: decimal.NewFromInt(90), BasePrice: decimal.NewFromInt(100)},
	}}
	svc := newTestService(t, repo, sink, catalog)

	order := seedOrder(repo, enums.OrderStatusAwaitingReview)
	itemID := uuid.New()
	repo.itemIDs = []uuid.UUID{itemID}
	repo.motorInfo = &models.MotorInfo{OrderID: order.ID, DownPayment: decimal.Zero}

	updated, err := svc.SubmitBudget(context.Background(), SubmitBudgetInput{
		OrderID: order.ID,
		Lines: []ServiceLineInput{
			{OrderItemID: itemID, ServiceKey: "bore_hone"},
			{OrderItemID: itemID, ServiceKey: "deck_mill"},
		},
		Actor: staffActor(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Status != enums.OrderStatusAwaitingCustomerApproval {
		t.Fatalf("expected awaiting_customer_approval got %s", updated.Status)
	}
	want := decimal.NewFromInt(240)
	if !updated.TotalCost.Equal(want) {
		t.Fatalf("expected total %s got %s", want, updated.TotalCost)
	}
	if !repo.motorInfo.TotalCost.Equal(want) {
		t.Fatalf("expected motor info total %s got %s", want, repo.motorInfo.TotalCost)
	}

	if got := sink.byType(enums.EventOrderBudgeted); len(got) != 1 {
		t.Fatalf("expected one budgeted event got %d", len(got))
	}
	// reviewed commit plus the automatic follow-up each audit separately
	statusEvents := sink.byType(enums.EventOrderStatusChanged)
	if len(statusEvents) != 2 {
		t.Fatalf("expected two status change events got %d", len(statusEvents))
	}
	first := statusEvents[0].Data.(payloads.OrderStatusChangedEvent)
	second := statusEvents[1].Data.(payloads.OrderStatusChangedEvent)
	if first.NewStatus != enums.OrderStatusReviewed || second.NewStatus != enums.OrderStatusAwaitingCustomerApproval {
		t.Fatalf("unexpected transition chain %s then %s", first.NewStatus, second.NewStatus)
	}
	if len(repo.history) != 2 {
		t.Fatalf("expected two history rows got %d", len(repo.history))
	}
}

func TestSubmitBudgetUnknownServiceKey(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	catalog := &stubCatalogSource{entries: map[string]models.CatalogService{}}
	svc := newTestService(t, repo, &stubEventSink{}, catalog)

	order := seedOrder(repo, enums.OrderStatusAwaitingReview)
	_, err := svc.SubmitBudget(context.Background(), SubmitBudgetInput{
		OrderID: order.ID,
		Lines:   []ServiceLineInput{{OrderItemID: uuid.New(), ServiceKey: "ghost_service"}},
		Actor:   staffActor(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error got %v", err)
	}
}

func TestSubmitBudgetWrongStatus(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	catalog := &stubCatalogSource{entries: map[string]models.CatalogService{
		"bore_hone": {Key: "bore_hone"},
	}}
	svc := newTestService(t, repo, &stubEventSink{}, catalog)

	order := seedOrder(repo, enums.OrderStatusInProgress)
	_, err := svc.SubmitBudget(context.Background(), SubmitBudgetInput{
		OrderID: order.ID,
		Lines:   []ServiceLineInput{{OrderItemID: uuid.New(), ServiceKey: "bore_hone"}},
		Actor:   staffActor(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestCustomerApprovalAuthorizesSubset(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)

	order := seedOrder(repo, enums.OrderStatusAwaitingCustomerApproval)
	repo.motorInfo = &models.MotorInfo{OrderID: order.ID, DownPayment: decimal.Zero}
	approvedID := seedService(repo, order.ID, "bore_hone", 150, true, false)
	seedService(repo, order.ID, "deck_mill", 90, true, false)

	down := decimal.NewFromInt(150)
	updated, err := svc.CustomerApproval(context.Background(), CustomerApprovalInput{
		OrderID:     order.ID,
		ServiceIDs:  []uuid.UUID{approvedID},
		DownPayment: &down,
		Actor:       Actor{UserID: uuid.New(), Role: enums.RoleCustomer},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Status != enums.OrderStatusReadyForWork {
		t.Fatalf("expected ready_for_work got %s", updated.Status)
	}
	// authorized view: only the approved line counts
	want := decimal.NewFromInt(150)
	if !updated.TotalCost.Equal(want) {
		t.Fatalf("expected total %s got %s", want, updated.TotalCost)
	}
	if !repo.motorInfo.IsFullyPaid {
		t.Fatal("expected fully paid with covering down payment")
	}

	approvals := sink.byType(enums.EventOrderApproved)
	if len(approvals) != 1 {
		t.Fatalf("expected one approval event got %d", len(approvals))
	}
	payload := approvals[0].Data.(payloads.OrderApprovedEvent)
	if len(payload.ApprovedKeys) != 1 || payload.ApprovedKeys[0] != "bore_hone" {
		t.Fatalf("unexpected approved keys %v", payload.ApprovedKeys)
	}
	if len(payload.DeclinedKeys) != 1 || payload.DeclinedKeys[0] != "deck_mill" {
		t.Fatalf("unexpected declined keys %v", payload.DeclinedKeys)
	}
}

func TestCustomerApprovalBackfillsMotorInfoForDownPayment(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	// order created with motor items disabled: no motor info row exists
	order := seedOrder(repo, enums.OrderStatusAwaitingCustomerApproval)
	approvedID := seedService(repo, order.ID, "bore_hone", 150, true, false)

	down := decimal.NewFromInt(50)
	_, err := svc.CustomerApproval(context.Background(), CustomerApprovalInput{
		OrderID:     order.ID,
		ServiceIDs:  []uuid.UUID{approvedID},
		DownPayment: &down,
		Actor:       Actor{UserID: uuid.New(), Role: enums.RoleCustomer},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.motorInfo == nil || repo.motorInfo.OrderID != order.ID {
		t.Fatal("expected motor info row to be created for the down payment")
	}
	if !repo.motorInfo.DownPayment.Equal(down) {
		t.Fatalf("expected down payment %s got %s", down, repo.motorInfo.DownPayment)
	}
}

func TestCustomerApprovalRejectsForeignService(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	order := seedOrder(repo, enums.OrderStatusAwaitingCustomerApproval)
	_, err := svc.CustomerApproval(context.Background(), CustomerApprovalInput{
		OrderID:    order.ID,
		ServiceIDs: []uuid.UUID{uuid.New()},
		Actor:      Actor{UserID: uuid.New(), Role: enums.RoleCustomer},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestMarkWorkCompletedKeepsStatus(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)

	order := seedOrder(repo, enums.OrderStatusInProgress)
	serviceID := seedService(repo, order.ID, "bore_hone", 150, true, true)

	err := svc.MarkWorkCompleted(context.Background(), MarkWorkCompletedInput{
		OrderID:    order.ID,
		ServiceIDs: []uuid.UUID{serviceID},
		Actor:      staffActor(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !repo.services[serviceID].IsCompleted {
		t.Fatal("expected service marked completed")
	}
	if repo.order.Status != enums.OrderStatusInProgress {
		t.Fatalf("expected status unchanged got %s", repo.order.Status)
	}
	if len(sink.events) != 0 {
		t.Fatalf("expected no events got %d", len(sink.events))
	}
}

func TestStartWork(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	order := seedOrder(repo, enums.OrderStatusReadyForWork)
	if err := svc.StartWork(context.Background(), TransitionInput{OrderID: order.ID, Actor: staffActor()}); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.order.Status != enums.OrderStatusInProgress {
		t.Fatalf("expected in_progress got %s", repo.order.Status)
	}
}

func TestDeliverOrderStampsCompletion(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)

	order := seedOrder(repo, enums.OrderStatusReadyForDelivery)
	if err := svc.DeliverOrder(context.Background(), TransitionInput{OrderID: order.ID, Actor: staffActor()}); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered got %s", repo.order.Status)
	}
	if repo.order.ActualCompletion == nil {
		t.Fatal("expected actual completion timestamp")
	}
	if got := sink.byType(enums.EventOrderDelivered); len(got) != 1 {
		t.Fatalf("expected one delivered event got %d", len(got))
	}
}

func TestRecordPayment(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)

	order := seedOrder(repo, enums.OrderStatusDelivered)
	repo.motorInfo = &models.MotorInfo{OrderID: order.ID}

	err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		OrderID: order.ID,
		Amount:  decimal.NewFromInt(500),
		Actor:   staffActor(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.order.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid got %s", repo.order.Status)
	}
	if !repo.motorInfo.IsFullyPaid {
		t.Fatal("expected motor info fully paid")
	}
	if got := sink.byType(enums.EventOrderPaid); len(got) != 1 {
		t.Fatalf("expected one paid event got %d", len(got))
	}
}

func TestRecordPaymentBackfillsMissingMotorInfo(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	order := seedOrder(repo, enums.OrderStatusDelivered)

	err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		OrderID: order.ID,
		Amount:  decimal.NewFromInt(500),
		Actor:   staffActor(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.motorInfo == nil || repo.motorInfo.OrderID != order.ID {
		t.Fatal("expected motor info row to be created")
	}
	if !repo.motorInfo.IsFullyPaid {
		t.Fatal("expected motor info fully paid")
	}
}

func TestRecordPaymentRequiresPositiveAmount(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	order := seedOrder(repo, enums.OrderStatusDelivered)
	err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		OrderID: order.ID,
		Amount:  decimal.Zero,
		Actor:   staffActor(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestHoldThenResumeRestoresPriorStatus(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)
	actor := staffActor()

	order := seedOrder(repo, enums.OrderStatusInProgress)
	if err := svc.HoldOrder(context.Background(), TransitionInput{OrderID: order.ID, Actor: actor}); err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if repo.order.Status != enums.OrderStatusOnHold {
		t.Fatalf("expected on_hold got %s", repo.order.Status)
	}

	if err := svc.ResumeOrder(context.Background(), TransitionInput{OrderID: order.ID, Actor: actor}); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if repo.order.Status != enums.OrderStatusInProgress {
		t.Fatalf("expected in_progress restored got %s", repo.order.Status)
	}
}

func TestResumeWithoutHistory(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	order := seedOrder(repo, enums.OrderStatusOnHold)
	err := svc.ResumeOrder(context.Background(), TransitionInput{OrderID: order.ID, Actor: staffActor()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestCancelTerminalOrderRejected(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	order := seedOrder(repo, enums.OrderStatusPaid)
	err := svc.CancelOrder(context.Background(), TransitionInput{OrderID: order.ID, Actor: staffActor()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestUpdateOrderDetailsAuditsChanges(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)

	order := seedOrder(repo, enums.OrderStatusInProgress)
	newTitle := "V8 rebuild and balance"
	urgent := enums.PriorityUrgent
	updated, err := svc.UpdateOrderDetails(context.Background(), UpdateOrderDetailsInput{
		OrderID:  order.ID,
		Title:    &newTitle,
		Priority: &urgent,
		Actor:    staffActor(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Title != newTitle || updated.Priority != enums.PriorityUrgent {
		t.Fatalf("updates not applied: %+v", updated)
	}
	if updated.Status != enums.OrderStatusInProgress {
		t.Fatalf("expected status unchanged got %s", updated.Status)
	}
	if len(repo.history) != 2 {
		t.Fatalf("expected two history rows got %d", len(repo.history))
	}
	fieldEvents := sink.byType(enums.EventOrderFieldsChanged)
	if len(fieldEvents) != 1 {
		t.Fatalf("expected one fields event got %d", len(fieldEvents))
	}
	payload := fieldEvents[0].Data.(payloads.OrderFieldsChangedEvent)
	if len(payload.Changes) != 2 {
		t.Fatalf("expected two field changes got %d", len(payload.Changes))
	}
	if got := sink.byType(enums.EventOrderStatusChanged); len(got) != 0 {
		t.Fatalf("expected no status events got %d", len(got))
	}
}

func TestUpdateOrderDetailsNoopSkipsAudit(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	sink := &stubEventSink{}
	svc := newTestService(t, repo, sink, nil)

	order := seedOrder(repo, enums.OrderStatusInProgress)
	sameTitle := order.Title
	_, err := svc.UpdateOrderDetails(context.Background(), UpdateOrderDetailsInput{
		OrderID: order.ID,
		Title:   &sameTitle,
		Actor:   staffActor(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.history) != 0 || len(sink.events) != 0 {
		t.Fatal("expected no audit output for a no-op update")
	}
}

func TestUpdateOrderDetailsClosedOrder(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	order := seedOrder(repo, enums.OrderStatusCancelled)
	title := "too late"
	_, err := svc.UpdateOrderDetails(context.Background(), UpdateOrderDetailsInput{
		OrderID: order.ID,
		Title:   &title,
		Actor:   staffActor(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	repo := &stubWorkOrdersRepo{}
	svc := newTestService(t, repo, &stubEventSink{}, nil)

	_, err := svc.GetOrder(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
