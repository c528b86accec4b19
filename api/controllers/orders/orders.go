package orders

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/motorforge/workshop-backend/api/middleware"
	"github.com/motorforge/workshop-backend/api/responses"
	"github.com/motorforge/workshop-backend/api/validators"
	"github.com/motorforge/workshop-backend/internal/authz"
	"github.com/motorforge/workshop-backend/internal/workorders"
	"github.com/motorforge/workshop-backend/pkg/db/models"
	"github.com/motorforge/workshop-backend/pkg/enums"
	pkgerrors "github.com/motorforge/workshop-backend/pkg/errors"
	"github.com/motorforge/workshop-backend/pkg/featureflags"
	"github.com/motorforge/workshop-backend/pkg/logger"
	"github.com/motorforge/workshop-backend/pkg/pagination"
)

// Create opens a new work order from the intake form.
func Create(svc workorders.Service, flags *featureflags.Flags, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := uuid.Parse(strings.TrimSpace(payload.CustomerID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		input := workorders.CreateOrderInput{
			Title:       validators.SanitizeString(payload.Title, 255),
			Description: payload.Description,
			Notes:       payload.Notes,
			CustomerID:  customerID,
			Actor:       actor,
		}

		if payload.Priority != "" {
			priority, err := enums.ParsePriority(payload.Priority)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid priority %q", payload.Priority)))
				return
			}
			input.Priority = priority
		}

		if payload.CategoryID != nil {
			categoryID, err := uuid.Parse(strings.TrimSpace(*payload.CategoryID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			input.CategoryID = &categoryID
		}

		if payload.EstimatedCompletion != nil {
			estimated, err := parseTimeParam(*payload.EstimatedCompletion, "estimated_completion")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.EstimatedCompletion = estimated
		}

		if payload.DownPayment != nil {
			amount, err := parseAmount(*payload.DownPayment, "down_payment")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.DownPayment = &amount
		}

		for _, item := range payload.Items {
			itemType, err := enums.ParseItemType(item.Type)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid item type %q", item.Type)))
				return
			}
			input.Items = append(input.Items, workorders.CreateOrderItemInput{
				Type:       itemType,
				Components: item.Components,
			})
		}

		if flags != nil {
			input.MotorItemsEnabled = flags.MotorItemsEnabled(actor.Role, time.Now().UTC())
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			if order != nil {
				// Persisted but the follow-up advance failed; surface the order
				// anyway so the client can retry the transition.
				responses.WriteSuccessStatus(w, http.StatusCreated, order)
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// List returns the caller's order page, scoped by role.
func List(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := authz.ScopeFor(actor.UserID, actor.Role)
		if scope.CustomerID != nil {
			filters.CustomerID = scope.CustomerID
		}
		filters.StaffScopeID = scope.StaffScopeID

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.ListOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns a single order after the visibility check.
func Detail(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !authz.CanViewOrder(actor.UserID, actor.Role, order) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order not visible to caller"))
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// History returns the order's audit trail.
func History(svc workorders.Service, repo workorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !authz.CanViewOrder(actor.UserID, actor.Role, order) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order not visible to caller"))
			return
		}

		history, err := repo.FindHistoryByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch order history"))
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// SubmitBudget records the reviewer's budget lines and advances the order.
func SubmitBudget(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, orderID, err := managedOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitBudgetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := workorders.SubmitBudgetInput{
			OrderID: orderID,
			Actor:   actor,
		}
		for _, line := range payload.Lines {
			itemID, err := uuid.Parse(strings.TrimSpace(line.OrderItemID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order item id"))
				return
			}
			input.Lines = append(input.Lines, workorders.ServiceLineInput{
				OrderItemID: itemID,
				ServiceKey:  strings.TrimSpace(line.ServiceKey),
				Measurement: line.Measurement,
			})
		}

		order, err := svc.SubmitBudget(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Approval records the customer's decision on budgeted services.
func Approval(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !authz.CanApproveOrder(actor.UserID, actor.Role, order) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "approval not permitted for caller"))
			return
		}

		var payload approvalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := workorders.CustomerApprovalInput{
			OrderID: orderID,
			Actor:   actor,
		}
		for _, raw := range payload.ServiceIDs {
			serviceID, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service id"))
				return
			}
			input.ServiceIDs = append(input.ServiceIDs, serviceID)
		}
		if payload.DownPayment != nil {
			amount, err := parseAmount(*payload.DownPayment, "down_payment")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.DownPayment = &amount
		}

		updated, err := svc.CustomerApproval(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// WorkCompleted flags the named services as finished.
func WorkCompleted(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, orderID, err := managedOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload workCompletedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := workorders.MarkWorkCompletedInput{
			OrderID: orderID,
			Actor:   actor,
		}
		for _, raw := range payload.ServiceIDs {
			serviceID, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service id"))
				return
			}
			input.ServiceIDs = append(input.ServiceIDs, serviceID)
		}

		if err := svc.MarkWorkCompleted(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// StartWork moves the order onto the bench.
func StartWork(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(ctx context.Context, input workorders.TransitionInput) error {
		return svc.StartWork(ctx, input)
	})
}

// ReadyForDelivery marks the order ready for customer pickup.
func ReadyForDelivery(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(ctx context.Context, input workorders.TransitionInput) error {
		return svc.MarkReadyForDelivery(ctx, input)
	})
}

// Deliver hands the order back to the customer.
func Deliver(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(ctx context.Context, input workorders.TransitionInput) error {
		return svc.DeliverOrder(ctx, input)
	})
}

// Hold pauses active work on the order.
func Hold(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(ctx context.Context, input workorders.TransitionInput) error {
		return svc.HoldOrder(ctx, input)
	})
}

// Resume restores the order to its pre-hold status.
func Resume(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(ctx context.Context, input workorders.TransitionInput) error {
		return svc.ResumeOrder(ctx, input)
	})
}

// Cancel closes the order. Staff managers and the owning customer may cancel.
func Cancel(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !canCancel(actor, order) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cancellation not permitted for caller"))
			return
		}

		if err := svc.CancelOrder(r.Context(), workorders.TransitionInput{OrderID: orderID, Actor: actor}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// Payment settles the outstanding balance on a delivered order.
func Payment(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, orderID, err := managedOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := parseAmount(payload.Amount, "amount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := workorders.RecordPaymentInput{
			OrderID: orderID,
			Amount:  amount,
			Actor:   actor,
		}
		if err := svc.RecordPayment(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// UpdateDetails edits tracked non-status fields on an open order.
func UpdateDetails(svc workorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, orderID, err := managedOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateDetailsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := workorders.UpdateOrderDetailsInput{
			OrderID:     orderID,
			Title:       payload.Title,
			Description: payload.Description,
			Notes:       payload.Notes,
			Actor:       actor,
		}

		if payload.Priority != nil {
			priority, err := enums.ParsePriority(*payload.Priority)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid priority %q", *payload.Priority)))
				return
			}
			input.Priority = &priority
		}
		if payload.CategoryID != nil {
			categoryID, err := uuid.Parse(strings.TrimSpace(*payload.CategoryID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			input.CategoryID = &categoryID
		}
		if payload.AssignedTo != nil {
			if !authz.CanAssignOrders(actor.Role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "assignment requires admin role"))
				return
			}
			assignedTo, err := uuid.Parse(strings.TrimSpace(*payload.AssignedTo))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assignee id"))
				return
			}
			input.AssignedTo = &assignedTo
		}
		if payload.EstimatedCompletion != nil {
			estimated, err := parseTimeParam(*payload.EstimatedCompletion, "estimated_completion")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.EstimatedCompletion = estimated
		}

		order, err := svc.UpdateOrderDetails(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type createOrderItemRequest struct {
	Type       string   `json:"type" validate:"required"`
	Components []string `json:"components,omitempty"`
}

type createOrderRequest struct {
	Title               string                   `json:"title" validate:"required,min=1,max=255"`
	Description         *string                  `json:"description,omitempty"`
	Priority            string                   `json:"priority,omitempty"`
	CategoryID          *string                  `json:"category_id,omitempty"`
	Notes               *string                  `json:"notes,omitempty"`
	EstimatedCompletion *string                  `json:"estimated_completion,omitempty"`
	CustomerID          string                   `json:"customer_id" validate:"required,uuid4"`
	DownPayment         *string                  `json:"down_payment,omitempty"`
	Items               []createOrderItemRequest `json:"items,omitempty" validate:"dive"`
}

type budgetLineRequest struct {
	OrderItemID string  `json:"order_item_id" validate:"required,uuid4"`
	ServiceKey  string  `json:"service_key" validate:"required"`
	Measurement *string `json:"measurement,omitempty"`
}

type submitBudgetRequest struct {
	Lines []budgetLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type approvalRequest struct {
	ServiceIDs  []string `json:"service_ids" validate:"required,min=1"`
	DownPayment *string  `json:"down_payment,omitempty"`
}

type workCompletedRequest struct {
	ServiceIDs []string `json:"service_ids" validate:"required,min=1"`
}

type paymentRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type updateDetailsRequest struct {
	Title               *string `json:"title,omitempty"`
	Description         *string `json:"description,omitempty"`
	Notes               *string `json:"notes,omitempty"`
	Priority            *string `json:"priority,omitempty"`
	CategoryID          *string `json:"category_id,omitempty"`
	AssignedTo          *string `json:"assigned_to,omitempty"`
	EstimatedCompletion *string `json:"estimated_completion,omitempty"`
}

func transitionHandler(svc workorders.Service, logg *logger.Logger, run func(context.Context, workorders.TransitionInput) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, orderID, err := managedOrder(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := run(r.Context(), workorders.TransitionInput{OrderID: orderID, Actor: actor}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func actorFrom(r *http.Request) (workorders.Actor, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return workorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return workorders.Actor{
		UserID: userID,
		Role:   middleware.RoleFromContext(r.Context()),
	}, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

// managedOrder resolves the actor and order id, loads the order, and enforces
// the staff management rule.
func managedOrder(r *http.Request, svc workorders.Service) (workorders.Actor, uuid.UUID, error) {
	actor, err := actorFrom(r)
	if err != nil {
		return workorders.Actor{}, uuid.Nil, err
	}
	orderID, err := parseOrderID(r)
	if err != nil {
		return workorders.Actor{}, uuid.Nil, err
	}
	order, err := svc.GetOrder(r.Context(), orderID)
	if err != nil {
		return workorders.Actor{}, uuid.Nil, err
	}
	if !authz.CanManageOrder(actor.UserID, actor.Role, order) {
		return workorders.Actor{}, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "order not manageable by caller")
	}
	return actor, orderID, nil
}

func canCancel(actor workorders.Actor, order *models.Order) bool {
	if authz.CanManageOrder(actor.UserID, actor.Role, order) {
		return true
	}
	return order != nil && actor.Role == enums.RoleCustomer && order.CustomerID == actor.UserID
}

func buildListFilters(r *http.Request) (workorders.ListFilters, error) {
	var filters workorders.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status %q", raw))
		}
		filters.Status = &status
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
		priority, err := enums.ParsePriority(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid priority %q", raw))
		}
		filters.Priority = &priority
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("customer_id")); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id")
		}
		filters.CustomerID = &customerID
	}

	dateFrom, err := parseTimeParam(r.URL.Query().Get("date_from"), "date_from")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = dateFrom

	dateTo, err := parseTimeParam(r.URL.Query().Get("date_to"), "date_to")
	if err != nil {
		return filters, err
	}
	filters.DateTo = dateTo

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		filters.Query = q
	}

	return filters, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s", field))
	}
	return amount, nil
}

func parseTimeParam(value, field string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s", field))
		}
	}
	return &t, nil
}
