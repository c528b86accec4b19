package workorders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	pkgerrors "github.com/motorforge/workshop-backend/pkg/errors"
)

// totalsView selects which service lines count toward the order total.
type totalsView int

const (
	// totalsBudgeted sums every budgeted line — the quote shown for approval.
	totalsBudgeted totalsView = iota
	// totalsAuthorized sums only customer-authorized lines — the billable total.
	totalsAuthorized
)

// sumServices folds net prices over the selected view. Idempotent by
// construction: the result depends only on the current rows.
func sumServices(services []models.OrderService, view totalsView) decimal.Decimal {
	total := decimal.Zero
	for _, svc := range services {
		switch view {
		case totalsAuthorized:
			if !svc.IsAuthorized {
				continue
			}
		default:
			if !svc.IsBudgeted {
				continue
			}
		}
		total = total.Add(svc.NetPrice)
	}
	return total
}

// recomputeTotals refreshes Order.total_cost and MotorInfo.total_cost from
// the current service rows, and derives is_fully_paid from the down payment.
// Must run inside the caller's transaction (tx-bound repo).
func (s *service) recomputeTotals(ctx context.Context, repo Repository, order *models.Order, view totalsView) (decimal.Decimal, error) {
	services, err := repo.FindServicesByOrder(ctx, order.ID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order services")
	}
	total := sumServices(services, view)

	if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"total_cost": total}); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order total")
	}
	order.TotalCost = total

	info, err := repo.FindMotorInfo(ctx, order.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// intake ran with motor items disabled; nothing to sync
			return total, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load motor info")
	}

	fullyPaid := total.GreaterThan(decimal.Zero) && info.DownPayment.GreaterThanOrEqual(total)
	updates := map[string]any{
		"total_cost":    total,
		"is_fully_paid": fullyPaid,
	}
	if err := repo.UpdateMotorInfo(ctx, order.ID, updates); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update motor info totals")
	}
	return total, nil
}
