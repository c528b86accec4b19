package workorders

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/motorforge/workshop-backend/pkg/db/models"
)

func TestSumServicesViews(t *testing.T) {
	services := []models.OrderService{
		{NetPrice: decimal.NewFromInt(100), IsBudgeted: true, IsAuthorized: true},
		{NetPrice: decimal.NewFromInt(50), IsBudgeted: true},
		{NetPrice: decimal.NewFromInt(999)}, // neither budgeted nor authorized
	}

	if got := sumServices(services, totalsBudgeted); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("budgeted view: expected 150 got %s", got)
	}
	if got := sumServices(services, totalsAuthorized); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("authorized view: expected 100 got %s", got)
	}
}

func TestSumServicesEmpty(t *testing.T) {
	if got := sumServices(nil, totalsBudgeted); !got.Equal(decimal.Zero) {
		t.Fatalf("expected zero got %s", got)
	}
}
