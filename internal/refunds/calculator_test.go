package refunds

import (
	"testing"

	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/money"
)

func sampleItems() []platform.OrderItem {
	return []platform.OrderItem{
		{ID: "item-1", Name: "Pizza Margherita", UnitPrice: 500, Quantity: 3},
		{ID: "item-2", Name: "Cola", UnitPrice: 250, Quantity: 2},
	}
}

func TestComputeTotal(t *testing.T) {
	items := sampleItems()

	selection := []SelectedItem{
		{OrderItemID: "item-1", Quantity: 2},
		{OrderItemID: "item-2", Quantity: 1},
	}
	if got := ComputeTotal(items, selection); got != 1250 {
		t.Errorf("expected 12.50 EUR (1250 cents), got %d", got)
	}
}

func TestComputeTotalClampsToOrderedQuantity(t *testing.T) {
	items := sampleItems()

	selection := []SelectedItem{
		{OrderItemID: "item-1", Quantity: 99},
	}
	if got := ComputeTotal(items, selection); got != 1500 {
		t.Errorf("expected clamp to 3 units (1500 cents), got %d", got)
	}
}

func TestComputeTotalSkipsZeroAndUnknown(t *testing.T) {
	items := sampleItems()

	selection := []SelectedItem{
		{OrderItemID: "item-1", Quantity: 0},
		{OrderItemID: "item-2", Quantity: -3},
		{OrderItemID: "item-missing", Quantity: 5},
	}
	if got := ComputeTotal(items, selection); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestComputeTotalEmptySelection(t *testing.T) {
	if got := ComputeTotal(sampleItems(), nil); got != 0 {
		t.Errorf("expected 0 for empty selection, got %d", got)
	}
}

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		requested, ordered, want int
	}{
		{2, 3, 2},
		{3, 3, 3},
		{4, 3, 3},
		{0, 3, 0},
		{-1, 3, 0},
	}
	for _, tc := range tests {
		if got := ClampQuantity(tc.requested, tc.ordered); got != tc.want {
			t.Errorf("ClampQuantity(%d, %d) = %d, want %d", tc.requested, tc.ordered, got, tc.want)
		}
	}
}

func TestOrderTotal(t *testing.T) {
	want := money.Cents(3*500 + 2*250)
	if got := OrderTotal(sampleItems()); got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
}
