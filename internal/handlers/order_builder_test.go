package handlers

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func resolvedCartItem(price float64, quantity int) models.CartItem {
	id := primitive.NewObjectID()
	return models.CartItem{
		ProductID: id,
		Quantity:  quantity,
		Product:   &models.Product{ID: id, Price: price},
	}
}

func TestBuildOrderItemsEmptyCart(t *testing.T) {
	_, _, err := buildOrderItems(nil)
	if !errors.Is(err, errEmptyCart) {
		t.Fatalf("expected errEmptyCart, got %v", err)
	}

	_, _, err = buildOrderItems([]models.CartItem{})
	if !errors.Is(err, errEmptyCart) {
		t.Fatalf("expected errEmptyCart for zero items, got %v", err)
	}
}

func TestBuildOrderItemsSnapshotsPrices(t *testing.T) {
	items := []models.CartItem{
		resolvedCartItem(19.99, 2),
		resolvedCartItem(5.00, 1),
		resolvedCartItem(0, 3),
	}

	orderItems, total, err := buildOrderItems(items)
	if err != nil {
		t.Fatalf("buildOrderItems returned error: %v", err)
	}
	if len(orderItems) != len(items) {
		t.Fatalf("expected %d order items, got %d", len(items), len(orderItems))
	}

	for i, item := range orderItems {
		if item.Price != items[i].Product.Price {
			t.Fatalf("item %d: expected snapshot price %v, got %v", i, items[i].Product.Price, item.Price)
		}
		if item.Quantity != items[i].Quantity {
			t.Fatalf("item %d: expected quantity %d, got %d", i, items[i].Quantity, item.Quantity)
		}
		if item.ProductID != items[i].ProductID {
			t.Fatalf("item %d: product reference changed", i)
		}
	}

	want := 19.99*2 + 5.00*1 + 0*3
	if total != want {
		t.Fatalf("expected total %v, got %v", want, total)
	}
}

func TestBuildOrderItemsTotalIsSumOfLineTotals(t *testing.T) {
	tests := []struct {
		name  string
		items []models.CartItem
		want  float64
	}{
		{"single line", []models.CartItem{resolvedCartItem(10, 3)}, 30},
		{"free items", []models.CartItem{resolvedCartItem(0, 5)}, 0},
		{"mixed", []models.CartItem{resolvedCartItem(2.5, 2), resolvedCartItem(7, 1)}, 12},
	}

	for _, tt := range tests {
		_, total, err := buildOrderItems(tt.items)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if total != tt.want {
			t.Fatalf("%s: expected total %v, got %v", tt.name, tt.want, total)
		}
	}
}

func TestBuildOrderItemsUnresolvedProduct(t *testing.T) {
	items := []models.CartItem{
		resolvedCartItem(10, 1),
		{ProductID: primitive.NewObjectID(), Quantity: 2},
	}

	_, _, err := buildOrderItems(items)
	var missing missingProductError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missingProductError, got %v", err)
	}
	if missing.ProductID != items[1].ProductID {
		t.Fatal("expected error to carry the dangling product reference")
	}
}
