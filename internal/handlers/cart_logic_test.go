package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestMergeCartItemIncrementsExistingLine(t *testing.T) {
	productID := primitive.NewObjectID()

	items := mergeCartItem(nil, productID, 2)
	items = mergeCartItem(items, productID, 3)

	if len(items) != 1 {
		t.Fatalf("expected one line item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestMergeCartItemAppendsNewLine(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	items := mergeCartItem(nil, first, 1)
	items = mergeCartItem(items, second, 4)

	if len(items) != 2 {
		t.Fatalf("expected two line items, got %d", len(items))
	}
	if items[0].Quantity != 1 || items[1].Quantity != 4 {
		t.Fatalf("unexpected quantities: %+v", items)
	}
}

func TestSetCartItemQuantityReplaces(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{{ProductID: productID, Quantity: 2}}

	updated, found := setCartItemQuantity(items, productID, 7)
	if !found {
		t.Fatal("expected product to be found")
	}
	if updated[0].Quantity != 7 {
		t.Fatalf("expected quantity replaced with 7, got %d", updated[0].Quantity)
	}
}

func TestSetCartItemQuantityMissingProduct(t *testing.T) {
	items := []models.CartItem{{ProductID: primitive.NewObjectID(), Quantity: 2}}

	_, found := setCartItemQuantity(items, primitive.NewObjectID(), 1)
	if found {
		t.Fatal("expected missing product to report not found")
	}
}

func TestRemoveCartItem(t *testing.T) {
	keep := primitive.NewObjectID()
	drop := primitive.NewObjectID()
	items := []models.CartItem{
		{ProductID: keep, Quantity: 1},
		{ProductID: drop, Quantity: 2},
	}

	filtered := removeCartItem(items, drop)
	if len(filtered) != 1 {
		t.Fatalf("expected one remaining line, got %d", len(filtered))
	}
	if filtered[0].ProductID != keep {
		t.Fatal("expected the other product to survive removal")
	}
}

func TestRemoveCartItemAbsentProductIsNoOp(t *testing.T) {
	items := []models.CartItem{
		{ProductID: primitive.NewObjectID(), Quantity: 1},
		{ProductID: primitive.NewObjectID(), Quantity: 2},
	}

	filtered := removeCartItem(items, primitive.NewObjectID())
	if len(filtered) != len(items) {
		t.Fatalf("expected cart unchanged, got %d lines", len(filtered))
	}
	for i := range items {
		if filtered[i].ProductID != items[i].ProductID || filtered[i].Quantity != items[i].Quantity {
			t.Fatalf("line %d changed: %+v", i, filtered[i])
		}
	}
}
