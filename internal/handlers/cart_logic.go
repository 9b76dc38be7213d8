package handlers

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// mergeCartItem adds quantity to an existing line for the product, or
// appends a new line when the product is not in the cart yet.
func mergeCartItem(items []models.CartItem, productID primitive.ObjectID, quantity int) []models.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, models.CartItem{ProductID: productID, Quantity: quantity})
}

// setCartItemQuantity replaces the quantity of an existing line. The second
// return value reports whether the product was present.
func setCartItemQuantity(items []models.CartItem, productID primitive.ObjectID, quantity int) ([]models.CartItem, bool) {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return items, true
		}
	}
	return items, false
}

// removeCartItem filters out the line for the product. Removing an absent
// product leaves the cart unchanged; it is not an error.
func removeCartItem(items []models.CartItem, productID primitive.ObjectID) []models.CartItem {
	filtered := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == productID {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}
