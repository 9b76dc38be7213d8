package handlers

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

var errEmptyCart = errors.New("cart is empty")

type missingProductError struct {
	ProductID primitive.ObjectID
}

func (e missingProductError) Error() string {
	return "product no longer available"
}

// buildOrderItems snapshots resolved cart lines into immutable order items,
// capturing each product's current price, and returns the order total
// Σ(price × quantity). Every cart line must carry its resolved product;
// a dangling reference aborts the order.
func buildOrderItems(items []models.CartItem) ([]models.OrderItem, float64, error) {
	if len(items) == 0 {
		return nil, 0, errEmptyCart
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	total := 0.0
	for _, item := range items {
		if item.Product == nil {
			return nil, 0, missingProductError{ProductID: item.ProductID}
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
		})
		total += item.Product.Price * float64(item.Quantity)
	}
	return orderItems, total, nil
}
