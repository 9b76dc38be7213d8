package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/middleware"
	"backend/internal/models"
)

type createOrderRequest struct {
	PaymentMethod   string         `json:"paymentMethod" binding:"required"`
	ShippingAddress models.Address `json:"shippingAddress"`
}

type orderStatusRequest struct {
	IsPaid        *bool                 `json:"isPaid"`
	PaidAt        *time.Time            `json:"paidAt"`
	IsDelivered   *bool                 `json:"isDelivered"`
	DeliveredAt   *time.Time            `json:"deliveredAt"`
	PaymentResult *models.PaymentResult `json:"paymentResult"`
}

// CreateOrder snapshots the caller's cart into an immutable order and then
// empties the cart. This is the only operation that treats an empty or
// missing cart as an error.
func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"user": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusBadRequest, route, "cart is empty")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := resolveCartItems(ctx, db, &cart); err != nil {
			log.Println("[ORDER] [ERROR] resolve cart failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		orderItems, total, err := buildOrderItems(cart.Items)
		if err != nil {
			var missing missingProductError
			if errors.As(err, &missing) {
				log.Println("[ORDER] [ERROR] cart references missing product:", missing.ProductID.Hex())
				respondWithError(c, http.StatusBadRequest, route, missing.Error())
				return
			}
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		now := time.Now()
		order := models.Order{
			UserID:          user.ID,
			OrderItems:      orderItems,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			TotalPrice:      total,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		result, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		order.ID = result.InsertedID.(primitive.ObjectID)

		// empty the source cart so cart and order never double-count; the
		// cart document itself stays
		cart.Items = []models.CartItem{}
		if err := saveCartItems(ctx, db, &cart); err != nil {
			log.Println("[ORDER] [ERROR] cart clear failed after order", order.ID.Hex(), ":", err)
		}

		log.Println("[ORDER] [INFO] order created:", order.ID.Hex())
		c.JSON(http.StatusCreated, order)
	}
}

// resolveOrders attaches product details to order lines and the owner's
// name and email to each order.
func resolveOrders(ctx context.Context, db *mongo.Database, orders []models.Order) error {
	productIDs := make([]primitive.ObjectID, 0)
	userIDs := make([]primitive.ObjectID, 0)
	seenProducts := make(map[primitive.ObjectID]bool)
	seenUsers := make(map[primitive.ObjectID]bool)
	for _, order := range orders {
		for _, item := range order.OrderItems {
			if !seenProducts[item.ProductID] {
				seenProducts[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
		if !seenUsers[order.UserID] {
			seenUsers[order.UserID] = true
			userIDs = append(userIDs, order.UserID)
		}
	}

	productByID, err := loadProductsByID(ctx, db, productIDs)
	if err != nil {
		return err
	}

	userByID := make(map[primitive.ObjectID]models.User, len(userIDs))
	if len(userIDs) > 0 {
		cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			return err
		}
		for _, u := range users {
			userByID[u.ID] = u
		}
	}

	for i := range orders {
		for j := range orders[i].OrderItems {
			if product, ok := productByID[orders[i].OrderItems[j].ProductID]; ok {
				resolved := product
				orders[i].OrderItems[j].Product = &resolved
			}
		}
		if owner, ok := userByID[orders[i].UserID]; ok {
			orders[i].User = &models.OrderUser{
				ID:    owner.ID,
				Name:  owner.Name,
				Email: owner.Email,
			}
		}
	}
	return nil
}

// GetMyOrders returns all orders owned by the caller.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/mine"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"user": user.ID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		if err := resolveOrders(ctx, db, orders); err != nil {
			log.Printf("[%s] resolve failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderByID returns a single order. The caller must own the order or
// hold the administrator role.
func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.UserID != user.ID && !user.IsAdmin() {
			respondWithError(c, http.StatusForbidden, route, "access denied")
			return
		}

		single := []models.Order{order}
		if err := resolveOrders(ctx, db, single); err != nil {
			log.Printf("[%s] resolve failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, single[0])
	}
}

// GetAllOrders lists every order, unfiltered. Admin only.
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		if err := resolveOrders(ctx, db, orders); err != nil {
			log.Printf("[%s] resolve failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// UpdateOrderStatus applies a partial update to payment and delivery
// fields. Admin only. Paid and delivered are independent flags; no
// transition graph is enforced.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /orders/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.IsPaid != nil {
			update["isPaid"] = *req.IsPaid
		}
		if req.PaidAt != nil {
			update["paidAt"] = *req.PaidAt
		}
		if req.IsDelivered != nil {
			update["isDelivered"] = *req.IsDelivered
		}
		if req.DeliveredAt != nil {
			update["deliveredAt"] = *req.DeliveredAt
		}
		if req.PaymentResult != nil {
			update["paymentResult"] = *req.PaymentResult
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] order status updated:", id.Hex())
		c.JSON(http.StatusOK, updated)
	}
}
