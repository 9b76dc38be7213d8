package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/middleware"
	"backend/internal/models"
)

type cartAddRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required,min=1"`
}

type cartUpdateRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required,min=1"`
}

type cartRemoveRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// findOrCreateCart fetches the user's cart, creating an empty one when none
// exists yet. Get-or-create is idempotent.
func findOrCreateCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == nil {
		return cart, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Cart{}, err
	}

	now := time.Now()
	cart = models.Cart{
		UserID:    userID,
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := db.Collection("carts").InsertOne(ctx, cart)
	if err != nil {
		if isDuplicateKeyError(err) {
			// lost the create race to another request; the cart exists now
			err = db.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
			return cart, err
		}
		return models.Cart{}, err
	}
	cart.ID = result.InsertedID.(primitive.ObjectID)
	return cart, nil
}

// saveCartItems persists the mutated item list.
func saveCartItems(ctx context.Context, db *mongo.Database, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()
	_, err := db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
		"$set": bson.M{
			"items":     cart.Items,
			"updatedAt": cart.UpdatedAt,
		},
	})
	return err
}

// resolveCartItems attaches product documents to the cart's lines so the
// client can render the cart without a second lookup.
func resolveCartItems(ctx context.Context, db *mongo.Database, cart *models.Cart) error {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	byID, err := loadProductsByID(ctx, db, ids)
	if err != nil {
		return err
	}

	for i := range cart.Items {
		if product, ok := byID[cart.Items[i].ProductID]; ok {
			resolved := product
			cart.Items[i].Product = &resolved
		}
	}
	return nil
}

// GetCart returns the caller's cart, creating an empty one on first use.
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := findOrCreateCart(ctx, db, user.ID)
		if err != nil {
			log.Println("[CART] [ERROR] get cart failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := resolveCartItems(ctx, db, &cart); err != nil {
			log.Println("[CART] [ERROR] resolve items failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// AddItem merges a line into the caller's cart: an existing product has its
// quantity incremented by the supplied amount, a new product is appended.
func AddItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/add"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		var req cartAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "product not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cart, err := findOrCreateCart(ctx, db, user.ID)
		if err != nil {
			log.Println("[CART] [ERROR] add item cart lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cart.Items = mergeCartItem(cart.Items, productID, *req.Quantity)

		if err := saveCartItems(ctx, db, &cart); err != nil {
			log.Println("[CART] [ERROR] add item save failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := resolveCartItems(ctx, db, &cart); err != nil {
			log.Println("[CART] [ERROR] resolve items failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[CART] [INFO] item added:", productID.Hex())
		c.JSON(http.StatusCreated, cart)
	}
}

// UpdateItem replaces the quantity of a line already in the cart. A missing
// cart or a product absent from it is a not-found error; the item is never
// silently created.
func UpdateItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/update"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		var req cartUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"user": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "cart not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		items, found := setCartItemQuantity(cart.Items, productID, *req.Quantity)
		if !found {
			respondWithError(c, http.StatusNotFound, route, "product not found in cart")
			return
		}
		cart.Items = items

		if err := saveCartItems(ctx, db, &cart); err != nil {
			log.Println("[CART] [ERROR] update item save failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := resolveCartItems(ctx, db, &cart); err != nil {
			log.Println("[CART] [ERROR] resolve items failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// RemoveItem deletes a line from the cart. Removing a product that is not
// in the cart succeeds and leaves the cart unchanged; only a missing cart
// is an error.
func RemoveItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/remove"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		var req cartRemoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"user": user.ID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "cart not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cart.Items = removeCartItem(cart.Items, productID)

		if err := saveCartItems(ctx, db, &cart); err != nil {
			log.Println("[CART] [ERROR] remove item save failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := resolveCartItems(ctx, db, &cart); err != nil {
			log.Println("[CART] [ERROR] resolve items failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// ClearCart empties the cart's item list. Clearing when no cart exists is a
// silent no-op that still confirms success.
func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/clear"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := db.Collection("carts").UpdateOne(ctx, bson.M{"user": user.ID}, bson.M{
			"$set": bson.M{
				"items":     []models.CartItem{},
				"updatedAt": time.Now(),
			},
		})
		if err != nil {
			log.Println("[CART] [ERROR] clear failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}
