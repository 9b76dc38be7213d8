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

type ReviewRequest struct {
	Rating  *float64 `json:"rating" binding:"required,min=1,max=5"`
	Comment string   `json:"comment"`
}

// AddReview stores a review for a product and recomputes the product's
// aggregate rating. One review per (user, product); the pre-check catches
// the common case and the unique index catches the race.
func AddReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products/:id/reviews"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
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

		count, err := db.Collection("reviews").CountDocuments(ctx, bson.M{
			"user":    user.ID,
			"product": productID,
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "you have already reviewed this product")
			return
		}

		now := time.Now()
		review := models.Review{
			UserID:    user.ID,
			ProductID: productID,
			Rating:    *req.Rating,
			Comment:   req.Comment,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := db.Collection("reviews").InsertOne(ctx, review); err != nil {
			if isDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "you have already reviewed this product")
				return
			}
			log.Println("[REVIEW] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := recomputeProductAggregate(ctx, db, productID); err != nil {
			log.Println("[REVIEW] [ERROR] aggregate recompute failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[REVIEW] [INFO] review added for product:", productID.Hex())
		c.JSON(http.StatusCreated, gin.H{"message": "review added"})
	}
}

// GetProductReviews lists a product's reviews newest first, with reviewer
// names resolved.
func GetProductReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		reviews, err := loadProductReviews(ctx, db, productID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, reviews)
	}
}

// DeleteReview removes a review. Only the author or an administrator may do
// so; the product aggregate is recomputed afterwards so the cached rating
// never drifts from the stored reviews.
func DeleteReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /reviews/:id"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		err = db.Collection("reviews").FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "review not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if review.UserID != user.ID && !user.IsAdmin() {
			respondWithError(c, http.StatusForbidden, route, "access denied")
			return
		}

		if _, err := db.Collection("reviews").DeleteOne(ctx, bson.M{"_id": reviewID}); err != nil {
			log.Println("[REVIEW] [ERROR] delete failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := recomputeProductAggregate(ctx, db, review.ProductID); err != nil {
			log.Println("[REVIEW] [ERROR] aggregate recompute failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[REVIEW] [INFO] review deleted:", reviewID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
	}
}
