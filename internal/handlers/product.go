package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// GetProducts lists the catalog with optional category, keyword and
// flashSale query filters.
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		filter := bson.M{}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			categoryID, err := primitive.ObjectIDFromHex(category)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid category id")
				return
			}
			filter["category"] = categoryID
		}

		if c.Query("flashSale") == "true" {
			filter["isFlashSale"] = true
		}

		if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
			filter["name"] = bson.M{"$regex": keyword, "$options": "i"}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		if err := resolveProductCategories(ctx, db, products); err != nil {
			log.Printf("[%s] category resolve failed: %v", route, err)
		}

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, products)
	}
}

// GetProductByID returns a single product with its category and reviews
// (including reviewer names) resolved.
func GetProductByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		single := []models.Product{product}
		if err := resolveProductCategories(ctx, db, single); err != nil {
			log.Printf("[%s] category resolve failed: %v", route, err)
		}
		product = single[0]

		reviews, err := loadProductReviews(ctx, db, product.ID)
		if err != nil {
			log.Printf("[%s] review resolve failed: %v", route, err)
			reviews = []models.Review{}
		}

		c.JSON(http.StatusOK, gin.H{
			"product": product,
			"reviews": reviews,
		})
	}
}
