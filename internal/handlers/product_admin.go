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
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type ProductCreateRequest struct {
	Name         string     `json:"name" binding:"required"`
	Price        *float64   `json:"price" binding:"required"`
	Description  string     `json:"description" binding:"required"`
	Image        string     `json:"image" binding:"required"`
	Category     string     `json:"category"`
	Brand        string     `json:"brand"`
	CountInStock int        `json:"countInStock" binding:"omitempty,min=0"`
	Colors       []string   `json:"colors"`
	Sizes        []string   `json:"sizes"`
	IsFlashSale  bool       `json:"isFlashSale"`
	Discount     float64    `json:"discount"`
	SaleEnd      *time.Time `json:"saleEnd"`
}

// ProductUpdateRequest is a patch: only non-nil fields are applied, so a
// zero price or an empty brand can be set deliberately.
type ProductUpdateRequest struct {
	Name         *string    `json:"name"`
	Price        *float64   `json:"price"`
	Description  *string    `json:"description"`
	Image        *string    `json:"image"`
	Category     *string    `json:"category"`
	Brand        *string    `json:"brand"`
	CountInStock *int       `json:"countInStock"`
	Colors       *[]string  `json:"colors"`
	Sizes        *[]string  `json:"sizes"`
	IsFlashSale  *bool      `json:"isFlashSale"`
	Discount     *float64   `json:"discount"`
	SaleEnd      *time.Time `json:"saleEnd"`
}

// CreateProduct adds a catalog entry. Admin only.
func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products"
		defer handlePanic(c, route)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if *req.Price < 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must not be negative")
			return
		}
		if req.CountInStock < 0 {
			respondWithError(c, http.StatusBadRequest, route, "countInStock must not be negative")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var categoryID *primitive.ObjectID
		if category := strings.TrimSpace(req.Category); category != "" {
			id, err := primitive.ObjectIDFromHex(category)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid category id")
				return
			}
			if err := db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
				if err == mongo.ErrNoDocuments {
					respondWithError(c, http.StatusNotFound, route, "category not found")
					return
				}
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			categoryID = &id
		}

		now := time.Now()
		product := models.Product{
			Name:         strings.TrimSpace(req.Name),
			Price:        *req.Price,
			Description:  req.Description,
			Image:        req.Image,
			CategoryID:   categoryID,
			Brand:        strings.TrimSpace(req.Brand),
			CountInStock: req.CountInStock,
			Colors:       emptyIfNil(req.Colors),
			Sizes:        emptyIfNil(req.Sizes),
			Reviews:      []primitive.ObjectID{},
			IsFlashSale:  req.IsFlashSale,
			Discount:     req.Discount,
			SaleEnd:      req.SaleEnd,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		result, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] create failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		product.ID = result.InsertedID.(primitive.ObjectID)

		single := []models.Product{product}
		if err := resolveProductCategories(ctx, db, single); err != nil {
			log.Printf("[%s] category resolve failed: %v", route, err)
		}

		log.Println("[PRODUCT] [INFO] product created:", product.ID.Hex())
		c.JSON(http.StatusCreated, single[0])
	}
}

// UpdateProduct applies supplied fields only. Admin only.
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}
		if req.Price != nil {
			if *req.Price < 0 {
				respondWithError(c, http.StatusBadRequest, route, "price must not be negative")
				return
			}
			update["price"] = *req.Price
		}
		if req.Description != nil {
			update["description"] = *req.Description
		}
		if req.Image != nil {
			update["image"] = *req.Image
		}
		if req.Brand != nil {
			update["brand"] = strings.TrimSpace(*req.Brand)
		}
		if req.CountInStock != nil {
			if *req.CountInStock < 0 {
				respondWithError(c, http.StatusBadRequest, route, "countInStock must not be negative")
				return
			}
			update["countInStock"] = *req.CountInStock
		}
		if req.Colors != nil {
			update["colors"] = models.StringList(*req.Colors)
		}
		if req.Sizes != nil {
			update["sizes"] = models.StringList(*req.Sizes)
		}
		if req.IsFlashSale != nil {
			update["isFlashSale"] = *req.IsFlashSale
		}
		if req.Discount != nil {
			update["discount"] = *req.Discount
		}
		if req.SaleEnd != nil {
			update["saleEnd"] = *req.SaleEnd
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if req.Category != nil {
			category := strings.TrimSpace(*req.Category)
			if category == "" {
				update["category"] = nil
			} else {
				categoryID, err := primitive.ObjectIDFromHex(category)
				if err != nil {
					respondWithError(c, http.StatusBadRequest, route, "invalid category id")
					return
				}
				if err := db.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID}).Err(); err != nil {
					if err == mongo.ErrNoDocuments {
						respondWithError(c, http.StatusNotFound, route, "category not found")
						return
					}
					respondWithError(c, http.StatusInternalServerError, route, "db error")
					return
				}
				update["category"] = categoryID
			}
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		var updated models.Product
		err = db.Collection("products").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			log.Println("[PRODUCT] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		single := []models.Product{updated}
		if err := resolveProductCategories(ctx, db, single); err != nil {
			log.Printf("[%s] category resolve failed: %v", route, err)
		}

		log.Println("[PRODUCT] [INFO] product updated:", id.Hex())
		c.JSON(http.StatusOK, single[0])
	}
}

// DeleteProduct removes a product. Admin only. Reviews referencing the
// product remain in place.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		log.Println("[PRODUCT] [INFO] product deleted:", id.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
	}
}

func emptyIfNil(values []string) models.StringList {
	if values == nil {
		return models.StringList{}
	}
	return models.StringList(values)
}
