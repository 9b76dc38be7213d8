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
	"golang.org/x/crypto/bcrypt"

	"backend/internal/middleware"
	"backend/internal/models"
)

// addressPatch distinguishes "clear this field" from "leave unchanged" by
// using pointers; only non-nil fields touch the stored address.
type addressPatch struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
}

type userPatchRequest struct {
	Name     *string       `json:"name"`
	Email    *string       `json:"email"`
	Phone    *string       `json:"phone"`
	Address  *addressPatch `json:"address"`
	Password *string       `json:"password"`
	Role     *string       `json:"role"`
}

// applyUserPatch merges the supplied fields into the user document and
// returns the resulting $set update. Password and role handling is left to
// the callers since profile and admin updates differ there.
func applyUserPatch(user *models.User, patch userPatchRequest) bson.M {
	update := bson.M{}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
		update["name"] = user.Name
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
		update["email"] = user.Email
	}
	if patch.Phone != nil {
		user.Phone = strings.TrimSpace(*patch.Phone)
		update["phone"] = user.Phone
	}
	if patch.Address != nil {
		if patch.Address.Street != nil {
			user.Address.Street = *patch.Address.Street
		}
		if patch.Address.City != nil {
			user.Address.City = *patch.Address.City
		}
		if patch.Address.State != nil {
			user.Address.State = *patch.Address.State
		}
		if patch.Address.PostalCode != nil {
			user.Address.PostalCode = *patch.Address.PostalCode
		}
		if patch.Address.Country != nil {
			user.Address.Country = *patch.Address.Country
		}
		update["address"] = user.Address
	}

	return update
}

// GetProfile returns the authenticated user's details, password excluded.
func GetProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateProfile applies a partial update to the caller's own record. A
// supplied password is re-hashed; role changes are not accepted here.
func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/profile"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		var patch userPatchRequest
		if err := c.ShouldBindJSON(&patch); err != nil {
			respondValidationError(c, err)
			return
		}

		update := applyUserPatch(&user, patch)

		if patch.Password != nil && strings.TrimSpace(*patch.Password) != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
			if err != nil {
				log.Println("[USER] [ERROR] profile password hash failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
				return
			}
			update["passwordHash"] = string(hash)
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		user.UpdatedAt = time.Now()
		update["updatedAt"] = user.UpdatedAt

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.User
		err := db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}
		if err != nil {
			if isDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "email already in use")
				return
			}
			log.Println("[USER] [ERROR] profile update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[USER] [INFO] profile updated:", updated.Email)
		c.JSON(http.StatusOK, updated)
	}
}

// GetUsers lists every user account. Admin only.
func GetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("users").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

// GetUserByID returns any user's details. Admin only.
func GetUserByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// UpdateUserByID applies a partial update to any user, including the role.
// Admin only. Password changes go through the profile endpoint instead.
func UpdateUserByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var patch userPatchRequest
		if err := c.ShouldBindJSON(&patch); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		update := applyUserPatch(&user, patch)

		if patch.Role != nil {
			role := strings.TrimSpace(*patch.Role)
			if role != models.RoleUser && role != models.RoleAdmin {
				respondWithError(c, http.StatusBadRequest, route, "invalid role")
				return
			}
			update["role"] = role
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		update["updatedAt"] = time.Now()

		var updated models.User
		err = db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}
		if err != nil {
			if isDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "email already in use")
				return
			}
			log.Println("[USER] [ERROR] admin update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[USER] [INFO] user updated by admin:", updated.Email)
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteUser removes a user account. Carts and orders keep their references
// to the deleted user.
func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		log.Println("[USER] [INFO] user deleted:", id.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "user removed"})
	}
}
