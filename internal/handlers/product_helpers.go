package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// resolveProductCategories attaches category documents to products that
// reference one. A single $in query covers the whole batch.
func resolveProductCategories(ctx context.Context, db *mongo.Database, products []models.Product) error {
	ids := make([]primitive.ObjectID, 0, len(products))
	seen := make(map[primitive.ObjectID]bool, len(products))
	for _, p := range products {
		if p.CategoryID != nil && !seen[*p.CategoryID] {
			seen[*p.CategoryID] = true
			ids = append(ids, *p.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	cursor, err := db.Collection("categories").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]models.Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}

	for i := range products {
		if products[i].CategoryID == nil {
			continue
		}
		if cat, ok := byID[*products[i].CategoryID]; ok {
			resolved := cat
			products[i].Category = &resolved
		}
	}
	return nil
}

// loadProductReviews returns a product's reviews newest first with reviewer
// names resolved.
func loadProductReviews(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.Collection("reviews").Find(ctx, bson.M{"product": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	if err := resolveReviewUserNames(ctx, db, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func resolveReviewUserNames(ctx context.Context, db *mongo.Database, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(reviews))
	seen := make(map[primitive.ObjectID]bool, len(reviews))
	for _, r := range reviews {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}

	cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return err
	}

	nameByID := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		nameByID[u.ID] = u.Name
	}

	for i := range reviews {
		reviews[i].UserName = nameByID[reviews[i].UserID]
	}
	return nil
}

// loadProductsByID fetches a batch of products keyed by id. Used by the cart
// and order read paths to resolve line-item details inline.
func loadProductsByID(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	byID := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}
