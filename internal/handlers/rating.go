package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// averageRating returns the arithmetic mean of the given ratings, 0 when
// there are none.
func averageRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// recomputeProductAggregate re-derives the product's review index, count
// and mean rating from the reviews collection. The full re-scan costs
// O(review count) per call but can never drift from the true mean the way
// an incrementally maintained average can. Both review insertion and
// deletion run the same recompute.
func recomputeProductAggregate(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) error {
	cursor, err := db.Collection("reviews").Find(ctx, bson.M{"product": productID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(reviews))
	ratings := make([]float64, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
		ratings = append(ratings, r.Rating)
	}

	_, err = db.Collection("products").UpdateByID(ctx, productID, bson.M{
		"$set": bson.M{
			"reviews":    ids,
			"numReviews": len(ids),
			"rating":     averageRating(ratings),
			"updatedAt":  time.Now(),
		},
	})
	return err
}
