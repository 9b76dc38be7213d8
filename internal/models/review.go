package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review stores user feedback for a product. A compound unique index on
// (user, product) guarantees at most one review per pair.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	ProductID primitive.ObjectID `bson:"product" json:"productId"`
	Rating    float64            `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	UserName  string             `bson:"-" json:"userName,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
