package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product defines the persisted product document. Rating and NumReviews are
// denormalized aggregates recomputed whenever the review set changes; the
// Reviews slice is an index of review ids, not the source of truth.
type Product struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Price        float64              `bson:"price" json:"price"`
	Description  string               `bson:"description" json:"description"`
	Image        string               `bson:"image" json:"image"`
	CategoryID   *primitive.ObjectID  `bson:"category,omitempty" json:"categoryId,omitempty"`
	Category     *Category            `bson:"-" json:"category,omitempty"`
	Brand        string               `bson:"brand,omitempty" json:"brand,omitempty"`
	CountInStock int                  `bson:"countInStock" json:"countInStock"`
	Colors       StringList           `bson:"colors" json:"colors"`
	Sizes        StringList           `bson:"sizes" json:"sizes"`
	Rating       float64              `bson:"rating" json:"rating"`
	NumReviews   int                  `bson:"numReviews" json:"numReviews"`
	Reviews      []primitive.ObjectID `bson:"reviews" json:"reviews"`
	IsFlashSale  bool                 `bson:"isFlashSale" json:"isFlashSale"`
	Discount     float64              `bson:"discount" json:"discount"`
	SaleEnd      *time.Time           `bson:"saleEnd,omitempty" json:"saleEnd,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
