package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a client's rating of a completed order's seller/listing pair.
// A reviewer has at most one live review per listing; earlier reviews are
// kept with IsOldReview set and excluded from every aggregate.
type Review struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	PostID              uuid.UUID `json:"postId" db:"post_id"`
	SellerID            uuid.UUID `json:"sellerId" db:"seller_id"`
	ReviewerID          uuid.UUID `json:"reviewerId" db:"reviewer_id"`
	Rating              float64   `json:"rating" db:"rating"`
	ServiceAsDescribed  float64   `json:"serviceAsDescribed" db:"service_as_described"`
	SellerCommunication float64   `json:"sellerCommunication" db:"seller_communication"`
	ServiceDelivery     float64   `json:"serviceDelivery" db:"service_delivery"`
	Body                string    `json:"body" db:"body"`
	IsOldReview         bool      `json:"isOldReview" db:"is_old_review"`
	FoundHelpfulCount   int       `json:"foundHelpfulCount" db:"found_helpful_count"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
}

// ReviewRatings bundles the component scores submitted with a review.
type ReviewRatings struct {
	Rating              float64 `json:"rating"`
	ServiceAsDescribed  float64 `json:"serviceAsDescribed"`
	SellerCommunication float64 `json:"sellerCommunication"`
	ServiceDelivery     float64 `json:"serviceDelivery"`
}

// RatingSummary holds arithmetic means over the live reviews of one
// (post, seller) pair. All fields are zero when no reviews exist.
type RatingSummary struct {
	ReviewCount         int     `json:"reviewCount"`
	Rating              float64 `json:"rating"`
	ServiceAsDescribed  float64 `json:"serviceAsDescribed"`
	SellerCommunication float64 `json:"sellerCommunication"`
	ServiceDelivery     float64 `json:"serviceDelivery"`
}

// StarHistogram is a five-bucket count of live reviews keyed by the integer
// part of the rating. The buckets sum to the total live review count.
type StarHistogram struct {
	One   int `json:"1"`
	Two   int `json:"2"`
	Three int `json:"3"`
	Four  int `json:"4"`
	Five  int `json:"5"`
}

// Total returns the sum of all buckets.
func (h StarHistogram) Total() int {
	return h.One + h.Two + h.Three + h.Four + h.Five
}
