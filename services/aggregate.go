package services

import (
	"math"

	"flowstate-server/models"
)

// AverageRating returns the arithmetic mean of the ratings in a spot's
// review collection, or 0 when there are no reviews. Ratings are never
// stored on the spot; callers recompute this on every read.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// DisplayStars converts an average rating into a filled-star count for
// rendering. Rounds to nearest, ties away from zero, clamped to 0..5.
func DisplayStars(avg float64) int {
	stars := int(math.Round(avg))
	if stars < 0 {
		return 0
	}
	if stars > 5 {
		return 5
	}
	return stars
}

// AuthoredReview is a review annotated with its parent spot, for profile
// views that list everything one user has written.
type AuthoredReview struct {
	models.Review
	SpotID    string `json:"spot_id"`
	SpotName  string `json:"spot_name"`
	SpotImage string `json:"spot_image,omitempty"`
}

// ReviewsByAuthor scans every spot's embedded reviews and collects those
// written by userID. Order is spot iteration order, then in-spot order.
func ReviewsByAuthor(spots []models.StudySpot, userID string) []AuthoredReview {
	var authored []AuthoredReview
	for _, spot := range spots {
		for _, review := range spot.Reviews {
			if review.CreatorID == userID {
				authored = append(authored, AuthoredReview{
					Review:    review,
					SpotID:    spot.ID,
					SpotName:  spot.Name,
					SpotImage: spot.Image,
				})
			}
		}
	}
	return authored
}
