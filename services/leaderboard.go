package services

import (
	"sort"

	"flowstate-server/models"
)

type ReviewerRank struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// RankReviewers derives the reviewer leaderboard from a single scan over
// every spot's embedded reviews. Name comes from the first review seen per
// author, so a later rename never reshuffles existing entries. Sorted by
// count descending; ties keep first-appearance order.
func RankReviewers(spots []models.StudySpot) []ReviewerRank {
	index := make(map[string]int)
	var ranks []ReviewerRank
	for _, spot := range spots {
		for _, review := range spot.Reviews {
			i, seen := index[review.CreatorID]
			if !seen {
				name := review.CreatorName
				if name == "" {
					name = "Anonymous User"
				}
				index[review.CreatorID] = len(ranks)
				ranks = append(ranks, ReviewerRank{UserID: review.CreatorID, Name: name, Count: 1})
				continue
			}
			ranks[i].Count++
		}
	}
	sort.SliceStable(ranks, func(a, b int) bool {
		return ranks[a].Count > ranks[b].Count
	})
	return ranks
}
