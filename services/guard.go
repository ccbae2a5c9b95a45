package services

import "flowstate-server/models"

// Guard holds the injected moderation policy: which user ids may delete any
// spot, and which seeded spot ids may never be deleted at all. Both come
// from configuration, never from literals in code.
type Guard struct {
	admins    map[string]struct{}
	protected map[string]struct{}
}

func NewGuard(adminIDs, protectedSpotIDs []string) *Guard {
	g := &Guard{
		admins:    make(map[string]struct{}, len(adminIDs)),
		protected: make(map[string]struct{}, len(protectedSpotIDs)),
	}
	for _, id := range adminIDs {
		if id != "" {
			g.admins[id] = struct{}{}
		}
	}
	for _, id := range protectedSpotIDs {
		if id != "" {
			g.protected[id] = struct{}{}
		}
	}
	return g
}

func (g *Guard) IsAdmin(userID string) bool {
	_, ok := g.admins[userID]
	return ok
}

// CanDeleteSpot allows the spot's creator or an admin. Protected seed spots
// are refused for everyone, admins included.
func (g *Guard) CanDeleteSpot(actorID string, spot models.StudySpot) bool {
	if actorID == "" {
		return false
	}
	if _, ok := g.protected[spot.ID]; ok {
		return false
	}
	if actorID == spot.CreatorID {
		return true
	}
	return g.IsAdmin(actorID)
}

// CanDeleteReview allows only the review's author. There is no admin
// override for reviews.
func (g *Guard) CanDeleteReview(actorID string, review models.Review) bool {
	return actorID != "" && actorID == review.CreatorID
}
