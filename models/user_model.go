package models

// Task is a personal productivity item. The server stores the owner's list
// verbatim and never interprets it.
type Task struct {
	ID        string `json:"id" bson:"id"`
	Text      string `json:"text" bson:"text"`
	Completed bool   `json:"completed" bson:"completed"`
	Estimate  int    `json:"estimate" bson:"estimate"`
}

type User struct {
	ID              string   `json:"id" bson:"_id,omitempty"`
	ProviderID      string   `json:"-" bson:"provider_id"`
	Name            string   `json:"name" bson:"name"`
	Email           string   `json:"email,omitempty" bson:"email"`
	Bio             string   `json:"bio" bson:"bio"`
	ShowEmail       bool     `json:"show_email" bson:"show_email"`
	Picture         string   `json:"picture" bson:"picture"`
	BookmarkedSpots []string `json:"bookmarked_spots" bson:"bookmarked_spots"`
	Following       []string `json:"following" bson:"following"`
	Followers       []string `json:"followers" bson:"followers"`
	Tasks           []Task   `json:"tasks" bson:"tasks"`
	// ReviewCount is a display-only cache bumped after review writes. The
	// authoritative count is always derived by scanning spot reviews.
	ReviewCount int `json:"review_count" bson:"review_count"`
}
