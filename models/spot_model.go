package models

import "time"

type StudySpot struct {
	ID        string   `json:"id" bson:"_id,omitempty"`
	CreatorID string   `json:"creator_id" bson:"creator_id"`
	Name      string   `json:"name" bson:"name"`
	Location  string   `json:"location" bson:"location"`
	Lat       float64  `json:"lat" bson:"lat"`
	Lng       float64  `json:"lng" bson:"lng"`
	Tags      []string `json:"tags" bson:"tags"`
	Image     string   `json:"image" bson:"image"`
	Reviews   []Review `json:"reviews" bson:"reviews"`
}

// Review lives embedded in its parent spot's document; its id is only
// meaningful together with the spot id. Creator name and picture are
// snapshots taken at write time.
type Review struct {
	ID             string    `json:"id" bson:"id"`
	CreatorID      string    `json:"creator_id" bson:"creator_id"`
	CreatorName    string    `json:"creator_name" bson:"creator_name"`
	CreatorPicture string    `json:"creator_picture,omitempty" bson:"creator_picture"`
	Content        string    `json:"content" bson:"content"`
	Rating         int       `json:"rating" bson:"rating"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
}
