package models

import "time"

// Block is an ordered content element of a page (link, text, music, ...).
type Block struct {
	ID        string         `json:"id" bson:"_id"`
	PageID    string         `json:"page_id" bson:"page_id"`
	BlockType string         `json:"block_type" bson:"block_type"`
	Content   map[string]any `json:"content" bson:"content"`
	Order     int            `json:"order" bson:"order"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}

type Event struct {
	ID          string    `json:"id" bson:"_id"`
	PageID      string    `json:"page_id" bson:"page_id"`
	Title       string    `json:"title" bson:"title"`
	Date        string    `json:"date" bson:"date"`
	Description string    `json:"description" bson:"description"`
	ButtonText  string    `json:"button_text" bson:"button_text"`
	ButtonURL   string    `json:"button_url" bson:"button_url"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type Showcase struct {
	ID         string    `json:"id" bson:"_id"`
	PageID     string    `json:"page_id" bson:"page_id"`
	Title      string    `json:"title" bson:"title"`
	Cover      string    `json:"cover,omitempty" bson:"cover,omitempty"`
	Price      string    `json:"price" bson:"price"`
	ButtonText string    `json:"button_text" bson:"button_text"`
	ButtonURL  string    `json:"button_url" bson:"button_url"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// PageSnapshot is the full public representation of a page as pushed to live viewers.
type PageSnapshot struct {
	Page      Page       `json:"page"`
	Blocks    []Block    `json:"blocks"`
	Events    []Event    `json:"events"`
	Showcases []Showcase `json:"showcases"`
	Analytics Analytics  `json:"analytics"`
}
