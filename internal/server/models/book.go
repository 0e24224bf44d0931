package models

import "time"

type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	PreviewImage *string   `json:"previewImage"`
	AuthorID     string    `json:"authorId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Outline      []Outline `json:"outline,omitempty"`
}

// BookSummary is the dashboard projection of a Book.
type BookSummary struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	PreviewImage *string `json:"previewImage"`
}

// Outline is one heading of a book's outline. Items are listed by Position;
// positions are caller-assigned and may repeat.
type Outline struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Title     string    `json:"title"`
	Level     int       `json:"level"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// PreviewUpload tells the client where to PUT a preview image.
type PreviewUpload struct {
	BookID string    `json:"bookId"`
	Key    string    `json:"key"`
	URL    string    `json:"url"`
	Expiry time.Time `json:"expiresAt"`
}
