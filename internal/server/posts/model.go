package posts

import "time"

type Comment struct {
	ID        string
	Content   string
	CreatorID string
	CreatedAt time.Time
}

type Post struct {
	ID        string
	Category  string
	Title     string
	Price     int
	Content   string
	Files     []string
	Longitude float64
	Latitude  float64
	CreatorID string
	Views     int
	Likes     []string
	Comments  []Comment
	CreatedAt time.Time
}

// Draft is what a user submits to create a post.
type Draft struct {
	Category  string
	Title     string
	Price     int
	Content   string
	Files     []string
	Longitude float64
	Latitude  float64
}

type Query struct {
	Next       string
	Limit      int
	Categories []string
}

// Page is one slice of the feed. NextCursor is EndCursor once nothing
// follows.
type Page struct {
	Posts      []Post
	NextCursor string
}
