package model

import "time"

// NewsPost - новость для пользователей.
// Хранится в таблице news_posts.
type NewsPost struct {
	ID        int64
	Title     string
	Body      string
	HasImage  bool
	CreatedAt time.Time
}
