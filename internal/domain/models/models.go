package models

import (
	"reviewhub/proj/internal/domain/fields"
	"time"
)

type User struct {
	ID               int64       `json:"-" db:"id"`
	Username         string      `json:"username" db:"username"`
	Email            string      `json:"email" db:"email"`
	FirstName        string      `json:"first_name" db:"first_name"`
	LastName         string      `json:"last_name" db:"last_name"`
	Bio              string      `json:"bio" db:"bio"`
	Role             fields.Role `json:"role" db:"role"`
	IsSuperuser      bool        `json:"-" db:"is_superuser"`
	ConfirmationCode *int        `json:"-" db:"confirmation_code"`
	CreatedAt        time.Time   `json:"-" db:"created_at"`
}

// AnonymousUser marks an unauthenticated request in the request context.
var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser || u == nil
}

type Category struct {
	ID   int64  `json:"-" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

type Genre struct {
	ID   int64  `json:"-" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

type Title struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Year        int32     `json:"year" db:"year"`
	Description *string   `json:"description" db:"description"`
	Category    *Category `json:"category" db:"-"`
	Genres      []Genre   `json:"genre" db:"-"`
	// Rating is the mean of current review scores, recomputed on
	// every read. nil means the title has no reviews yet.
	Rating *float64 `json:"rating" db:"-"`
}

type Review struct {
	ID       int64     `json:"id" db:"id"`
	TitleID  int64     `json:"-" db:"title_id"`
	AuthorID int64     `json:"-" db:"author_id"`
	Author   string    `json:"author" db:"author"`
	Text     string    `json:"text" db:"text"`
	Score    int       `json:"score" db:"score"`
	PubDate  time.Time `json:"pub_date" db:"pub_date"`
}

type Comment struct {
	ID       int64     `json:"id" db:"id"`
	ReviewID int64     `json:"-" db:"review_id"`
	AuthorID int64     `json:"-" db:"author_id"`
	Author   string    `json:"author" db:"author"`
	Text     string    `json:"text" db:"text"`
	PubDate  time.Time `json:"pub_date" db:"pub_date"`
}
