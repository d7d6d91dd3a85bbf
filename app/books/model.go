package books

import "time"

type Book struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Year      int       `json:"year,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateBookDto struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
}

// UpdateBookDto is a partial update; nil fields are left unchanged.
type UpdateBookDto struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   *int    `json:"year"`
}

func (d UpdateBookDto) apply(b Book) Book {
	if d.Title != nil {
		b.Title = *d.Title
	}
	if d.Author != nil {
		b.Author = *d.Author
	}
	if d.Year != nil {
		b.Year = *d.Year
	}
	return b
}
