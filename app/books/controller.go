package books

import (
	"context"
	"net/http"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// BooksController serves /books.
type BooksController struct {
	books *BooksService
}

func NewBooksController(books *BooksService) *BooksController {
	return &BooksController{books: books}
}

func (c *BooksController) FindAll(ctx context.Context) ([]Book, error) {
	return c.books.FindAll(ctx)
}

func (c *BooksController) FindOne(ctx context.Context, id int) (Book, error) {
	return c.books.FindOne(ctx, id)
}

func (c *BooksController) Create(ctx context.Context, res *gohttp.Response, dto CreateBookDto) (Book, error) {
	b, err := c.books.Create(ctx, dto)
	if err != nil {
		return Book{}, err
	}
	res.Status(http.StatusCreated)
	return b, nil
}

func (c *BooksController) Update(ctx context.Context, id int, dto UpdateBookDto) (Book, error) {
	return c.books.Update(ctx, id, dto)
}

func (c *BooksController) Remove(ctx context.Context, id int) (map[string]any, error) {
	if err := c.books.Remove(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "id": id}, nil
}
