package books

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// BooksService holds the book use cases and maps repository errors to
// HTTP exceptions.
type BooksService struct {
	repo   Repository
	logger *zap.Logger
}

func NewBooksService(repo Repository, logger *zap.Logger) *BooksService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BooksService{repo: repo, logger: logger.Named("books")}
}

func (s *BooksService) FindAll(ctx context.Context) ([]Book, error) {
	s.logger.Debug("finding all books")
	return s.repo.FindAll(ctx)
}

func (s *BooksService) FindOne(ctx context.Context, id int) (Book, error) {
	s.logger.Debug("finding book", zap.Int("id", id))
	b, err := s.repo.FindOne(ctx, id)
	return b, notFound(id, err)
}

func (s *BooksService) Create(ctx context.Context, dto CreateBookDto) (Book, error) {
	s.logger.Info("creating book", zap.String("title", dto.Title))
	return s.repo.Create(ctx, dto)
}

func (s *BooksService) Update(ctx context.Context, id int, dto UpdateBookDto) (Book, error) {
	s.logger.Info("updating book", zap.Int("id", id))
	b, err := s.repo.Update(ctx, id, dto)
	return b, notFound(id, err)
}

func (s *BooksService) Remove(ctx context.Context, id int) error {
	s.logger.Info("deleting book", zap.Int("id", id))
	return notFound(id, s.repo.Delete(ctx, id))
}

func notFound(id int, err error) error {
	if errors.Is(err, ErrNotFound) {
		return gohttp.NotFound(fmt.Sprintf("Book with id %d not found", id))
	}
	return err
}
