package books

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// RepositoryToken is bound to the configured Repository.
const RepositoryToken = "BOOKS_REPOSITORY"

// ErrNotFound is returned for an unknown book id.
var ErrNotFound = errors.New("books: not found")

// Repository persists books.
type Repository interface {
	FindAll(ctx context.Context) ([]Book, error)
	FindOne(ctx context.Context, id int) (Book, error)
	Create(ctx context.Context, dto CreateBookDto) (Book, error)
	Update(ctx context.Context, id int, dto UpdateBookDto) (Book, error)
	Delete(ctx context.Context, id int) error
}

// MemoryRepository keeps books in a slice ordered by id.
type MemoryRepository struct {
	mu     sync.RWMutex
	books  []Book
	nextID int
	now    func() time.Time
}

// NewMemoryRepository returns a repository holding seed.
func NewMemoryRepository(seed ...Book) *MemoryRepository {
	r := &MemoryRepository{nextID: 1, now: time.Now}
	for _, b := range seed {
		if b.CreatedAt.IsZero() {
			b.CreatedAt = r.now().UTC()
		}
		r.books = append(r.books, b)
		r.nextID = max(r.nextID, b.ID+1)
	}
	return r
}

// Classics is the demo seed data.
func Classics() []Book {
	return []Book{
		{ID: 1, Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Year: 1925},
		{ID: 2, Title: "1984", Author: "George Orwell", Year: 1949},
		{ID: 3, Title: "To Kill a Mockingbird", Author: "Harper Lee", Year: 1960},
	}
}

func (r *MemoryRepository) FindAll(context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Book{}, r.books...), nil
}

func (r *MemoryRepository) FindOne(_ context.Context, id int) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return Book{}, ErrNotFound
	}
	return r.books[i], nil
}

func (r *MemoryRepository) Create(_ context.Context, dto CreateBookDto) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := Book{ID: r.nextID, Title: dto.Title, Author: dto.Author, Year: dto.Year, CreatedAt: r.now().UTC()}
	r.nextID++
	r.books = append(r.books, b)
	return b, nil
}

func (r *MemoryRepository) Update(_ context.Context, id int, dto UpdateBookDto) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return Book{}, ErrNotFound
	}
	r.books[i] = dto.apply(r.books[i])
	return r.books[i], nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return ErrNotFound
	}
	r.books = slices.Delete(r.books, i, i+1)
	return nil
}

func (r *MemoryRepository) index(id int) int {
	return slices.IndexFunc(r.books, func(b Book) bool { return b.ID == id })
}
