package books

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// ── MemoryRepository ─────────────────────────────────────────────────────────

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository(Classics()...)

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.False(t, all[0].CreatedAt.IsZero())

	b, err := r.Create(ctx, CreateBookDto{Title: "Dune", Author: "Frank Herbert", Year: 1965})
	require.NoError(t, err)
	assert.Equal(t, 4, b.ID, "ids continue after the seed")

	b, err = r.Update(ctx, 4, UpdateBookDto{Year: ptr(1966)})
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, 1966, b.Year)

	require.NoError(t, r.Delete(ctx, 2))
	_, err = r.FindOne(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, 2), ErrNotFound)
	_, err = r.Update(ctx, 2, UpdateBookDto{})
	assert.ErrorIs(t, err, ErrNotFound)

	all, _ = r.FindAll(ctx)
	ids := make([]int, len(all))
	for i, b := range all {
		ids[i] = b.ID
	}
	assert.Equal(t, []int{1, 3, 4}, ids)
}

func TestMemoryRepository_FindAllIsACopy(t *testing.T) {
	r := NewMemoryRepository(Classics()...)
	all, _ := r.FindAll(context.Background())
	all[0].Title = "changed"

	b, _ := r.FindOne(context.Background(), 1)
	assert.Equal(t, "The Great Gatsby", b.Title)
}

func TestMemoryRepository_FindAllEmptyIsNotNil(t *testing.T) {
	all, err := NewMemoryRepository().FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestMemoryRepository_ConcurrentCreate(t *testing.T) {
	r := NewMemoryRepository()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Create(context.Background(), CreateBookDto{Title: "t"})
		}()
	}
	wg.Wait()

	all, _ := r.FindAll(context.Background())
	seen := map[int]bool{}
	for _, b := range all {
		seen[b.ID] = true
	}
	assert.Len(t, seen, 50)
}

// ── SQLRepository ────────────────────────────────────────────────────────────

func newMock(t *testing.T, d Dialect) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewSQLRepository(db, d), mock
}

var columns = []string{"id", "title", "author", "year", "created_at"}

func TestDialect_Rebind(t *testing.T) {
	q := "UPDATE books SET title = ?, year = ? WHERE id = ?"
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, "UPDATE books SET title = $1, year = $2 WHERE id = $3", Postgres.rebind(q))

	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.Driver)
	_, err = DialectFor("memory")
	assert.Error(t, err)
}

func TestSQLRepository_Migrate(t *testing.T) {
	r, mock := newMock(t, SQLite)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS books")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, r.Migrate(context.Background()))
}

func TestSQLRepository_FindAll(t *testing.T) {
	r, mock := newMock(t, SQLite)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectBooks + " ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "1984", "George Orwell", 1949, now).
			AddRow(2, "Dune", "", 0, now))

	all, err := r.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Book{
		{ID: 1, Title: "1984", Author: "George Orwell", Year: 1949, CreatedAt: now},
		{ID: 2, Title: "Dune", CreatedAt: now},
	}, all)
}

func TestSQLRepository_FindAllEmpty(t *testing.T) {
	r, mock := newMock(t, SQLite)
	mock.ExpectQuery(regexp.QuoteMeta(selectBooks)).WillReturnRows(sqlmock.NewRows(columns))

	all, err := r.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestSQLRepository_FindOne(t *testing.T) {
	r, mock := newMock(t, Postgres)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectBooks + " WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(7, "Emma", "Jane Austen", 1815, now))
	mock.ExpectQuery(regexp.QuoteMeta(selectBooks + " WHERE id = $1")).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows(columns))

	b, err := r.FindOne(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Emma", b.Title)

	_, err = r.FindOne(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLRepository_Create(t *testing.T) {
	r, mock := newMock(t, Postgres)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO books (title, author, year) VALUES ($1, $2, $3) RETURNING id, created_at")).
		WithArgs("Dune", "Frank Herbert", 1965).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))

	b, err := r.Create(context.Background(), CreateBookDto{Title: "Dune", Author: "Frank Herbert", Year: 1965})
	require.NoError(t, err)
	assert.Equal(t, Book{ID: 11, Title: "Dune", Author: "Frank Herbert", Year: 1965, CreatedAt: now}, b)
}

func TestSQLRepository_Update(t *testing.T) {
	r, mock := newMock(t, SQLite)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectBooks + " WHERE id = ?")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(3, "Old", "A", 1900, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET title = ?, author = ?, year = ? WHERE id = ?")).
		WithArgs("New", "A", 1900, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := r.Update(context.Background(), 3, UpdateBookDto{Title: ptr("New")})
	require.NoError(t, err)
	assert.Equal(t, "New", b.Title)
	assert.Equal(t, 1900, b.Year)
}

func TestSQLRepository_Delete(t *testing.T) {
	r, mock := newMock(t, SQLite)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id = ?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id = ?")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.Delete(context.Background(), 3))
	assert.ErrorIs(t, r.Delete(context.Background(), 4), ErrNotFound)
}

func TestSQLRepository_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	require.NoError(t, NewSQLRepository(db, SQLite).Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
