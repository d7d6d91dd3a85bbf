package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3"
)

// Dialect covers the SQL differences between the supported drivers.
type Dialect struct {
	Driver     string
	CreateDDL  string
	positional bool
}

var (
	SQLite = Dialect{
		Driver: "sqlite3",
		CreateDDL: `CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	}
	Postgres = Dialect{
		Driver: "pgx",
		CreateDDL: `CREATE TABLE IF NOT EXISTS books (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		positional: true,
	}
)

// DialectFor maps a DB_DRIVER value to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return SQLite, nil
	case "postgres":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("books: no SQL dialect for driver %q", driver)
}

// rebind rewrites ? placeholders to $n for positional dialects.
func (d Dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLRepository stores books in a SQL database.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL opens dsn with the dialect's driver.
func OpenSQL(ctx context.Context, d Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("books: open %s: %w", d.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("books: ping %s: %w", d.Driver, err)
	}
	return NewSQLRepository(db, d), nil
}

func NewSQLRepository(db *sql.DB, d Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: d}
}

const selectBooks = "SELECT id, title, author, year, created_at FROM books"

// Migrate creates the books table if it does not exist.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.CreateDDL); err != nil {
		return fmt.Errorf("books: migrate: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindAll(ctx context.Context) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, selectBooks+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("books: list: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("books: list: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLRepository) FindOne(ctx context.Context, id int) (Book, error) {
	var b Book
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(selectBooks+" WHERE id = ?"), id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, fmt.Errorf("books: find %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLRepository) Create(ctx context.Context, dto CreateBookDto) (Book, error) {
	b := Book{Title: dto.Title, Author: dto.Author, Year: dto.Year}
	err := r.db.QueryRowContext(ctx,
		r.dialect.rebind("INSERT INTO books (title, author, year) VALUES (?, ?, ?) RETURNING id, created_at"),
		dto.Title, dto.Author, dto.Year,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return Book{}, fmt.Errorf("books: create: %w", err)
	}
	return b, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int, dto UpdateBookDto) (Book, error) {
	b, err := r.FindOne(ctx, id)
	if err != nil {
		return Book{}, err
	}
	b = dto.apply(b)
	_, err = r.db.ExecContext(ctx,
		r.dialect.rebind("UPDATE books SET title = ?, author = ?, year = ? WHERE id = ?"),
		b.Title, b.Author, b.Year, id,
	)
	if err != nil {
		return Book{}, fmt.Errorf("books: update %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind("DELETE FROM books WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("books: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("books: delete %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database handle.
func (r *SQLRepository) Close() error { return r.db.Close() }
