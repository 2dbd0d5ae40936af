package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bookstore-front/internal/domain"
)

// DefaultPageSize is the search page size requested when the caller does
// not specify one.
const DefaultPageSize = 20

// SearchOptions narrows a catalog search. Zero values mean "no filter".
type SearchOptions struct {
	SortBy   string
	Status   domain.BookStatus
	Genre    string
	PageSize int
}

// AvailableBooks lists every book currently in stock.
func (c *Client) AvailableBooks(ctx context.Context) ([]domain.Book, error) {
	return c.booksByStatus(ctx, domain.StatusAvailable)
}

// OutOfStockBooks lists books that are listed but cannot be purchased.
func (c *Client) OutOfStockBooks(ctx context.Context) ([]domain.Book, error) {
	return c.booksByStatus(ctx, domain.StatusOutOfStock)
}

// UpcomingBooks lists books announced but not yet released.
func (c *Client) UpcomingBooks(ctx context.Context) ([]domain.Book, error) {
	return c.booksByStatus(ctx, domain.StatusUpcoming)
}

func (c *Client) booksByStatus(ctx context.Context, status domain.BookStatus) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.do(ctx, http.MethodGet, "/books/"+string(status), nil, &books); err != nil {
		return nil, fmt.Errorf("failed to fetch %s books: %w", status, err)
	}
	return books, nil
}

// Genres lists the distinct genres across the catalog.
func (c *Client) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	if err := c.do(ctx, http.MethodGet, "/books/genres", nil, &genres); err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}
	return genres, nil
}

// SearchBooks runs a paginated catalog search. The page argument is
// 1-indexed; the backend expects 0-indexed pages and the translation
// happens here, at the wire boundary.
func (c *Client) SearchBooks(ctx context.Context, query string, page int, opts SearchOptions) (*domain.SearchPage, error) {
	if page < 1 {
		page = 1
	}
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "title"
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page-1))
	params.Set("size", strconv.Itoa(size))
	params.Set("sort", sortBy)
	if opts.Status != "" {
		params.Set("bookStatus", string(opts.Status))
	}
	if opts.Genre != "" {
		params.Set("genre", opts.Genre)
	}

	// The backend reports the total under totalItems or totalElements
	// depending on the endpoint version; accept either.
	var payload struct {
		Content       []domain.Book `json:"content"`
		TotalItems    int           `json:"totalItems"`
		TotalElements int           `json:"totalElements"`
		TotalPages    int           `json:"totalPages"`
	}
	if err := c.do(ctx, http.MethodGet, "/books/search?"+params.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	total := payload.TotalItems
	if total == 0 {
		total = payload.TotalElements
	}
	return &domain.SearchPage{
		Results:    payload.Content,
		TotalCount: total,
		TotalPages: payload.TotalPages,
	}, nil
}
