package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bookstore-front/internal/api"
	"bookstore-front/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultStaleAfter is how long a cached catalog section stays fresh.
	DefaultStaleAfter = 5 * time.Minute

	// DefaultSearchDebounce collapses bursts of search input into one
	// backend call.
	DefaultSearchDebounce = 300 * time.Millisecond
)

// CatalogAPI is the slice of the backend client the catalog store uses.
type CatalogAPI interface {
	UpcomingBooks(ctx context.Context) ([]domain.Book, error)
	AvailableBooks(ctx context.Context) ([]domain.Book, error)
	OutOfStockBooks(ctx context.Context) ([]domain.Book, error)
	Genres(ctx context.Context) ([]string, error)
	SearchBooks(ctx context.Context, query string, page int, opts api.SearchOptions) (*domain.SearchPage, error)
}

// section carries the per-query-kind bookkeeping shared by every cache
// entry: loading flag, last error and last successful fetch time.
type section struct {
	loading   bool
	err       error
	fetchedAt time.Time
}

// CatalogStore caches catalog reads so independent consumers share one
// fetch. A fresh cache hit returns the identical cached slice with no
// network call; a stale hit is served immediately while a background
// refetch replaces it.
type CatalogStore struct {
	notifier

	api        CatalogAPI
	clock      Clocker
	staleAfter time.Duration
	debounce   time.Duration
	logger     *zap.Logger

	mu sync.Mutex

	upcoming struct {
		section
		data []domain.Book
	}
	byGenre struct {
		section
		genres []string
		books  map[string][]domain.Book
	}
	search struct {
		section
		query string
		page  domain.SearchPage
	}
	searchTimer *time.Timer
}

// NewCatalogStore creates a CatalogStore with the default staleness window
// and search debounce. A nil clock falls back to the system clock.
func NewCatalogStore(catalogAPI CatalogAPI, clock Clocker, logger *zap.Logger) *CatalogStore {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogStore{
		api:        catalogAPI,
		clock:      clock,
		staleAfter: DefaultStaleAfter,
		debounce:   DefaultSearchDebounce,
		logger:     logger,
	}
}

// SetStaleAfter overrides the staleness window.
func (s *CatalogStore) SetStaleAfter(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleAfter = d
}

// SetSearchDebounce overrides the search debounce delay.
func (s *CatalogStore) SetSearchDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = d
}

// FetchUpcoming returns the upcoming-books section. Unless forced, a fresh
// cache is returned as-is and a stale one is returned while a background
// refetch runs.
func (s *CatalogStore) FetchUpcoming(ctx context.Context, force bool) ([]domain.Book, error) {
	s.mu.Lock()
	if !force && len(s.upcoming.data) > 0 {
		data := s.upcoming.data
		if s.clock.Now().Sub(s.upcoming.fetchedAt) < s.staleAfter || s.upcoming.loading {
			s.mu.Unlock()
			return data, nil
		}
		s.upcoming.loading = true
		s.upcoming.err = nil
		s.mu.Unlock()
		s.notify()
		go s.loadUpcoming(context.WithoutCancel(ctx))
		return data, nil
	}
	s.upcoming.loading = true
	s.upcoming.err = nil
	s.mu.Unlock()
	s.notify()

	return s.loadUpcoming(ctx)
}

func (s *CatalogStore) loadUpcoming(ctx context.Context) ([]domain.Book, error) {
	books, err := s.api.UpcomingBooks(ctx)

	s.mu.Lock()
	s.upcoming.loading = false
	s.upcoming.err = err
	if err == nil {
		s.upcoming.data = books
		s.upcoming.fetchedAt = s.clock.Now()
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.logger.Error("failed to fetch upcoming books", zap.Error(err))
		return nil, err
	}
	return books, nil
}

// FetchBooksByGenre returns the genre list and the books grouped per
// genre. Upcoming books are excluded from genre rows; they surface only in
// the dedicated coming-soon section.
func (s *CatalogStore) FetchBooksByGenre(ctx context.Context, force bool) ([]string, map[string][]domain.Book, error) {
	s.mu.Lock()
	if !force && len(s.byGenre.books) > 0 {
		genres, books := s.byGenre.genres, s.byGenre.books
		if s.clock.Now().Sub(s.byGenre.fetchedAt) < s.staleAfter || s.byGenre.loading {
			s.mu.Unlock()
			return genres, books, nil
		}
		s.byGenre.loading = true
		s.byGenre.err = nil
		s.mu.Unlock()
		s.notify()
		go s.loadBooksByGenre(context.WithoutCancel(ctx))
		return genres, books, nil
	}
	s.byGenre.loading = true
	s.byGenre.err = nil
	s.mu.Unlock()
	s.notify()

	return s.loadBooksByGenre(ctx)
}

func (s *CatalogStore) loadBooksByGenre(ctx context.Context) ([]string, map[string][]domain.Book, error) {
	var (
		genres     []string
		available  []domain.Book
		outOfStock []domain.Book
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		genres, err = s.api.Genres(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		available, err = s.api.AvailableBooks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		outOfStock, err = s.api.OutOfStockBooks(gctx)
		return err
	})
	err := g.Wait()

	var grouped map[string][]domain.Book
	var kept []string
	if err == nil {
		grouped = groupByGenre(append(available, outOfStock...))
		// Genres whose only titles are upcoming would render empty rows.
		for _, genre := range genres {
			if len(grouped[genre]) > 0 {
				kept = append(kept, genre)
			}
		}
		sort.Strings(kept)
	}

	s.mu.Lock()
	s.byGenre.loading = false
	s.byGenre.err = err
	if err == nil {
		s.byGenre.genres = kept
		s.byGenre.books = grouped
		s.byGenre.fetchedAt = s.clock.Now()
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.logger.Error("failed to fetch books by genre", zap.Error(err))
		return nil, nil, err
	}
	return kept, grouped, nil
}

// groupByGenre partitions books per genre, keeping purchasable and
// out-of-stock titles only.
func groupByGenre(books []domain.Book) map[string][]domain.Book {
	grouped := make(map[string][]domain.Book)
	for _, book := range books {
		if book.Genre == "" {
			continue
		}
		if book.Status != domain.StatusAvailable && book.Status != domain.StatusOutOfStock {
			continue
		}
		grouped[book.Genre] = append(grouped[book.Genre], book)
	}
	return grouped
}

// Search runs a catalog search. A blank query resets the search section
// and short-circuits without contacting the backend. Pages are 1-indexed.
func (s *CatalogStore) Search(ctx context.Context, query string, page int, opts api.SearchOptions) (domain.SearchPage, error) {
	if strings.TrimSpace(query) == "" {
		s.mu.Lock()
		s.search.query = ""
		s.search.page = domain.SearchPage{}
		s.search.loading = false
		s.search.err = nil
		s.mu.Unlock()
		s.notify()
		return domain.SearchPage{}, nil
	}

	s.mu.Lock()
	s.search.query = query
	s.search.loading = true
	s.search.err = nil
	s.mu.Unlock()
	s.notify()

	result, err := s.api.SearchBooks(ctx, query, page, opts)

	s.mu.Lock()
	s.search.loading = false
	s.search.err = err
	if err == nil {
		s.search.page = *result
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		return domain.SearchPage{}, err
	}
	return *result, nil
}

// SearchDebounced schedules Search after the debounce delay, replacing any
// previously scheduled search so rapid input changes collapse into one
// backend call.
func (s *CatalogStore) SearchDebounced(ctx context.Context, query string, page int, opts api.SearchOptions) {
	detached := context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchTimer != nil {
		s.searchTimer.Stop()
	}
	s.searchTimer = time.AfterFunc(s.debounce, func() {
		s.Search(detached, query, page, opts)
	})
}

// Close stops any pending debounced search.
func (s *CatalogStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchTimer != nil {
		s.searchTimer.Stop()
		s.searchTimer = nil
	}
}

// UpcomingState exposes the upcoming section for rendering.
func (s *CatalogStore) UpcomingState() (data []domain.Book, loading bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upcoming.data, s.upcoming.loading, s.upcoming.err
}

// ByGenreState exposes the grouped-by-genre section for rendering.
func (s *CatalogStore) ByGenreState() (genres []string, books map[string][]domain.Book, loading bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byGenre.genres, s.byGenre.books, s.byGenre.loading, s.byGenre.err
}

// SearchState exposes the search section for rendering.
func (s *CatalogStore) SearchState() (query string, page domain.SearchPage, loading bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search.query, s.search.page, s.search.loading, s.search.err
}
