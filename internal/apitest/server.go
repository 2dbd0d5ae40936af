// Package apitest provides an in-memory stand-in for the bookstore REST
// backend, used by store and checkout tests. It mirrors the real API's
// routes and its server-side cart semantics (quantity merging, stock
// ceilings) closely enough for the client to be exercised end to end.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"bookstore-front/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Server is a fake bookstore backend. All exported fields must be set
// before the first request is made.
type Server struct {
	*httptest.Server

	// CheckoutError, when non-empty, makes the checkout endpoint fail
	// with a 500 carrying this message in the JSON error field.
	CheckoutError string

	// PlainTextErrors switches error responses from {"error": ...} JSON
	// to a bare text body.
	PlainTextErrors bool

	mu         sync.Mutex
	books      []domain.Book
	carts      map[int64]*cartRecord
	cartOwner  map[int64]int64 // customerID -> cartID
	nextCartID int64
	nextItemID int64
	nextOrder  int64
	requests   []string
	requestIDs []string
}

type cartRecord struct {
	cart  domain.Cart
	items []domain.CartLineItem
}

// NewServer starts a fake backend seeded with the given catalog. The
// server is shut down automatically when the test ends.
func NewServer(t interface{ Cleanup(func()) }, books ...domain.Book) *Server {
	s := &Server{
		books:      books,
		carts:      make(map[int64]*cartRecord),
		cartOwner:  make(map[int64]int64),
		nextCartID: 100,
		nextItemID: 1000,
		nextOrder:  5000,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Server.Close)
	return s
}

// BaseURL is the address clients should use, including the /api prefix the
// real backend mounts everything under.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Requests returns every observed request as "METHOD /path?query".
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestCount counts observed requests whose "METHOD /path" line starts
// with prefix. An empty prefix counts everything.
func (s *Server) RequestCount(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// RequestIDs returns the X-Request-ID header of every observed request,
// in order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// SeedCart creates a cart for the customer with the given line items and
// returns its id.
func (s *Server) SeedCart(customerID int64, items ...domain.CartLineItem) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCartID++
	cartID := s.nextCartID
	rec := &cartRecord{cart: domain.Cart{ID: cartID, CustomerID: customerID}}
	for _, item := range items {
		s.nextItemID++
		item.ID = s.nextItemID
		item.CartID = cartID
		rec.items = append(rec.items, item)
	}
	s.carts[cartID] = rec
	s.cartOwner[customerID] = cartID
	return cartID
}

// CartItems returns the current server-side line items of a cart.
func (s *Server) CartItems(cartID int64) []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.carts[cartID]
	if !ok {
		return nil
	}
	return append([]domain.CartLineItem(nil), rec.items...)
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Get("/books/genres", s.handleGenres)
		r.Get("/books/search", s.handleSearch)
		r.Get("/books/{status}", s.handleBooksByStatus)

		r.Post("/carts", s.handleCreateCart)
		r.Get("/carts/customer/{customerID}", s.handleCartByCustomer)
		r.Route("/carts/{cartID}/items", func(r chi.Router) {
			r.Get("/", s.handleCartItems)
			r.Post("/", s.handleAddItem)
			r.Delete("/", s.handleClearCart)
			r.Put("/{itemID}", s.handleUpdateItem)
			r.Delete("/{itemID}", s.handleRemoveItem)
		})

		r.Post("/orders/checkout", s.handleCheckout)
	})

	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		line := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			line += "?" + r.URL.RawQuery
		}
		s.mu.Lock()
		s.requests = append(s.requests, line)
		s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-ID"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	seen := make(map[string]bool)
	var genres []string
	for _, b := range s.books {
		if b.Genre != "" && !seen[b.Genre] {
			seen[b.Genre] = true
			genres = append(genres, b.Genre)
		}
	}
	s.mu.Unlock()
	sort.Strings(genres)
	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) handleBooksByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.BookStatus(chi.URLParam(r, "status"))
	s.mu.Lock()
	books := []domain.Book{}
	for _, b := range s.books {
		if b.Status == status {
			books = append(books, b)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))

	s.mu.Lock()
	matches := []domain.Book{}
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), query) ||
			strings.Contains(strings.ToLower(b.Author), query) {
			matches = append(matches, b)
		}
	}
	s.mu.Unlock()

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}
	pages := (len(matches) + size - 1) / size
	if pages == 0 {
		pages = 1
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"content":    matches,
		"totalItems": len(matches),
		"totalPages": pages,
	})
}

func (s *Server) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID int64 `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	s.nextCartID++
	cartID := s.nextCartID
	s.carts[cartID] = &cartRecord{cart: domain.Cart{ID: cartID, CustomerID: body.CustomerID}}
	s.cartOwner[body.CustomerID] = cartID
	cart := s.carts[cartID].cart
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, cart)
}

func (s *Server) handleCartByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)

	s.mu.Lock()
	cartID, ok := s.cartOwner[customerID]
	var cart domain.Cart
	if ok {
		cart = s.carts[cartID].cart
	}
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, "no cart for customer")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) cartFromRequest(w http.ResponseWriter, r *http.Request) (*cartRecord, bool) {
	cartID, _ := strconv.ParseInt(chi.URLParam(r, "cartID"), 10, 64)
	s.mu.Lock()
	rec, ok := s.carts[cartID]
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "cart not found")
		return nil, false
	}
	return rec, true
}

func (s *Server) handleCartItems(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.cartFromRequest(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	items := append([]domain.CartLineItem{}, rec.items...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.cartFromRequest(w, r)
	if !ok {
		return
	}

	var body struct {
		BookID   int64 `json:"bookId"`
		Quantity int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Quantity < 1 {
		s.writeError(w, http.StatusBadRequest, "invalid quantity")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var book *domain.Book
	for i := range s.books {
		if s.books[i].ID == body.BookID {
			book = &s.books[i]
			break
		}
	}
	if book == nil {
		s.writeError(w, http.StatusNotFound, "book not found")
		return
	}

	// Server-side merge: adding an already-carted book bumps its
	// quantity, capped at the stock ceiling.
	for i := range rec.items {
		if rec.items[i].Book.ID == body.BookID {
			merged := rec.items[i].Quantity + body.Quantity
			if ceiling := book.StockCeiling(); merged > ceiling {
				merged = ceiling
			}
			rec.items[i].Quantity = merged
			writeJSON(w, http.StatusOK, rec.items[i])
			return
		}
	}

	s.nextItemID++
	item := domain.CartLineItem{
		ID:       s.nextItemID,
		CartID:   rec.cart.ID,
		Book:     *book,
		Quantity: body.Quantity,
	}
	rec.items = append(rec.items, item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.cartFromRequest(w, r)
	if !ok {
		return
	}
	itemID, _ := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Quantity < 1 {
		s.writeError(w, http.StatusBadRequest, "invalid quantity")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rec.items {
		if rec.items[i].ID == itemID {
			rec.items[i].Quantity = body.Quantity
			writeJSON(w, http.StatusOK, rec.items[i])
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "cart item not found")
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.cartFromRequest(w, r)
	if !ok {
		return
	}
	itemID, _ := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rec.items {
		if rec.items[i].ID == itemID {
			rec.items = append(rec.items[:i], rec.items[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "cart item not found")
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.cartFromRequest(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	rec.items = nil
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if s.CheckoutError != "" {
		s.writeError(w, http.StatusInternalServerError, s.CheckoutError)
		return
	}

	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Destination) == "" {
		s.writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	s.mu.Lock()
	rec, ok := s.carts[req.CartID]
	if !ok || len(rec.items) == 0 {
		s.mu.Unlock()
		s.writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	total := decimal.Zero
	for _, item := range rec.items {
		total = total.Add(item.Book.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	s.nextOrder++
	order := domain.Order{
		ID:          s.nextOrder,
		Number:      "ORD-" + strconv.FormatInt(s.nextOrder, 10),
		TotalAmount: total,
		Status:      "pending",
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	if s.PlainTextErrors {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		w.Write([]byte(message))
		return
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
