package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"bookstore-front/internal/api"
	"bookstore-front/internal/checkout"
	"bookstore-front/internal/config"
	"bookstore-front/internal/domain"
	"bookstore-front/internal/logger"
	"bookstore-front/internal/pricing"
	"bookstore-front/internal/storage"
	"bookstore-front/internal/store"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const usage = `usage: storefront <command> [args]

commands:
  upcoming                      list upcoming books
  genres                        list genre rows (available + out-of-stock)
  search <query> [page]         search the catalog
  cart                          show the cart with totals
  add <bookID> [quantity]       add a book to the cart
  update <itemID> <quantity>    change a line item quantity
  remove <itemID>               remove a line item
  clear                         empty the cart
  checkout <address> <payment>  place the order (payment: cod|credit_card|ebanking)
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// .env is optional; viper takes over from the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.Storefront.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := run(args, cfg, log); err != nil {
		log.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	client  *api.Client
	ids     *storage.CartIDStore
	cart    *store.CartStore
	catalog *store.CatalogStore
	calc    *pricing.Calculator
}

func run(args []string, cfg *config.Config, log *zap.Logger) error {
	ids, err := storage.Open(cfg.Storefront.StoragePath)
	if err != nil {
		return err
	}
	defer ids.Close()

	client := api.New(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout}, log)

	catalog := store.NewCatalogStore(client, store.RealClock(), log)
	catalog.SetStaleAfter(cfg.Catalog.StaleAfter)
	catalog.SetSearchDebounce(cfg.Catalog.SearchDebounce)
	defer catalog.Close()

	a := &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		ids:     ids,
		cart:    store.NewCartStore(client, ids, cfg.Storefront.CustomerID, log),
		catalog: catalog,
		calc: pricing.NewCalculator(pricing.Config{
			TaxRate:               decimal.NewFromFloat(cfg.Pricing.TaxRate),
			ShippingFee:           decimal.NewFromFloat(cfg.Pricing.ShippingFee),
			FreeShippingThreshold: decimal.NewFromFloat(cfg.Pricing.FreeShippingThreshold),
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cmd := args[0]; cmd {
	case "upcoming":
		return a.upcoming(ctx)
	case "genres":
		return a.genres(ctx)
	case "search":
		return a.search(ctx, args[1:])
	case "cart":
		return a.showCart(ctx)
	case "add":
		return a.add(ctx, args[1:])
	case "update":
		return a.update(ctx, args[1:])
	case "remove":
		return a.remove(ctx, args[1:])
	case "clear":
		return a.clear(ctx)
	case "checkout":
		return a.checkout(ctx, args[1:])
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) upcoming(ctx context.Context) error {
	books, err := a.catalog.FetchUpcoming(ctx, false)
	if err != nil {
		return err
	}
	for _, b := range books {
		fmt.Printf("%-6d %-40s %s\n", b.ID, b.Title, b.Author)
	}
	return nil
}

func (a *app) genres(ctx context.Context) error {
	genres, books, err := a.catalog.FetchBooksByGenre(ctx, false)
	if err != nil {
		return err
	}
	for _, genre := range genres {
		fmt.Printf("%s (%d)\n", genre, len(books[genre]))
		for _, b := range books[genre] {
			marker := ""
			if b.Status != domain.StatusAvailable {
				marker = "  [" + string(b.Status) + "]"
			}
			fmt.Printf("  %-6d %-40s $%s%s\n", b.ID, b.Title, b.Price.StringFixed(2), marker)
		}
	}
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("search requires a query")
	}
	page := 1
	if len(args) > 1 {
		p, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid page %q", args[1])
		}
		page = p
	}

	result, err := a.catalog.Search(ctx, args[0], page, api.SearchOptions{PageSize: a.cfg.Catalog.SearchPageSize})
	if err != nil {
		return err
	}
	for _, b := range result.Results {
		fmt.Printf("%-6d %-40s %-24s $%s\n", b.ID, b.Title, b.Author, b.Price.StringFixed(2))
	}
	fmt.Printf("page %d of %d, %d matches\n", page, result.TotalPages, result.TotalCount)
	return nil
}

func (a *app) showCart(ctx context.Context) error {
	if err := a.cart.Initialize(ctx); err != nil {
		return err
	}

	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%-6d %-40s x%-3d $%s\n", item.ID, item.Book.Title, item.Quantity, item.Book.Price.StringFixed(2))
	}

	totals := a.calc.Totals(items)
	fmt.Printf("\nsubtotal  $%s\n", totals.Subtotal.StringFixed(2))
	fmt.Printf("shipping  $%s\n", totals.Shipping.StringFixed(2))
	fmt.Printf("tax       $%s\n", totals.Tax.StringFixed(2))
	fmt.Printf("total     $%s\n", totals.Total.StringFixed(2))
	if totals.HasOutOfStock {
		fmt.Println("\nsome items are out of stock; checkout is blocked until they are removed")
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("add requires a book id")
	}
	bookID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book id %q", args[0])
	}
	quantity := 1
	if len(args) > 1 {
		quantity, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
	}

	if err := a.cart.Initialize(ctx); err != nil {
		return err
	}

	// The embedded snapshot comes from the backend on reload; only the id
	// matters for the add request itself.
	if ok := a.cart.AddItem(ctx, bookFromID(bookID), quantity); !ok {
		return a.cart.Err()
	}
	fmt.Printf("cart now holds %d item(s)\n", a.cart.ItemCount())
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("update requires an item id and a quantity")
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}

	if err := a.cart.Initialize(ctx); err != nil {
		return err
	}
	if ok := a.cart.UpdateQuantity(ctx, itemID, quantity); !ok {
		return a.cart.Err()
	}
	fmt.Printf("cart now holds %d item(s)\n", a.cart.ItemCount())
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("remove requires an item id")
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}

	if err := a.cart.Initialize(ctx); err != nil {
		return err
	}
	if ok := a.cart.RemoveItem(ctx, itemID); !ok {
		return a.cart.Err()
	}
	fmt.Printf("cart now holds %d item(s)\n", a.cart.ItemCount())
	return nil
}

func (a *app) clear(ctx context.Context) error {
	if err := a.cart.Initialize(ctx); err != nil {
		return err
	}
	if ok := a.cart.Clear(ctx); !ok {
		return a.cart.Err()
	}
	fmt.Println("cart cleared")
	return nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("checkout requires an address and a payment method")
	}

	if err := a.cart.Initialize(ctx); err != nil {
		return err
	}
	totals := a.calc.Totals(a.cart.Items())

	done := make(chan struct{})
	orch := checkout.New(a.client, a.cart, a.ids, a.cfg.Storefront.CustomerID, func() { close(done) }, a.log)
	orch.SetSuccessDelay(a.cfg.Checkout.SuccessDelay)

	if err := orch.Submit(ctx, checkout.Form{Address: args[0], PaymentToken: args[1]}, totals); err != nil {
		if msg, ok := orch.FieldError("address"); ok {
			fmt.Println(msg)
		}
		return err
	}

	order, _ := orch.Order()
	fmt.Printf("order %s placed, total $%s\n", order.Number, order.TotalAmount.StringFixed(2))

	// Keep the success visible for the configured window, like the SPA's
	// success banner, then "navigate" back to the prompt.
	select {
	case <-done:
	case <-time.After(a.cfg.Checkout.SuccessDelay + time.Second):
	}
	return nil
}

// bookFromID builds the minimal book value an add request needs.
func bookFromID(id int64) domain.Book {
	return domain.Book{ID: id}
}
