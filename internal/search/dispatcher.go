package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

// Sort is an optional client-requested ordering applied uniformly to either
// path's results after the branch resolves.
type Sort string

const (
	SortNone       Sort = ""
	SortPriceAsc   Sort = "price-asc"
	SortPriceDesc  Sort = "price-desc"
	SortRatingDesc Sort = "rating-desc"
)

// Valid reports whether s is a known sort option.
func (s Sort) Valid() bool {
	switch s {
	case SortNone, SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return true
	}
	return false
}

// Result is the single output contract both query paths converge on.
type Result struct {
	Reply    string           `json:"reply"`
	Products []models.Product `json:"products"`
}

// CatalogFilter is the deterministic keyword path: case-insensitive
// substring match on product name.
type CatalogFilter interface {
	FilterByName(ctx context.Context, nameContains string) ([]models.Product, error)
}

// Interpreter is the natural-language path: an external service that turns
// raw text into a product list plus a free-text reply.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (*Result, error)
}

const fallbackReply = "Sorry, I couldn't search right now. Please try again in a moment."

// Dispatcher classifies free-text input and routes it to one of the two
// paths. Collaborator failures degrade to a safe fallback; a raw error is
// never propagated to the caller.
type Dispatcher struct {
	classifier  Classifier
	catalog     CatalogFilter
	interpreter Interpreter
	timeout     time.Duration
	log         *slog.Logger
}

// NewDispatcher wires a dispatcher. interpreter may be nil, in which case
// natural-language queries degrade to the fallback reply.
func NewDispatcher(classifier Classifier, catalog CatalogFilter, interpreter Interpreter, timeout time.Duration, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		classifier:  classifier,
		catalog:     catalog,
		interpreter: interpreter,
		timeout:     timeout,
		log:         log,
	}
}

// Search routes the query and returns the normalized result.
func (d *Dispatcher) Search(ctx context.Context, text string, sortOpt Sort) Result {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var result Result
	switch d.classifier.Classify(text) {
	case ModeNatural:
		result = d.natural(ctx, text)
	default:
		result = d.keyword(ctx, text)
	}

	applySort(result.Products, sortOpt)
	return result
}

func (d *Dispatcher) keyword(ctx context.Context, text string) Result {
	products, err := d.catalog.FilterByName(ctx, text)
	if err != nil {
		d.log.Error("catalog filter failed", "query", text, "error", err)
		return Result{Reply: fallbackReply, Products: []models.Product{}}
	}
	if len(products) == 0 {
		return Result{
			Reply:    fmt.Sprintf("No cakes matched %q. Try a different name?", text),
			Products: []models.Product{},
		}
	}
	return Result{
		Reply:    fmt.Sprintf("Found %d cake(s) matching %q.", len(products), text),
		Products: products,
	}
}

func (d *Dispatcher) natural(ctx context.Context, text string) Result {
	if d.interpreter == nil {
		return Result{Reply: fallbackReply, Products: []models.Product{}}
	}
	result, err := d.interpreter.Interpret(ctx, text)
	if err != nil {
		d.log.Error("query interpreter failed", "query", text, "error", err)
		return Result{Reply: fallbackReply, Products: []models.Product{}}
	}
	if result.Products == nil {
		result.Products = []models.Product{}
	}
	return *result
}

func applySort(products []models.Product, sortOpt Sort) {
	switch sortOpt {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortRatingDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	}
}
