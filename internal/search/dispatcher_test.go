package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

type stubCatalog struct {
	products []models.Product
	err      error
	gotQuery string
}

func (s *stubCatalog) FilterByName(ctx context.Context, nameContains string) ([]models.Product, error) {
	s.gotQuery = nameContains
	return s.products, s.err
}

type stubInterpreter struct {
	result  *Result
	err     error
	gotText string
}

func (s *stubInterpreter) Interpret(ctx context.Context, text string) (*Result, error) {
	s.gotText = text
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDispatcher(catalog CatalogFilter, interpreter Interpreter) *Dispatcher {
	return NewDispatcher(NewHeuristicClassifier(), catalog, interpreter, time.Second, discardLogger())
}

func TestSearch_KeywordPath(t *testing.T) {
	catalog := &stubCatalog{products: []models.Product{
		{ID: "1", Name: "Chocolate Truffle Cake", Price: 1100, Rating: 4.6},
		{ID: "3", Name: "Chocolate Fudge Cake", Price: 900, Rating: 4.2},
	}}
	interpreter := &stubInterpreter{}
	d := newDispatcher(catalog, interpreter)

	result := d.Search(context.Background(), "chocolate cake", SortNone)

	assert.Equal(t, "chocolate cake", catalog.gotQuery)
	assert.Empty(t, interpreter.gotText, "interpreter must not be called on the keyword path")
	assert.Len(t, result.Products, 2)
	assert.Contains(t, result.Reply, "2 cake(s)")
}

func TestSearch_NaturalPath(t *testing.T) {
	catalog := &stubCatalog{}
	interpreter := &stubInterpreter{result: &Result{
		Reply:    "Two budget options under 1000.",
		Products: []models.Product{{ID: "8", Name: "Pineapple Cake", Price: 800}},
	}}
	d := newDispatcher(catalog, interpreter)

	result := d.Search(context.Background(), "cake under 1000", SortNone)

	assert.Equal(t, "cake under 1000", interpreter.gotText)
	assert.Empty(t, catalog.gotQuery, "catalog must not be called on the natural path")
	assert.Equal(t, "Two budget options under 1000.", result.Reply)
	assert.Len(t, result.Products, 1)
}

func TestSearch_FallbackOnInterpreterFailure(t *testing.T) {
	d := newDispatcher(&stubCatalog{}, &stubInterpreter{err: errors.New("upstream 503")})

	result := d.Search(context.Background(), "cake under 1000", SortNone)

	assert.Equal(t, fallbackReply, result.Reply)
	require.NotNil(t, result.Products)
	assert.Empty(t, result.Products)
}

func TestSearch_FallbackOnCatalogFailure(t *testing.T) {
	d := newDispatcher(&stubCatalog{err: errors.New("storage down")}, &stubInterpreter{})

	result := d.Search(context.Background(), "mango", SortNone)

	assert.Equal(t, fallbackReply, result.Reply)
	require.NotNil(t, result.Products)
	assert.Empty(t, result.Products)
}

func TestSearch_NoInterpreterConfigured(t *testing.T) {
	d := newDispatcher(&stubCatalog{}, nil)

	result := d.Search(context.Background(), "show me everything", SortNone)

	assert.Equal(t, fallbackReply, result.Reply)
	assert.Empty(t, result.Products)
}

func TestSearch_SortAppliesToEitherPath(t *testing.T) {
	products := []models.Product{
		{ID: "1", Name: "A Cake", Price: 1100, Rating: 4.6},
		{ID: "2", Name: "B Cake", Price: 800, Rating: 3.9},
		{ID: "3", Name: "C Cake", Price: 950, Rating: 4.8},
	}

	tests := []struct {
		name    string
		sortOpt Sort
		wantIDs []string
	}{
		{"price ascending", SortPriceAsc, []string{"2", "3", "1"}},
		{"price descending", SortPriceDesc, []string{"1", "3", "2"}},
		{"rating descending", SortRatingDesc, []string{"3", "1", "2"}},
		{"no sort keeps order", SortNone, []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run("keyword "+tt.name, func(t *testing.T) {
			catalog := &stubCatalog{products: append([]models.Product(nil), products...)}
			d := newDispatcher(catalog, nil)

			result := d.Search(context.Background(), "cake", tt.sortOpt)

			ids := make([]string, 0, len(result.Products))
			for _, p := range result.Products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})

		t.Run("natural "+tt.name, func(t *testing.T) {
			interpreter := &stubInterpreter{result: &Result{
				Reply:    "ok",
				Products: append([]models.Product(nil), products...),
			}}
			d := newDispatcher(&stubCatalog{}, interpreter)

			result := d.Search(context.Background(), "show me cakes", tt.sortOpt)

			ids := make([]string, 0, len(result.Products))
			for _, p := range result.Products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSortValid(t *testing.T) {
	for _, s := range []Sort{SortNone, SortPriceAsc, SortPriceDesc, SortRatingDesc} {
		assert.True(t, s.Valid(), "Sort(%q)", s)
	}
	assert.False(t, Sort("name-asc").Valid())
}
