package entity

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartialView(t *testing.T) {
	tests := []struct {
		name     string
		page     Page
		total    int64
		previous string
		next     string
		last     string
	}{
		{"first of three", Page{Number: 1, Size: 10}, 25, "", "/products?page=2&itemsPerPage=10", "/products?page=3&itemsPerPage=10"},
		{"middle", Page{Number: 2, Size: 10}, 25, "/products?page=1&itemsPerPage=10", "/products?page=3&itemsPerPage=10", "/products?page=3&itemsPerPage=10"},
		{"exact last", Page{Number: 2, Size: 10}, 20, "/products?page=1&itemsPerPage=10", "", "/products?page=2&itemsPerPage=10"},
		{"empty collection", Page{Number: 1, Size: 30}, 0, "", "", "/products?page=1&itemsPerPage=30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewPartialView(ProductsPath, tt.page, tt.total)

			assert.Equal(t, "PartialCollectionView", view.Type)
			assert.Equal(t, "/products?page=1&itemsPerPage="+strconv.Itoa(tt.page.Size), view.First)
			assert.Equal(t, tt.previous, view.Previous)
			assert.Equal(t, tt.next, view.Next)
			assert.Equal(t, tt.last, view.Last)
		})
	}
}

func TestNewCollection(t *testing.T) {
	c := NewCollection(CategoriesPath, []CategoryResource{}, 0, Page{Number: 1, Size: 30})

	assert.Equal(t, "/contexts/Category", c.Context)
	assert.Equal(t, "/categories", c.IRI)
	assert.Equal(t, "Collection", c.Type)
}

func TestParseIRI(t *testing.T) {
	id := uuid.New()

	for _, iri := range []string{
		CategoryIRI(id),
		"http://localhost:8081" + CategoryIRI(id),
		id.String(),
		CategoryIRI(id) + "/",
	} {
		got, err := ParseIRI(CategoriesPath, iri)
		require.NoError(t, err, iri)
		assert.Equal(t, id, got)
	}

	_, err := ParseIRI(CategoriesPath, "/categories/not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidIRI)
}

func TestNewProductResource(t *testing.T) {
	p := &Product{ID: uuid.New(), Name: "Laptop", CategoryID: uuid.New(), Price: 10}

	r := NewProductResource(p)

	assert.Equal(t, ProductIRI(p.ID), r.IRI)
	assert.Equal(t, CategoryIRI(p.CategoryID), r.Category)
	assert.Equal(t, "Product", r.Type)
}
