package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CategoriesPath = "/categories"
	ProductsPath   = "/products"

	DefaultItemsPerPage = 30
	MaxItemsPerPage     = 100
)

var ErrInvalidIRI = errors.New("invalid IRI")

// CategoryResource JSON-LD представление категории
type CategoryResource struct {
	Context  string    `json:"@context,omitempty"`
	IRI      string    `json:"@id"`
	Type     string    `json:"@type"`
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Products []string  `json:"products"` // IRI товаров в порядке создания
}

// ProductResource JSON-LD представление товара
type ProductResource struct {
	Context     string    `json:"@context,omitempty"`
	IRI         string    `json:"@id"`
	Type        string    `json:"@type"`
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"` // IRI категории
	CreatedAt   time.Time `json:"createdAt"`
}

// Collection страница коллекции в формате Hydra
type Collection struct {
	Context    string       `json:"@context"`
	IRI        string       `json:"@id"`
	Type       string       `json:"@type"`
	Member     any          `json:"member"`
	TotalItems int64        `json:"totalItems"`
	View       *PartialView `json:"view,omitempty"`
}

// PartialView ссылки навигации по страницам
// previous и next присутствуют только если такие страницы существуют
type PartialView struct {
	IRI      string `json:"@id"`
	Type     string `json:"@type"`
	First    string `json:"first,omitempty"`
	Last     string `json:"last,omitempty"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

// Page параметры пагинации
type Page struct {
	Number int
	Size   int
}

// Offset смещение первой записи страницы
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// NewCategoryResource строит представление категории
func NewCategoryResource(c *Category, productIDs []uuid.UUID) CategoryResource {
	products := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		products = append(products, ProductIRI(id))
	}

	return CategoryResource{
		IRI:      CategoryIRI(c.ID),
		Type:     "Category",
		ID:       c.ID,
		Name:     c.Name,
		Products: products,
	}
}

// NewProductResource строит представление товара
func NewProductResource(p *Product) ProductResource {
	return ProductResource{
		IRI:         ProductIRI(p.ID),
		Type:        "Product",
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    CategoryIRI(p.CategoryID),
		CreatedAt:   p.CreatedAt.UTC(),
	}
}

// NewCollection собирает страницу коллекции
// path - путь коллекции без query, например /products
func NewCollection(path string, member any, total int64, page Page) Collection {
	return Collection{
		Context:    "/contexts/" + contextName(path),
		IRI:        path,
		Type:       "Collection",
		Member:     member,
		TotalItems: total,
		View:       NewPartialView(path, page, total),
	}
}

// NewPartialView строит ссылки first/last/previous/next
func NewPartialView(path string, page Page, total int64) *PartialView {
	lastPage := 1
	if total > 0 && page.Size > 0 {
		lastPage = int(math.Ceil(float64(total) / float64(page.Size)))
	}

	view := &PartialView{
		IRI:   pageLink(path, page.Number, page.Size),
		Type:  "PartialCollectionView",
		First: pageLink(path, 1, page.Size),
		Last:  pageLink(path, lastPage, page.Size),
	}
	if page.Number > 1 {
		view.Previous = pageLink(path, page.Number-1, page.Size)
	}
	if int64(page.Number)*int64(page.Size) < total {
		view.Next = pageLink(path, page.Number+1, page.Size)
	}

	return view
}

func pageLink(path string, number, size int) string {
	return fmt.Sprintf("%s?page=%d&itemsPerPage=%d", path, number, size)
}

func contextName(path string) string {
	switch path {
	case CategoriesPath:
		return "Category"
	case ProductsPath:
		return "Product"
	default:
		return strings.TrimPrefix(path, "/")
	}
}

// CategoryIRI возвращает IRI категории
func CategoryIRI(id uuid.UUID) string {
	return CategoriesPath + "/" + id.String()
}

// ProductIRI возвращает IRI товара
func ProductIRI(id uuid.UUID) string {
	return ProductsPath + "/" + id.String()
}

// ParseIRI извлекает UUID из IRI вида {collection}/{id}
// Принимает также абсолютные IRI и голый UUID
func ParseIRI(collection, iri string) (uuid.UUID, error) {
	iri = strings.TrimSpace(iri)
	if idx := strings.Index(iri, collection+"/"); idx >= 0 {
		iri = iri[idx+len(collection)+1:]
	}

	id, err := uuid.Parse(strings.TrimSuffix(iri, "/"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidIRI, iri)
	}
	return id, nil
}
