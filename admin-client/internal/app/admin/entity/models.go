package entity

import (
	"time"

	"catalogadmin/pkg/schema"
)

const (
	CategoriesPath = "/categories"
	ProductsPath   = "/products"
)

// Resource ресурс API, с которым работают формы и live обновления
type Resource interface {
	IRI() string
	Kind() string       // Имя ресурса для сообщений: Category, Product
	Collection() string // Путь коллекции: /categories, /products
	Rules() schema.Rules
	Values() map[string]any // Тело запроса create/update и значения для проверки правил
}

// Category категория в представлении API
// Identifier пустой у еще не созданной категории
type Category struct {
	Identifier string   `json:"@id,omitempty"`
	Type       string   `json:"@type,omitempty"`
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	Products   []string `json:"products,omitempty"`
}

func (c Category) IRI() string         { return c.Identifier }
func (c Category) Kind() string        { return "Category" }
func (c Category) Collection() string  { return CategoriesPath }
func (c Category) Rules() schema.Rules { return schema.Category }

func (c Category) Values() map[string]any {
	return map[string]any{"name": c.Name}
}

// Product товар в представлении API
// Category содержит IRI категории
type Product struct {
	Identifier  string    `json:"@id,omitempty"`
	Type        string    `json:"@type,omitempty"`
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

func (p Product) IRI() string         { return p.Identifier }
func (p Product) Kind() string        { return "Product" }
func (p Product) Collection() string  { return ProductsPath }
func (p Product) Rules() schema.Rules { return schema.Product }

func (p Product) Values() map[string]any {
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
	}
}
