package entity

// CategoryInput тело запроса POST/PUT /categories
type CategoryInput struct {
	Name string `json:"name"`
}

// Values значения полей для проверки правилами schema.Category
func (in CategoryInput) Values() map[string]any {
	return map[string]any{"name": in.Name}
}

// ProductInput тело запроса POST/PUT /products
// category передается как IRI категории
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// Values значения полей для проверки правилами schema.Product
func (in ProductInput) Values() map[string]any {
	return map[string]any{
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price,
		"category":    in.Category,
	}
}

// Violation нарушение правила для одного поля
type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

// ErrorResponse JSON-LD документ ошибки
// Для ошибок валидации Type = ConstraintViolationList и заполнен Violations
type ErrorResponse struct {
	Context     string      `json:"@context,omitempty"`
	Type        string      `json:"@type"`
	Title       string      `json:"hydra:title"`
	Description string      `json:"hydra:description"`
	Violations  []Violation `json:"violations,omitempty"`
}

// CategoryPage страница категорий с общим количеством
type CategoryPage struct {
	Items []CategoryResource
	Total int64
}

// ProductPage страница товаров с общим количеством
type ProductPage struct {
	Items []ProductResource
	Total int64
}
