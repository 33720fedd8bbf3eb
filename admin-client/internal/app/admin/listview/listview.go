// Package listview фильтрация, поиск и сортировка загруженной страницы
// товаров и категорий без обращения к API.
package listview

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"catalogadmin/admin-client/internal/app/admin/entity"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Query параметры представления списка
type Query struct {
	Search   string    // Подстрока без учета регистра
	Category string    // IRI категории, пусто - все
	Sort     SortState // До двух ключей сортировки
}

// EmptyKind причина пустого результата
type EmptyKind int

const (
	EmptyNone      EmptyKind = iota // Результат не пуст
	EmptyNoRecords                  // Записей нет вообще
	EmptyNoMatches                  // Записи есть, но не подходят под фильтр
)

// Result отфильтрованный и отсортированный список
type Result[T any] struct {
	Items  []T
	Count  int
	Empty  EmptyKind
	Search string
	noun   string // products, categories
}

// Message сообщение для пустого результата
func (r Result[T]) Message() string {
	switch r.Empty {
	case EmptyNoRecords:
		return fmt.Sprintf("No %s found", r.noun)
	case EmptyNoMatches:
		if r.Search == "" {
			return fmt.Sprintf("No %s match the selected filters", r.noun)
		}
		return fmt.Sprintf("No %s matching %q", r.noun, r.Search)
	default:
		return ""
	}
}

// Summary строка с количеством записей
func (r Result[T]) Summary() string {
	s := fmt.Sprintf("Showing %d %s", r.Count, r.noun)
	if r.Search != "" {
		s += fmt.Sprintf(" matching %q", r.Search)
	}
	return s
}

// accessor как фильтровать и сравнивать записи конкретного ресурса
type accessor[T any] struct {
	noun     string
	text     func(T) []string
	category func(T) string
	compare  func(c *collate.Collator, field Field, a, b T) int
}

// apply фильтрует, затем стабильно сортирует копию items
func apply[T any](items []T, q Query, acc accessor[T]) Result[T] {
	search := strings.ToLower(q.Search)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if q.Category != "" && (acc.category == nil || acc.category(item) != q.Category) {
			continue
		}
		if search != "" && !matches(acc.text(item), search) {
			continue
		}
		out = append(out, item)
	}

	if keys := q.Sort.Keys(); len(keys) > 0 {
		// Collator не потокобезопасен, создаем на каждый вызов
		collator := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b T) int {
			for _, key := range keys {
				c := acc.compare(collator, key.Field, a, b)
				if key.Direction == Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	res := Result[T]{
		Items:  out,
		Count:  len(out),
		Search: q.Search,
		noun:   acc.noun,
	}
	switch {
	case len(items) == 0:
		res.Empty = EmptyNoRecords
	case len(out) == 0:
		res.Empty = EmptyNoMatches
	}
	return res
}

func matches(values []string, search string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

var products = accessor[entity.Product]{
	noun: "products",
	text: func(p entity.Product) []string {
		return []string{p.Name, p.Description, FormatPrice(p.Price)}
	},
	category: func(p entity.Product) string { return p.Category },
	compare: func(c *collate.Collator, field Field, a, b entity.Product) int {
		switch field {
		case FieldPrice:
			return cmp.Compare(a.Price, b.Price)
		case FieldCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		case FieldName:
			return c.CompareString(a.Name, b.Name)
		default:
			return 0
		}
	},
}

var categories = accessor[entity.Category]{
	noun: "categories",
	text: func(c entity.Category) []string { return []string{c.Name} },
	compare: func(c *collate.Collator, field Field, a, b entity.Category) int {
		if field == FieldName {
			return c.CompareString(a.Name, b.Name)
		}
		return 0
	},
}

// Products применяет запрос к загруженным товарам
func Products(items []entity.Product, q Query) Result[entity.Product] {
	return apply(items, q, products)
}

// Categories применяет запрос к загруженным категориям
// Фильтр по категории для категорий не применяется
func Categories(items []entity.Category, q Query) Result[entity.Category] {
	q.Category = ""
	return apply(items, q, categories)
}

// FormatPrice десятичная строка цены, по ней же идет поиск
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
