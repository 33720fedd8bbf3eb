package dataaccess

import (
	"context"
	"fmt"
	"net/http"

	"catalogadmin/admin-client/internal/app/admin/entity"
	"catalogadmin/admin-client/internal/app/admin/routes"

	"golang.org/x/sync/errgroup"
)

// maxCategoryPages ограничивает обход страниц категорий для справочника
const maxCategoryPages = 50

// Categories загружает страницу категорий
func (c *Client) Categories(ctx context.Context, page int) (*Response[Collection[entity.Category]], error) {
	return Fetch[Collection[entity.Category]](ctx, c, routes.Collection("categories", page, c.itemsPerPage), nil)
}

// Products загружает страницу товаров
func (c *Client) Products(ctx context.Context, page int) (*Response[Collection[entity.Product]], error) {
	return Fetch[Collection[entity.Product]](ctx, c, routes.Collection("products", page, c.itemsPerPage), nil)
}

// Category загружает категорию по IRI
func (c *Client) Category(ctx context.Context, iri string) (*Response[entity.Category], error) {
	return Fetch[entity.Category](ctx, c, iri, nil)
}

// Product загружает товар по IRI
func (c *Client) Product(ctx context.Context, iri string) (*Response[entity.Product], error) {
	return Fetch[entity.Product](ctx, c, iri, nil)
}

// Save создает ресурс (POST в коллекцию), если у него нет IRI, иначе обновляет (PUT по IRI)
func Save[T entity.Resource](ctx context.Context, c *Client, v T) (*Response[T], error) {
	if v.IRI() == "" {
		return Fetch[T](ctx, c, v.Collection(), &RequestOptions{Method: http.MethodPost, Body: v.Values()})
	}
	return Fetch[T](ctx, c, v.IRI(), &RequestOptions{Method: http.MethodPut, Body: v.Values()})
}

// SaveCategory создает или обновляет категорию
func (c *Client) SaveCategory(ctx context.Context, v entity.Category) (*Response[entity.Category], error) {
	return Save(ctx, c, v)
}

// SaveProduct создает или обновляет товар
func (c *Client) SaveProduct(ctx context.Context, v entity.Product) (*Response[entity.Product], error) {
	return Save(ctx, c, v)
}

// Delete удаляет ресурс по IRI
func (c *Client) Delete(ctx context.Context, iri string) error {
	_, err := c.Do(ctx, iri, &RequestOptions{Method: http.MethodDelete})
	return err
}

// AllCategories обходит все страницы категорий по ссылкам view.next
// Используется как справочник имен и для фильтра по категории
func (c *Client) AllCategories(ctx context.Context) ([]entity.Category, error) {
	var all []entity.Category
	next := routes.Collection("categories", 1, 100)

	for i := 0; next != "" && i < maxCategoryPages; i++ {
		resp, err := Fetch[Collection[entity.Category]](ctx, c, next, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Data.Member...)

		next = ""
		if resp.Data.View != nil {
			next = resp.Data.View.Next
		}
	}

	return all, nil
}

// Catalog страница товаров вместе со справочником категорий
type Catalog struct {
	Products   *Response[Collection[entity.Product]]
	Categories []entity.Category
}

// CategoryName возвращает имя категории по IRI, или сам IRI если категория неизвестна
func (c *Catalog) CategoryName(iri string) string {
	for _, category := range c.Categories {
		if category.IRI() == iri {
			return category.Name
		}
	}
	return iri
}

// FetchAll загружает страницу товаров и категории параллельно
func (c *Client) FetchAll(ctx context.Context, page int) (*Catalog, error) {
	var catalog Catalog

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := c.Products(gctx, page)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		catalog.Products = resp
		return nil
	})
	g.Go(func() error {
		categories, err := c.AllCategories(gctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		catalog.Categories = categories
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &catalog, nil
}
