package service

import (
	"context"

	"catalogadmin/catalog-service/internal/app/catalog/entity"

	"github.com/google/uuid"
)

type CatalogServiceInterface interface {
	ListCategories(ctx context.Context, page entity.Page) (*entity.CategoryPage, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.CategoryResource, error)
	CreateCategory(ctx context.Context, in entity.CategoryInput) (*entity.CategoryResource, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in entity.CategoryInput) (*entity.CategoryResource, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	WarmCategoryCache(ctx context.Context) error

	ListProducts(ctx context.Context, page entity.Page) (*entity.ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductResource, error)
	CreateProduct(ctx context.Context, in entity.ProductInput) (*entity.ProductResource, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in entity.ProductInput) (*entity.ProductResource, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}
