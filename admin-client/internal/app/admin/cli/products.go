package cli

import (
	"fmt"

	"catalogadmin/admin-client/internal/app/admin/entity"
	"catalogadmin/admin-client/internal/app/admin/listview"

	"github.com/spf13/cobra"
)

func (a *App) productsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Manage products",
	}
	cmd.AddCommand(
		a.productsListCommand(),
		a.productsShowCommand(),
		a.productsCreateCommand(),
		a.productsEditCommand(),
		a.productsDeleteCommand(),
		a.productsBrowseCommand(),
	)
	return cmd
}

func (a *App) productsListCommand() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}

			catalog, err := a.client.FetchAll(cmd.Context(), flags.page)
			if err != nil {
				return describeError(err)
			}

			renderProducts(a.out, listview.Products(catalog.Products.Data.Member, q), catalog.CategoryName)
			renderPager(a.out, "products", flags.page, catalog.Products.Data)
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

func (a *App) productsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show IRI",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.Product(cmd.Context(), normalizeIRI(entity.ProductsPath, args[0]))
			if err != nil {
				return describeError(err)
			}

			categoryName := resp.Data.Category
			if category, err := a.client.Category(cmd.Context(), resp.Data.Category); err == nil {
				categoryName = category.Data.Name
			}

			renderProduct(a.out, resp.Data, categoryName)
			return nil
		},
	}
}

// productFlags поля товара для create и edit
type productFlags struct {
	name        string
	description string
	price       float64
	category    string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.description, "description", "", "product description")
	cmd.Flags().Float64Var(&f.price, "price", 0, "product price")
	cmd.Flags().StringVar(&f.category, "category", "", "category IRI")
}

// apply переносит в товар только явно заданные флаги
func (f *productFlags) apply(cmd *cobra.Command, p *entity.Product) bool {
	changed := false
	if cmd.Flags().Changed("name") {
		p.Name, changed = f.name, true
	}
	if cmd.Flags().Changed("description") {
		p.Description, changed = f.description, true
	}
	if cmd.Flags().Changed("price") {
		p.Price, changed = f.price, true
	}
	if cmd.Flags().Changed("category") {
		p.Category, changed = normalizeIRI(entity.CategoriesPath, f.category), true
	}
	return changed
}

func (a *App) productsCreateCommand() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var p entity.Product
			flags.apply(cmd, &p)
			return submit(a, cmd, p)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *App) productsEditCommand() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "edit IRI",
		Short: "Update product fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.Product(cmd.Context(), normalizeIRI(entity.ProductsPath, args[0]))
			if err != nil {
				return describeError(err)
			}

			p := resp.Data
			if !flags.apply(cmd, &p) {
				return errNoChanges
			}
			return submit(a, cmd, p)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *App) productsDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete IRI",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := remove[entity.Product](a, cmd, normalizeIRI(entity.ProductsPath, args[0]), yes)
			if err != nil {
				return fmt.Errorf("product was not deleted: %w", describeError(err))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
