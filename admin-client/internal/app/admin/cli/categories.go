package cli

import (
	"fmt"

	"catalogadmin/admin-client/internal/app/admin/entity"
	"catalogadmin/admin-client/internal/app/admin/listview"

	"github.com/spf13/cobra"
)

func (a *App) categoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(
		a.categoriesListCommand(),
		a.categoriesShowCommand(),
		a.categoriesCreateCommand(),
		a.categoriesEditCommand(),
		a.categoriesDeleteCommand(),
	)
	return cmd
}

func (a *App) categoriesListCommand() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}

			resp, err := a.client.Categories(cmd.Context(), flags.page)
			if err != nil {
				return describeError(err)
			}

			renderCategories(a.out, listview.Categories(resp.Data.Member, q))
			renderPager(a.out, "categories", flags.page, resp.Data)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func (a *App) categoriesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show IRI",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.Category(cmd.Context(), normalizeIRI(entity.CategoriesPath, args[0]))
			if err != nil {
				return describeError(err)
			}
			renderCategory(a.out, resp.Data)
			return nil
		},
	}
}

func (a *App) categoriesCreateCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return submit(a, cmd, entity.Category{Name: name})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "category name")
	return cmd
}

func (a *App) categoriesEditCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "edit IRI",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("name") {
				return errNoChanges
			}

			resp, err := a.client.Category(cmd.Context(), normalizeIRI(entity.CategoriesPath, args[0]))
			if err != nil {
				return describeError(err)
			}

			category := resp.Data
			category.Name = name
			return submit(a, cmd, category)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new category name")
	return cmd
}

func (a *App) categoriesDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete IRI",
		Short: "Delete a category without products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := remove[entity.Category](a, cmd, normalizeIRI(entity.CategoriesPath, args[0]), yes)
			if err != nil {
				return fmt.Errorf("category was not deleted: %w", describeError(err))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
