package cli

import (
	"errors"
	"fmt"
	"strings"

	"catalogadmin/admin-client/internal/app/admin/dataaccess"
	"catalogadmin/admin-client/internal/app/admin/entity"
	"catalogadmin/admin-client/internal/app/admin/form"
	"catalogadmin/admin-client/internal/app/admin/listview"

	"github.com/spf13/cobra"
)

// listFlags общие флаги команд list
type listFlags struct {
	page     int
	search   string
	category string
	sort     []string
}

func (f *listFlags) register(cmd *cobra.Command, withCategory bool) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive search")
	cmd.Flags().StringArrayVar(&f.sort, "sort", nil, "sort key, repeatable, primary first (price, date, name; append :desc)")
	if withCategory {
		cmd.Flags().StringVar(&f.category, "category", "", "category IRI filter")
	}
}

func (f *listFlags) query() (listview.Query, error) {
	q := listview.Query{Search: f.search}
	if f.category != "" {
		q.Category = normalizeIRI(entity.CategoriesPath, f.category)
	}

	sortState, err := parseSort(f.sort)
	if err != nil {
		return q, err
	}
	q.Sort = sortState
	return q, nil
}

// parseSort собирает SortState из флагов, первый флаг - первичный ключ
func parseSort(keys []string) (listview.SortState, error) {
	var s listview.SortState
	for i := len(keys) - 1; i >= 0; i-- {
		name, dir, _ := strings.Cut(keys[i], ":")
		field, err := parseField(name)
		if err != nil {
			return s, err
		}
		s.Select(field)
		switch dir {
		case "", "asc":
		case "desc":
			s.Select(field)
		default:
			return s, fmt.Errorf("unknown sort direction %q", dir)
		}
	}
	return s, nil
}

func parseField(name string) (listview.Field, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "price":
		return listview.FieldPrice, nil
	case "date", "createdat", "created":
		return listview.FieldCreatedAt, nil
	case "name":
		return listview.FieldName, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", name)
	}
}

// submit отправляет форму и печатает уведомления и ошибки полей
func submit[T entity.Resource](a *App, cmd *cobra.Command, values T) error {
	ctrl := form.NewController[T](a.client)

	out, err := ctrl.Submit(cmd.Context(), values)
	renderNotifications(a.out, a.queue)
	if err != nil {
		if fields := ctrl.Errors(); len(fields) > 0 {
			fmt.Fprintln(a.errOut, "Invalid fields:")
			renderFieldErrors(a.errOut, fields)
		}
		return err
	}

	fmt.Fprintf(a.out, "%s saved: %s\n", values.Kind(), out.Saved.IRI())
	return nil
}

// remove удаляет ресурс с подтверждением
func remove[T entity.Resource](a *App, cmd *cobra.Command, iri string, yes bool) error {
	ctrl := form.NewController[T](a.client)

	var confirmer form.Confirmer = promptConfirmer{in: a.in, out: a.out}
	if yes {
		confirmer = form.AlwaysConfirm
	}

	out, err := ctrl.Delete(cmd.Context(), iri, confirmer)
	renderNotifications(a.out, a.queue)
	if err != nil {
		return err
	}
	if out == nil {
		fmt.Fprintln(a.out, "Cancelled")
	}
	return nil
}

// describeError дополняет ошибку транспорта подсказкой
func describeError(err error) error {
	if fe, ok := dataaccess.AsFetchError(err); ok && fe.Retryable() {
		return fmt.Errorf("%w (retry when the API is reachable)", err)
	}
	return err
}

var errNoChanges = errors.New("nothing to update: pass at least one field flag")
