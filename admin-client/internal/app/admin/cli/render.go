package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"catalogadmin/admin-client/internal/app/admin/dataaccess"
	"catalogadmin/admin-client/internal/app/admin/entity"
	"catalogadmin/admin-client/internal/app/admin/listview"
	"catalogadmin/admin-client/internal/app/admin/notify"
	"catalogadmin/admin-client/internal/app/admin/routes"
)

// FormatDate дата в формате MM/DD/YYYY по UTC
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("01/02/2006")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderProducts(w io.Writer, res listview.Result[entity.Product], categoryName func(string) string) {
	if res.Empty != listview.EmptyNone {
		fmt.Fprintln(w, res.Message())
		return
	}

	fmt.Fprintln(w, res.Summary())
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCATEGORY\tCREATED")
	for _, p := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n",
			p.IRI(), p.Name, p.Price, categoryName(p.Category), FormatDate(p.CreatedAt))
	}
	tw.Flush()
}

func renderCategories(w io.Writer, res listview.Result[entity.Category]) {
	if res.Empty != listview.EmptyNone {
		fmt.Fprintln(w, res.Message())
		return
	}

	fmt.Fprintln(w, res.Summary())
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRODUCTS")
	for _, c := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.IRI(), c.Name, len(c.Products))
	}
	tw.Flush()
}

func renderPager[T any](w io.Writer, resource string, page int, c dataaccess.Collection[T]) {
	last := page
	if c.View != nil && c.View.Last != "" {
		last = routes.ParsePage(resource, c.View.Last)
	}
	fmt.Fprintf(w, "Page %d of %d (%d total)\n", page, last, c.TotalItems)
}

func renderProduct(w io.Writer, p entity.Product, categoryName string) {
	tw := newTable(w)
	fmt.Fprintf(tw, "id\t%s\n", p.IRI())
	fmt.Fprintf(tw, "name\t%s\n", p.Name)
	fmt.Fprintf(tw, "description\t%s\n", p.Description)
	fmt.Fprintf(tw, "price\t%.2f\n", p.Price)
	fmt.Fprintf(tw, "category\t%s (%s)\n", categoryName, p.Category)
	fmt.Fprintf(tw, "createdAt\t%s\n", FormatDate(p.CreatedAt))
	tw.Flush()
}

func renderCategory(w io.Writer, c entity.Category) {
	tw := newTable(w)
	fmt.Fprintf(tw, "id\t%s\n", c.IRI())
	fmt.Fprintf(tw, "name\t%s\n", c.Name)
	fmt.Fprintf(tw, "products\t%s\n", strings.Join(c.Products, ", "))
	tw.Flush()
}

func renderNotifications(w io.Writer, q *notify.Queue) {
	for _, n := range q.Drain() {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	}
}

func renderFieldErrors(w io.Writer, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
	}
}
