package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"catalogadmin/admin-client/internal/app/admin/dataaccess"
	"catalogadmin/admin-client/internal/app/admin/entity"
	"catalogadmin/admin-client/internal/app/admin/listview"
	"catalogadmin/admin-client/internal/app/admin/live"
	"catalogadmin/pkg/logger"

	"github.com/spf13/cobra"
)

const browseHelp = `Commands:
  /text            search by name, description or price ("/" clears)
  sort FIELD       sort by price, date or name (repeat to toggle direction)
  category IRI     filter by category ("category" clears)
  page N           load another page
  clear            reset search, filter and sort
  quit             leave`

func (a *App) productsBrowseCommand() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactive product list with live updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.browse(cmd.Context(), page)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "first page to show")
	return cmd
}

// browseView состояние интерактивного списка
type browseView struct {
	page    int
	query   listview.Query
	catalog *dataaccess.Catalog
	sync    *live.Sync[entity.Product]
	cancel  context.CancelFunc
}

func (v *browseView) close() {
	if v.cancel != nil {
		v.cancel()
	}
}

// load загружает страницу и подписывается на изменения товаров
func (a *App) load(ctx context.Context, v *browseView, page int) error {
	catalog, err := a.client.FetchAll(ctx, page)
	if err != nil {
		return err
	}

	v.close()
	subCtx, cancel := context.WithCancel(ctx)

	collection := &catalog.Products.Data
	sync, err := live.NewSync(subCtx, a.subscriber, catalog.Products.HubURL, []string{entity.ProductsPath}, collection)
	if err != nil {
		logger.Warn().Err(err).Msg("Live updates unavailable")
		a.queue.Info("Live updates unavailable, showing a static page")
		sync, _ = live.NewSync[entity.Product](subCtx, nil, "", nil, collection)
	}

	v.page = page
	v.catalog = catalog
	v.sync = sync
	v.cancel = cancel
	return nil
}

func (a *App) render(v *browseView) {
	renderProducts(a.out, listview.Products(v.sync.Collection().Member, v.query), v.catalog.CategoryName)
	renderPager(a.out, "products", v.page, *v.sync.Collection())
	renderNotifications(a.out, a.queue)
	fmt.Fprint(a.out, "> ")
}

func (a *App) browse(ctx context.Context, page int) error {
	v := &browseView{}
	if err := a.load(ctx, v, page); err != nil {
		return describeError(err)
	}
	defer v.close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := a.in.ReadString('\n')
			if line != "" {
				select {
				case lines <- strings.TrimSpace(line):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	fmt.Fprintln(a.out, browseHelp)
	a.render(v)

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := a.handleBrowseCommand(ctx, v, line)
			if err != nil {
				a.queue.Error(err.Error())
			}
			if quit {
				return nil
			}
			a.render(v)

		case ev, ok := <-v.sync.Events():
			if !ok {
				a.queue.Info("Live updates disconnected")
				collection := v.sync.Collection()
				v.sync, _ = live.NewSync[entity.Product](ctx, nil, "", nil, collection)
				a.render(v)
				continue
			}
			// Сервер уже изменил запись, закешированные страницы устарели
			// даже если событие не касается текущей страницы
			a.client.Invalidate(ev.IRI())
			switch v.sync.Apply(ev) {
			case live.MergeReplaced:
				a.queue.Info("Product updated: " + ev.IRI())
			case live.MergeRemoved:
				a.queue.Info("Product removed: " + ev.IRI())
			default:
				continue
			}
			a.render(v)
		}
	}
}

// handleBrowseCommand меняет состояние списка, возвращает true для выхода
func (a *App) handleBrowseCommand(ctx context.Context, v *browseView, line string) (bool, error) {
	if strings.HasPrefix(line, "/") {
		// Пробелы после "/" при вводе в терминале не считаются частью поиска
		v.query.Search = strings.TrimSpace(strings.TrimPrefix(line, "/"))
		return false, nil
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "sort":
		field, err := parseField(arg)
		if err != nil {
			return false, err
		}
		v.query.Sort.Select(field)
	case "category":
		if arg == "" {
			v.query.Category = ""
		} else {
			v.query.Category = normalizeIRI(entity.CategoriesPath, arg)
		}
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return false, fmt.Errorf("invalid page %q", arg)
		}
		if err := a.load(ctx, v, n); err != nil {
			return false, describeError(err)
		}
	case "clear":
		v.query = listview.Query{}
	case "help":
		fmt.Fprintln(a.out, browseHelp)
	default:
		return false, fmt.Errorf("unknown command %q, type help", command)
	}
	return false, nil
}
