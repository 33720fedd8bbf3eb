// Package cli команды catalog-admin.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"catalogadmin/admin-client/internal/app/admin/config"
	"catalogadmin/admin-client/internal/app/admin/dataaccess"
	"catalogadmin/admin-client/internal/app/admin/live"
	"catalogadmin/admin-client/internal/app/admin/notify"

	"github.com/spf13/cobra"
)

// App зависимости команд
type App struct {
	cfg        *config.Config
	client     *dataaccess.Client
	subscriber live.Subscriber
	queue      *notify.Queue

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	entrypoint   string
	itemsPerPage int
}

// Option настройка App
type Option func(*App)

// WithIO подменяет stdin/stdout/stderr, используется в тестах
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in = bufio.NewReader(in)
		a.out = out
		a.errOut = errOut
	}
}

// WithSubscriber подменяет подписку на live обновления
func WithSubscriber(sub live.Subscriber) Option {
	return func(a *App) {
		a.subscriber = sub
	}
}

// NewRootCommand собирает дерево команд
func NewRootCommand(cfg *config.Config, opts ...Option) *cobra.Command {
	a := &App{
		cfg:        cfg,
		subscriber: live.NewWSSubscriber(32),
		queue:      notify.NewQueue(cfg.Notify.Dismiss),
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:           "catalog-admin",
		Short:         "Admin client for the catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.entrypoint, "entrypoint", cfg.API.Entrypoint, "catalog API base URL")
	root.PersistentFlags().IntVar(&a.itemsPerPage, "items-per-page", cfg.API.ItemsPerPage, "page size for lists")

	root.AddCommand(a.categoriesCommand(), a.productsCommand())
	return root
}

func (a *App) init(cmd *cobra.Command) error {
	if a.itemsPerPage < 1 || a.itemsPerPage > 100 {
		return fmt.Errorf("--items-per-page must be between 1 and 100")
	}

	client, err := dataaccess.NewClient(a.entrypoint,
		dataaccess.WithHTTPClient(&http.Client{Timeout: a.cfg.API.RequestTimeout}),
		dataaccess.WithCacheTTL(a.cfg.Cache.TTL),
		dataaccess.WithItemsPerPage(a.itemsPerPage),
	)
	if err != nil {
		return err
	}
	a.client = client

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(notify.WithQueue(ctx, a.queue))
	return nil
}

// normalizeIRI дополняет голый идентификатор путем коллекции
func normalizeIRI(collection, arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "/") || strings.Contains(arg, "://") {
		return arg
	}
	return collection + "/" + arg
}

// promptConfirmer спрашивает подтверждение в терминале
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
