// Package form сценарии создания, редактирования и удаления ресурса.
package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"sync/atomic"

	"catalogadmin/admin-client/internal/app/admin/dataaccess"
	"catalogadmin/admin-client/internal/app/admin/entity"
	"catalogadmin/admin-client/internal/app/admin/notify"
	"catalogadmin/admin-client/internal/app/admin/routes"
)

var (
	// ErrSubmitInProgress предыдущая отправка еще не завершилась
	ErrSubmitInProgress = errors.New("submission already in progress")
	// ErrInvalid значения не прошли проверку до отправки
	ErrInvalid = errors.New("form has invalid fields")
	// ErrNoConfirmer удаление без Confirmer запрещено
	ErrNoConfirmer = errors.New("delete requires a confirmer")
)

// DeletePrompt вопрос перед удалением
const DeletePrompt = "Are you sure you want to delete this item?"

// Confirmer блокирующий вопрос да/нет
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc адаптер функции к Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm подтверждает без вопроса, для --yes
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Outcome результат успешной операции
type Outcome[T entity.Resource] struct {
	Saved    T
	Created  bool
	Redirect string // Куда перейти после операции
}

// Controller форма одного ресурса
// Ошибки полей хранятся между отправками, форма остается редактируемой
type Controller[T entity.Resource] struct {
	client   *dataaccess.Client
	inFlight atomic.Bool

	mu     sync.Mutex
	errors map[string]string
}

// NewController создает контроллер формы
func NewController[T entity.Resource](client *dataaccess.Client) *Controller[T] {
	return &Controller[T]{client: client}
}

// Submitting true пока запрос в полете
func (c *Controller[T]) Submitting() bool {
	return c.inFlight.Load()
}

// Errors ошибки по полям последней отправки
func (c *Controller[T]) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.errors)
}

func (c *Controller[T]) setErrors(errs map[string]string) {
	c.mu.Lock()
	c.errors = errs
	c.mu.Unlock()
}

// Submit проверяет значения и отправляет create (нет IRI) или update (есть IRI)
func (c *Controller[T]) Submit(ctx context.Context, values T) (*Outcome[T], error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer c.inFlight.Store(false)

	if errs := values.Rules().Validate(values.Values()); errs != nil {
		c.setErrors(errs.Map())
		return nil, fmt.Errorf("%w: %w", ErrInvalid, errs)
	}

	queue := notify.FromContext(ctx)
	created := values.IRI() == ""

	resp, err := dataaccess.Save(ctx, c.client, values)
	if err != nil {
		if fe, ok := dataaccess.AsFetchError(err); ok && len(fe.Fields) > 0 {
			c.setErrors(maps.Clone(fe.Fields))
		} else {
			c.setErrors(nil)
		}
		queue.Error("Error: " + err.Error())
		return nil, err
	}
	c.setErrors(nil)

	out := &Outcome[T]{Saved: resp.Data, Created: created}
	if created {
		queue.Success(values.Kind() + " created successfully")
		out.Redirect = routes.List(values.Collection())
	} else {
		queue.Success(values.Kind() + " updated successfully")
		iri := resp.Data.IRI()
		if iri == "" {
			iri = values.IRI()
		}
		out.Redirect = routes.Show(iri)
	}

	return out, nil
}

// Delete удаляет ресурс после подтверждения
// Отказ - nil, nil без запроса; ошибка оставляет запись на месте
func (c *Controller[T]) Delete(ctx context.Context, iri string, confirmer Confirmer) (*Outcome[T], error) {
	if confirmer == nil {
		return nil, ErrNoConfirmer
	}
	if iri == "" {
		return nil, errors.New("cannot delete a resource without IRI")
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer c.inFlight.Store(false)

	ok, err := confirmer.Confirm(ctx, DeletePrompt)
	if err != nil {
		return nil, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var zero T
	queue := notify.FromContext(ctx)

	if err := c.client.Delete(ctx, iri); err != nil {
		queue.Error(fmt.Sprintf("Error deleting %s: %s", strings.ToLower(zero.Kind()), err.Error()))
		return nil, err
	}

	queue.Success(zero.Kind() + " deleted successfully")
	return &Outcome[T]{Redirect: routes.List(zero.Collection())}, nil
}
