package live

import (
	"encoding/json"
	"slices"

	"catalogadmin/admin-client/internal/app/admin/dataaccess"
	"catalogadmin/pkg/logger"
)

// Identified ресурс с IRI
type Identified interface {
	IRI() string
}

// MergeResult что Merge сделал со страницей
type MergeResult int

const (
	MergeIgnored  MergeResult = iota // Ресурса нет на текущей странице
	MergeReplaced                    // Элемент заменен на месте
	MergeRemoved                     // Элемент удален, TotalItems уменьшен
)

func (r MergeResult) String() string {
	switch r {
	case MergeReplaced:
		return "replaced"
	case MergeRemoved:
		return "removed"
	default:
		return "ignored"
	}
}

// Merge применяет событие к странице коллекции
// Обновление заменяет элемент с тем же IRI на той же позиции, удаление убирает ровно его
// События для ресурсов, которых нет на странице, игнорируются
func Merge[T Identified](c *dataaccess.Collection[T], ev Event) MergeResult {
	if c == nil {
		return MergeIgnored
	}

	iri := ev.IRI()
	idx := slices.IndexFunc(c.Member, func(item T) bool {
		return SameIRI(item.IRI(), iri)
	})
	if idx < 0 {
		return MergeIgnored
	}

	if ev.IsDeletion() {
		c.Member = slices.Delete(c.Member, idx, idx+1)
		if c.TotalItems > 0 {
			c.TotalItems--
		}
		return MergeRemoved
	}

	var item T
	if err := json.Unmarshal(ev.Data, &item); err != nil {
		logger.Warn().Err(err).Str("topic", ev.Topic).Msg("Skipping malformed live update")
		return MergeIgnored
	}
	if !SameIRI(item.IRI(), iri) {
		return MergeIgnored
	}

	c.Member[idx] = item
	return MergeReplaced
}
