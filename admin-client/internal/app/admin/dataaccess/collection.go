package dataaccess

import (
	"encoding/json"
	"errors"
)

// ErrNotCollection тело ответа не является страницей коллекции
var ErrNotCollection = errors.New("response is not a paged collection")

// Collection страница коллекции Hydra в нормализованном виде
// Принимает как hydra:member/hydra:totalItems/hydra:view, так и member/totalItems/view
type Collection[T any] struct {
	Context    string `json:"@context,omitempty"`
	ID         string `json:"@id,omitempty"`
	Type       string `json:"@type,omitempty"`
	Member     []T    `json:"member"`
	TotalItems int    `json:"totalItems"`
	View       *View  `json:"view,omitempty"`
}

// View ссылки навигации по страницам
type View struct {
	ID       string `json:"@id,omitempty"`
	Type     string `json:"@type,omitempty"`
	First    string `json:"first,omitempty"`
	Last     string `json:"last,omitempty"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

type rawView struct {
	ID            string `json:"@id"`
	Type          string `json:"@type"`
	First         string `json:"first"`
	HydraFirst    string `json:"hydra:first"`
	Last          string `json:"last"`
	HydraLast     string `json:"hydra:last"`
	Previous      string `json:"previous"`
	HydraPrevious string `json:"hydra:previous"`
	Next          string `json:"next"`
	HydraNext     string `json:"hydra:next"`
}

func (v *rawView) normalize() *View {
	if v == nil {
		return nil
	}
	return &View{
		ID:       v.ID,
		Type:     v.Type,
		First:    pick(v.HydraFirst, v.First),
		Last:     pick(v.HydraLast, v.Last),
		Previous: pick(v.HydraPrevious, v.Previous),
		Next:     pick(v.HydraNext, v.Next),
	}
}

func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Context     json.RawMessage `json:"@context"`
		ID          string          `json:"@id"`
		Type        string          `json:"@type"`
		HydraMember *[]T            `json:"hydra:member"`
		Member      *[]T            `json:"member"`
		HydraTotal  *int            `json:"hydra:totalItems"`
		Total       *int            `json:"totalItems"`
		HydraView   *rawView        `json:"hydra:view"`
		View        *rawView        `json:"view"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var members *[]T
	switch {
	case raw.HydraMember != nil:
		members = raw.HydraMember
	case raw.Member != nil:
		members = raw.Member
	default:
		return ErrNotCollection
	}

	out := Collection[T]{
		ID:     raw.ID,
		Type:   raw.Type,
		Member: *members,
	}
	if out.Member == nil {
		out.Member = []T{}
	}

	// @context может быть объектом, сохраняем только ссылку
	_ = json.Unmarshal(raw.Context, &out.Context)

	switch {
	case raw.HydraTotal != nil:
		out.TotalItems = *raw.HydraTotal
	case raw.Total != nil:
		out.TotalItems = *raw.Total
	default:
		out.TotalItems = len(out.Member)
	}

	if raw.HydraView != nil {
		out.View = raw.HydraView.normalize()
	} else {
		out.View = raw.View.normalize()
	}

	*c = out
	return nil
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
