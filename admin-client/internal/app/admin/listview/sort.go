package listview

// Field поле сортировки
type Field string

const (
	FieldName      Field = "name"
	FieldPrice     Field = "price"
	FieldCreatedAt Field = "createdAt"
)

// Direction направление сортировки
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// SortKey поле и направление
type SortKey struct {
	Field     Field
	Direction Direction
}

// maxSortKeys первичный и вторичный ключ
const maxSortKeys = 2

// SortState до двух ключей сортировки, первый - первичный
// Нулевое значение - без сортировки
type SortState struct {
	keys []SortKey
}

// Select выбирает поле сортировки
// Повторный выбор первичного поля меняет направление,
// новое поле становится первичным по возрастанию, прежнее первичное - вторичным
func (s *SortState) Select(field Field) {
	if len(s.keys) > 0 && s.keys[0].Field == field {
		if s.keys[0].Direction == Asc {
			s.keys[0].Direction = Desc
		} else {
			s.keys[0].Direction = Asc
		}
		return
	}

	keys := []SortKey{{Field: field, Direction: Asc}}
	for _, k := range s.keys {
		if k.Field != field && len(keys) < maxSortKeys {
			keys = append(keys, k)
		}
	}
	s.keys = keys
}

// Clear сбрасывает сортировку
func (s *SortState) Clear() {
	s.keys = nil
}

// Keys ключи сортировки, первичный первым
func (s SortState) Keys() []SortKey {
	out := make([]SortKey, len(s.keys))
	copy(out, s.keys)
	return out
}

// Primary первичный ключ, ok=false если сортировка не выбрана
func (s SortState) Primary() (SortKey, bool) {
	if len(s.keys) == 0 {
		return SortKey{}, false
	}
	return s.keys[0], true
}
