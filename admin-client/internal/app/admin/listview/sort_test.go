package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortState_Select(t *testing.T) {
	var s SortState

	_, ok := s.Primary()
	assert.False(t, ok)

	s.Select(FieldPrice)
	assert.Equal(t, []SortKey{{FieldPrice, Asc}}, s.Keys())

	s.Select(FieldPrice)
	assert.Equal(t, []SortKey{{FieldPrice, Desc}}, s.Keys())

	// Новое поле по возрастанию, прежнее первичное уходит во вторичное
	s.Select(FieldCreatedAt)
	assert.Equal(t, []SortKey{{FieldCreatedAt, Asc}, {FieldPrice, Desc}}, s.Keys())

	// Третье поле вытесняет самый старый ключ
	s.Select(FieldName)
	assert.Equal(t, []SortKey{{FieldName, Asc}, {FieldCreatedAt, Asc}}, s.Keys())

	// Вторичное поле снова становится первичным по возрастанию
	s.Select(FieldCreatedAt)
	assert.Equal(t, []SortKey{{FieldCreatedAt, Asc}, {FieldName, Asc}}, s.Keys())

	primary, ok := s.Primary()
	assert.True(t, ok)
	assert.Equal(t, FieldCreatedAt, primary.Field)
	assert.Equal(t, "asc", primary.Direction.String())

	s.Clear()
	assert.Empty(t, s.Keys())
}

func TestSortState_KeysIsCopy(t *testing.T) {
	var s SortState
	s.Select(FieldName)

	keys := s.Keys()
	keys[0].Direction = Desc

	primary, _ := s.Primary()
	assert.Equal(t, Asc, primary.Direction)
}
