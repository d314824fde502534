package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveForward(t *testing.T) {
	list := []string{"a", "b", "c", "d"}
	moved := Move(list, 0, 2)

	assert.Equal(t, []string{"b", "c", "a", "d"}, moved)
	// 原切片不被動到
	assert.Equal(t, []string{"a", "b", "c", "d"}, list)
}

func TestMoveBackward(t *testing.T) {
	list := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"d", "a", "b", "c"}, Move(list, 3, 0))
}

func TestMoveSamePosition(t *testing.T) {
	list := []int{1, 2, 3}
	assert.Equal(t, list, Move(list, 1, 1))
}

func TestMoveIndexOutOfRange(t *testing.T) {
	list := []int{1, 2, 3}
	assert.Equal(t, list, Move(list, -1, 2))
	assert.Equal(t, list, Move(list, 0, 5))
}

func TestRenumberIngredients(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "flour", SortOrder: 7},
		{Name: "sugar", SortOrder: 2},
		{Name: "eggs", SortOrder: 2},
	}

	renumbered := RenumberIngredients(ingredients)

	require.Len(t, renumbered, 3)
	for i, ing := range renumbered {
		assert.Equal(t, i+1, ing.SortOrder)
	}
	// 原切片保持原樣
	assert.Equal(t, 7, ingredients[0].SortOrder)
}

func TestRenumberMethodsContiguous(t *testing.T) {
	methods := []Method{
		{Value: "mix", SortOrder: 3},
		{Value: "bake", SortOrder: 9},
	}

	renumbered := RenumberMethods(methods)
	assert.Equal(t, 1, renumbered[0].SortOrder)
	assert.Equal(t, 2, renumbered[1].SortOrder)
}

func TestRenumberDividersZeroBased(t *testing.T) {
	dividers := []Divider{
		{Title: "Sauce", SortOrder: 5},
		{Title: "Topping", SortOrder: 1},
	}

	renumbered := RenumberDividers(dividers)
	assert.Equal(t, 0, renumbered[0].SortOrder)
	assert.Equal(t, 1, renumbered[1].SortOrder)
}

func TestMoveThenRenumberKeepsDensity(t *testing.T) {
	methods := []Method{
		{ID: 1, Value: "chop", SortOrder: 1},
		{ID: 2, Value: "mix", SortOrder: 2},
		{ID: 3, Value: "bake", SortOrder: 3},
	}

	renumbered := RenumberMethods(Move(methods, 2, 0))

	require.Equal(t, []int{3, 1, 2}, []int{renumbered[0].ID, renumbered[1].ID, renumbered[2].ID})
	seen := map[int]bool{}
	for i, m := range renumbered {
		assert.Equal(t, i+1, m.SortOrder)
		assert.False(t, seen[m.SortOrder])
		seen[m.SortOrder] = true
	}
}
