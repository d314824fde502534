package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameInMethodsPropagates(t *testing.T) {
	butter := Ingredient{ID: 1, Name: "butter", Value: 50, Measurement: "g"}
	flour := Ingredient{ID: 2, Name: "flour", Value: 200, Measurement: "g"}

	methods := []Method{
		{ID: 1, Value: "melt", Ingredients: []Ingredient{butter}},
		{ID: 2, Value: "combine", Ingredients: []Ingredient{butter, flour}},
		{ID: 3, Value: "rest", Ingredients: []Ingredient{}},
	}

	renamed := Ingredient{ID: 1, Name: "salted butter", Value: 50, Measurement: "g"}
	updated := RenameInMethods(methods, "butter", renamed)

	assert.Equal(t, "salted butter", updated[0].Ingredients[0].Name)
	assert.Equal(t, "salted butter", updated[1].Ingredients[0].Name)
	assert.Equal(t, "flour", updated[1].Ingredients[1].Name)
	assert.Empty(t, updated[2].Ingredients)

	// 原清單不被動到
	assert.Equal(t, "butter", methods[0].Ingredients[0].Name)
}

func TestStripFromMethodsRemovesDanglingLinks(t *testing.T) {
	butter := Ingredient{ID: 1, Name: "butter"}
	flour := Ingredient{ID: 2, Name: "flour"}

	methods := []Method{
		{ID: 1, Value: "melt", Ingredients: []Ingredient{butter}},
		{ID: 2, Value: "combine", Ingredients: []Ingredient{butter, flour}},
	}

	updated := StripFromMethods(methods, "butter")

	assert.Empty(t, updated[0].Ingredients)
	require.Len(t, updated[1].Ingredients, 1)
	assert.Equal(t, "flour", updated[1].Ingredients[0].Name)

	// 沒有任何步驟連結到已刪除的名稱
	for _, m := range updated {
		for _, ing := range m.Ingredients {
			assert.NotEqual(t, "butter", ing.Name)
		}
	}
}

func TestLinkByNamesIsFullReplace(t *testing.T) {
	ingredients := []Ingredient{
		{ID: 1, Name: "butter"},
		{ID: 2, Name: "flour"},
		{ID: 3, Name: "sugar"},
	}

	linked := LinkByNames(ingredients, []string{"sugar", "butter", "ghost"})

	require.Len(t, linked, 2)
	assert.Equal(t, "butter", linked[0].Name)
	assert.Equal(t, "sugar", linked[1].Name)
}

func TestMainIngredientsExcludesDividerOwned(t *testing.T) {
	ingredients := []Ingredient{
		{ID: 1, Name: "chicken"},
		{ID: 2, Name: "soy sauce"},
		{ID: 3, Name: "rice"},
	}
	dividers := []Divider{
		{ID: 1, Title: "Marinade", Ingredients: []Ingredient{{ID: 4, Name: "soy sauce"}}},
	}

	main := MainIngredients(ingredients, dividers)

	require.Len(t, main, 2)
	assert.Equal(t, "chicken", main[0].Name)
	assert.Equal(t, "rice", main[1].Name)

	// 主清單與章節清單以名稱互斥
	owned := DividerIngredientNames(dividers)
	for _, ing := range main {
		_, ok := owned[ing.Name]
		assert.False(t, ok)
	}
}

func TestMainIngredientsNoDividers(t *testing.T) {
	ingredients := []Ingredient{{ID: 1, Name: "salt"}}
	assert.Equal(t, ingredients, MainIngredients(ingredients, nil))
}
