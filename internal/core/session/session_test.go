package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/pkg/common"
)

func editSeed() *recipe.Recipe {
	return &recipe.Recipe{
		ID:   7,
		Name: "Fried rice",
		Type: "dinner",
		Portion: &recipe.Portion{ID: 3, Value: 2, Measurement: "portion", RecipeID: 7},
		Ingredients: []recipe.Ingredient{
			{ID: 1, Name: "rice", Value: 300, Measurement: "g", RecipeID: 7, SortOrder: 1},
			{ID: 2, Name: "egg", Value: 2, Measurement: "item", RecipeID: 7, SortOrder: 2},
			{ID: 3, Name: "soy sauce", Value: 1, Measurement: "tbsp", RecipeID: 7, SortOrder: 3},
		},
		Methods: []recipe.Method{
			{ID: 1, Value: "cook rice", SortOrder: 1, RecipeID: 7, Ingredients: []recipe.Ingredient{{ID: 1, Name: "rice"}}},
			{ID: 2, Value: "scramble eggs", SortOrder: 2, RecipeID: 7, Ingredients: []recipe.Ingredient{{ID: 2, Name: "egg"}}},
		},
	}
}

func TestNewSessionStartsEmpty(t *testing.T) {
	s := New(nil)
	assert.Equal(t, StateEmpty, s.State())
	assert.Equal(t, 0, s.RecipeID())
}

func TestFirstMutationEntersEditing(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.SetName("Pancakes"))
	assert.Equal(t, StateEditing, s.State())
}

func TestClosedSessionRejectsMutations(t *testing.T) {
	s := New(editSeed())
	s.Discard()

	assert.ErrorIs(t, s.SetName("changed"), ErrSessionClosed)
	assert.ErrorIs(t, s.AddMethod("stir"), ErrSessionClosed)

	_, err := s.Commit()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCommitRejectsBlankName(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.SetName("   "))

	_, err := s.Commit()
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
	// 驗證失敗後還能繼續編輯
	assert.Equal(t, StateEditing, s.State())
}

func TestEditIngredientRenamePropagatesToLinks(t *testing.T) {
	s := New(editSeed())

	require.NoError(t, s.EditIngredientAt(1, recipe.Ingredient{Name: "duck egg", Value: 2, Measurement: "item"}))

	methods := s.Methods()
	require.Len(t, methods[1].Ingredients, 1)
	assert.Equal(t, "duck egg", methods[1].Ingredients[0].Name)
	// 其他步驟的連結不受影響
	assert.Equal(t, "rice", methods[0].Ingredients[0].Name)
	// 編輯保留原本的 ID 與 sortOrder
	assert.Equal(t, 2, s.Ingredients()[1].ID)
	assert.Equal(t, 2, s.Ingredients()[1].SortOrder)
}

func TestRemoveIngredientStripsLinks(t *testing.T) {
	s := New(editSeed())

	require.NoError(t, s.RemoveIngredient("egg"))

	for _, ing := range s.Ingredients() {
		assert.NotEqual(t, "egg", ing.Name)
	}
	for _, m := range s.Methods() {
		for _, ing := range m.Ingredients {
			assert.NotEqual(t, "egg", ing.Name)
		}
	}
	// 移除後 sortOrder 重新編密
	for i, ing := range s.Ingredients() {
		assert.Equal(t, i+1, ing.SortOrder)
	}
}

func TestAddMethodAppendsWithEmptyLinks(t *testing.T) {
	s := New(editSeed())

	require.NoError(t, s.AddMethod("serve hot"))

	methods := s.Methods()
	require.Len(t, methods, 3)
	assert.Equal(t, "serve hot", methods[2].Value)
	assert.Equal(t, 3, methods[2].SortOrder)
	assert.Empty(t, methods[2].Ingredients)
}

func TestEditMethodPreservesLinks(t *testing.T) {
	s := New(editSeed())

	require.NoError(t, s.EditMethodAt(0, "rinse and cook rice"))

	methods := s.Methods()
	assert.Equal(t, "rinse and cook rice", methods[0].Value)
	require.Len(t, methods[0].Ingredients, 1)
	assert.Equal(t, "rice", methods[0].Ingredients[0].Name)
	assert.Equal(t, 1, methods[0].ID)
}

func TestLinkIngredientsFullReplace(t *testing.T) {
	s := New(editSeed())

	require.NoError(t, s.LinkIngredientsToMethod(0, []string{"soy sauce", "unknown"}))

	methods := s.Methods()
	require.Len(t, methods[0].Ingredients, 1)
	assert.Equal(t, "soy sauce", methods[0].Ingredients[0].Name)
}

func TestUnlinkSingleIngredient(t *testing.T) {
	s := New(editSeed())

	require.NoError(t, s.UnlinkIngredientFromMethod(1, "egg"))
	assert.Empty(t, s.Methods()[1].Ingredients)
}

func TestReorderMethodsRenumbers(t *testing.T) {
	s := New(editSeed())

	require.NoError(t, s.ReorderMethods(1, 0))

	methods := s.Methods()
	assert.Equal(t, "scramble eggs", methods[0].Value)
	assert.Equal(t, 1, methods[0].SortOrder)
	assert.Equal(t, "cook rice", methods[1].Value)
	assert.Equal(t, 2, methods[1].SortOrder)
}

func TestAddDividerAssignsLocalID(t *testing.T) {
	s := New(editSeed())

	require.NoError(t, s.AddDivider("Sauce"))
	require.NoError(t, s.AddDivider("Garnish"))

	dividers := s.Dividers()
	require.Len(t, dividers, 2)
	assert.Equal(t, 1, dividers[0].ID)
	assert.Equal(t, 2, dividers[1].ID)
	assert.Equal(t, 0, dividers[0].SortOrder)
	assert.Equal(t, 1, dividers[1].SortOrder)
}

func TestEditDividerReplacesTitleOnly(t *testing.T) {
	s := New(editSeed())
	require.NoError(t, s.AddDivider("Sauce"))
	require.NoError(t, s.AddDividerIngredient(0, recipe.Ingredient{Name: "vinegar", Value: 1, Measurement: "tbsp"}))

	require.NoError(t, s.EditDividerTitle(0, "Dressing"))

	d := s.Dividers()[0]
	assert.Equal(t, "Dressing", d.Title)
	assert.Equal(t, 1, d.ID)
	require.Len(t, d.Ingredients, 1)
	assert.Equal(t, "vinegar", d.Ingredients[0].Name)
}

func TestDividerScopedIngredientOps(t *testing.T) {
	s := New(editSeed())
	require.NoError(t, s.AddDivider("Sauce"))
	require.NoError(t, s.AddDividerIngredient(0, recipe.Ingredient{Name: "vinegar", Value: 1, Measurement: "tbsp"}))
	require.NoError(t, s.AddDividerIngredient(0, recipe.Ingredient{Name: "mirin", Value: 1, Measurement: "tbsp"}))

	require.NoError(t, s.ReorderDividerIngredients(0, 1, 0))
	d := s.Dividers()[0]
	assert.Equal(t, "mirin", d.Ingredients[0].Name)
	assert.Equal(t, 1, d.Ingredients[0].SortOrder)

	require.NoError(t, s.RemoveDividerIngredient(0, "vinegar"))
	require.Len(t, s.Dividers()[0].Ingredients, 1)
}

// 伺服器回傳的食譜可能在步驟連結集裡引用章節擁有的食材
func sectionedSeed() *recipe.Recipe {
	seed := editSeed()
	seed.Dividers = []recipe.Divider{
		{ID: 9, Title: "Sauce", SortOrder: 0, RecipeID: 7, Ingredients: []recipe.Ingredient{
			{ID: 4, Name: "vinegar", Value: 1, Measurement: "tbsp", RecipeID: 7, SortOrder: 1},
		}},
	}
	seed.Methods = append(seed.Methods, recipe.Method{
		ID: 3, Value: "mix the sauce", SortOrder: 3, RecipeID: 7,
		Ingredients: []recipe.Ingredient{{ID: 4, Name: "vinegar"}},
	})
	return seed
}

func TestRemoveDividerIngredientStripsLinks(t *testing.T) {
	s := New(sectionedSeed())

	require.NoError(t, s.RemoveDividerIngredient(0, "vinegar"))

	assert.Empty(t, s.Dividers()[0].Ingredients)
	for _, m := range s.Methods() {
		for _, ing := range m.Ingredients {
			assert.NotEqual(t, "vinegar", ing.Name)
		}
	}
}

func TestEditDividerIngredientRenamePropagatesToLinks(t *testing.T) {
	s := New(sectionedSeed())

	require.NoError(t, s.EditDividerIngredientAt(0, 0, recipe.Ingredient{Name: "rice vinegar", Value: 2, Measurement: "tbsp"}))

	d := s.Dividers()[0]
	require.Len(t, d.Ingredients, 1)
	assert.Equal(t, "rice vinegar", d.Ingredients[0].Name)
	// 編輯保留原本的 ID 與 sortOrder
	assert.Equal(t, 4, d.Ingredients[0].ID)
	assert.Equal(t, 1, d.Ingredients[0].SortOrder)

	methods := s.Methods()
	require.Len(t, methods[2].Ingredients, 1)
	assert.Equal(t, "rice vinegar", methods[2].Ingredients[0].Name)
	// 其他步驟的連結不受影響
	assert.Equal(t, "rice", methods[0].Ingredients[0].Name)
}

func TestMainListExcludesDividerIngredients(t *testing.T) {
	s := New(editSeed())
	require.NoError(t, s.AddDivider("Sauce"))
	// 與主清單同名的食材被章節接管後，主視圖不再顯示它
	require.NoError(t, s.AddDividerIngredient(0, recipe.Ingredient{Name: "soy sauce", Value: 1, Measurement: "tbsp"}))

	main := s.MainIngredients()
	require.Len(t, main, 2)
	for _, ing := range main {
		assert.NotEqual(t, "soy sauce", ing.Name)
	}
}

func TestCommitPayloadShape(t *testing.T) {
	s := New(editSeed())
	require.NoError(t, s.AddDivider("Sauce"))
	require.NoError(t, s.AddDividerIngredient(0, recipe.Ingredient{Name: "soy sauce", Value: 1, Measurement: "tbsp"}))
	require.NoError(t, s.SetPortion(4, "portion"))
	require.NoError(t, s.SetImage([]byte{0x89, 0x50, 0x4e, 0x47}))

	payload, err := s.Commit()
	require.NoError(t, err)

	assert.Equal(t, 7, payload.Recipe.ID)
	assert.Equal(t, "Fried rice", payload.Recipe.Name)
	assert.Equal(t, 4.0, payload.Portion.Value)

	// 扁平食材只帶主清單，章節食材走附加呼叫
	require.Len(t, payload.Ingredients, 2)
	for _, ing := range payload.Ingredients {
		assert.NotEqual(t, "soy sauce", ing.Name)
	}
	require.Len(t, payload.Dividers, 1)
	require.Len(t, payload.Dividers[0].Ingredients, 1)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, payload.ImageBytes)

	// Commit 不結束會話，儲存成功後才標記
	assert.Equal(t, StateEditing, s.State())
	s.MarkSaved()
	assert.Equal(t, StateSaved, s.State())
}

func TestParseQuantityFallback(t *testing.T) {
	assert.Equal(t, 2.5, ParseQuantity(" 2.5 "))
	assert.Equal(t, 1.0, ParseQuantity("abc"))
	assert.Equal(t, 1.0, ParseQuantity("-3"))
	assert.Equal(t, 1.0, ParseQuantity(""))
}

func TestSeedFromParsedDefaults(t *testing.T) {
	s := SeedFromParsed("Pasta", ParsedSeed{
		URL: "https://example.com/pasta",
		Ingredients: []ParsedIngredient{
			{Name: "spaghetti", Value: 0, Measurement: "g"},
			{Name: "tomato", Value: 3, Measurement: "item"},
		},
		Methods: []ParsedMethod{{Value: "boil"}, {Value: "toss"}},
		Portion: &ParsedPortion{Value: 0, Measurement: ""},
	})

	assert.Equal(t, StateEditing, s.State())

	payload, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, "Pasta", payload.Recipe.Name)
	assert.Equal(t, "https://example.com/pasta", payload.Recipe.URL)

	// 無效數量補 1，份量單位補 portion
	assert.Equal(t, 1.0, payload.Ingredients[0].Value)
	assert.Equal(t, 3.0, payload.Ingredients[1].Value)
	assert.Equal(t, 1.0, payload.Portion.Value)
	assert.Equal(t, "portion", payload.Portion.Measurement)

	require.Len(t, payload.Methods, 2)
	assert.Equal(t, 1, payload.Methods[0].SortOrder)
	assert.Empty(t, payload.Methods[0].Ingredients)
}
