package store

import (
	"context"

	"recipe-manager/internal/core/recipe"
)

// ListQuery 食譜清單的查詢條件
type ListQuery struct {
	Search          string
	IngredientNames []string
	SortKey         string
	SortDirection   string
}

// Gateway 後端閘道的完整操作面
// 所有持久化都走這裡，核心套件不認識 HTTP 細節
type Gateway interface {
	ListRecipes(ctx context.Context, query ListQuery) ([]recipe.Recipe, error)
	GetRecipe(ctx context.Context, id int) (*recipe.Recipe, error)
	CreateRecipe(ctx context.Context, r recipe.Recipe) (*recipe.Recipe, error)
	UpdateRecipe(ctx context.Context, r recipe.Recipe) (*recipe.Recipe, error)
	DeleteRecipe(ctx context.Context, id int) error
	ReorderRecipes(ctx context.Context, recipes []recipe.Recipe) ([]recipe.Recipe, error)

	UpsertPortion(ctx context.Context, recipeID int, portion recipe.Portion) error
	UpsertIngredients(ctx context.Context, recipeID int, ingredients []recipe.Ingredient) error
	UpsertMethods(ctx context.Context, recipeID int, methods []recipe.Method) error
	UploadImage(ctx context.Context, recipeID int, imageBytes []byte) error

	AddDivider(ctx context.Context, recipeID int, divider recipe.Divider) (*recipe.Divider, error)
	AttachDividerIngredients(ctx context.Context, recipeID, dividerID int, ingredients []recipe.Ingredient) error

	ListIngredients(ctx context.Context) ([]recipe.Ingredient, error)
}
