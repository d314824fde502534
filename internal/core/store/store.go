package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/core/session"
	"recipe-manager/internal/pkg/common"
)

// RecipeStore 食譜清單的本地權威狀態
// 清單本體與重排工作副本分開持有，重排在明確儲存前不落地
type RecipeStore struct {
	mu sync.RWMutex
	gw Gateway

	recipes   []recipe.Recipe // 最後一次成功載入／儲存的清單
	working   []recipe.Recipe // 重排中的工作副本
	reordered bool

	search        string
	filterNames   []string
	sortKey       string
	sortDirection string

	ingredientNames []string

	splitView   bool
	cookingMode bool
}

// NewRecipeStore 建立食譜清單狀態
func NewRecipeStore(gw Gateway) *RecipeStore {
	return &RecipeStore{
		gw:            gw,
		sortKey:       recipe.SortKeyOrder,
		sortDirection: recipe.SortAsc,
	}
}

// Recipes 回傳目前顯示的清單：重排中回傳工作副本，否則回傳清單本體
func (rs *RecipeStore) Recipes() []recipe.Recipe {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if rs.reordered {
		return append([]recipe.Recipe(nil), rs.working...)
	}
	return append([]recipe.Recipe(nil), rs.recipes...)
}

// IsReordered 是否有未儲存的重排
func (rs *RecipeStore) IsReordered() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.reordered
}

// Query 回傳目前的查詢條件
func (rs *RecipeStore) Query() ListQuery {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return ListQuery{
		Search:          rs.search,
		IngredientNames: append([]string(nil), rs.filterNames...),
		SortKey:         rs.sortKey,
		SortDirection:   rs.sortDirection,
	}
}

// IngredientNames 回傳最近一次載入的食材名稱目錄（去重、保序）
func (rs *RecipeStore) IngredientNames() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return append([]string(nil), rs.ingredientNames...)
}

// Load 以目前的查詢條件重新載入清單
// 成功才替換清單本體並清除重排狀態，失敗保留原狀
func (rs *RecipeStore) Load(ctx context.Context) error {
	start := time.Now()

	query := rs.Query()
	recipes, err := rs.gw.ListRecipes(ctx, query)
	common.LogGatewayCall("list_recipes", time.Since(start), err)
	if err != nil {
		return err
	}

	catalog, err := rs.gw.ListIngredients(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(catalog))
	for _, ing := range catalog {
		names = append(names, ing.Name)
	}

	rs.mu.Lock()
	rs.recipes = recipes
	rs.working = nil
	rs.reordered = false
	rs.ingredientNames = common.DistinctStrings(names)
	rs.mu.Unlock()

	common.LogDebug("食譜清單載入完成",
		zap.Int("count", len(recipes)),
		zap.String("sort_key", query.SortKey))
	return nil
}

// MoveRecipe 重排工作副本中的單元素搬移
// 只在排序鍵為手動順序時允許；第一次搬移才建立工作副本
func (rs *RecipeStore) MoveRecipe(from, to int) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.sortKey != recipe.SortKeyOrder {
		return common.NewValidationError("手動調整順序僅在自訂排序下可用")
	}
	if !rs.reordered {
		rs.working = append([]recipe.Recipe(nil), rs.recipes...)
		rs.reordered = true
	}
	rs.working = recipe.Move(rs.working, from, to)
	return nil
}

// CommitReorder 將工作副本送交後端並以回應替換清單本體
func (rs *RecipeStore) CommitReorder(ctx context.Context) error {
	rs.mu.RLock()
	reordered := rs.reordered
	working := append([]recipe.Recipe(nil), rs.working...)
	rs.mu.RUnlock()

	if !reordered {
		return nil
	}

	start := time.Now()
	saved, err := rs.gw.ReorderRecipes(ctx, working)
	common.LogGatewayCall("reorder_recipes", time.Since(start), err)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	rs.recipes = saved
	rs.working = nil
	rs.reordered = false
	rs.mu.Unlock()
	return nil
}

// RevertReorder 丟棄工作副本，清單本體不動
func (rs *RecipeStore) RevertReorder() {
	rs.mu.Lock()
	rs.working = nil
	rs.reordered = false
	rs.mu.Unlock()
}

// SetSearch 更新搜尋字串並重新載入
func (rs *RecipeStore) SetSearch(ctx context.Context, search string) error {
	rs.revertIfPending()
	rs.mu.Lock()
	rs.search = search
	rs.mu.Unlock()
	return rs.Load(ctx)
}

// SetFilter 更新食材名稱篩選並重新載入
func (rs *RecipeStore) SetFilter(ctx context.Context, names []string) error {
	rs.revertIfPending()
	rs.mu.Lock()
	rs.filterNames = append([]string(nil), names...)
	rs.mu.Unlock()
	return rs.Load(ctx)
}

// SetSort 更新排序條件並重新載入
// 帶著未儲存重排離開自訂排序時隱含還原，絕不隱含送出
func (rs *RecipeStore) SetSort(ctx context.Context, sortKey, sortDirection string) error {
	rs.revertIfPending()
	rs.mu.Lock()
	rs.sortKey = sortKey
	rs.sortDirection = sortDirection
	rs.mu.Unlock()
	return rs.Load(ctx)
}

func (rs *RecipeStore) revertIfPending() {
	rs.mu.Lock()
	if rs.reordered {
		common.LogInfo("查詢條件變更，還原未儲存的重排")
		rs.working = nil
		rs.reordered = false
	}
	rs.mu.Unlock()
}

// Save 依固定順序持久化一次編輯會話的提交內容
// 任一步失敗立刻中止並回報失敗步驟，已成功的步驟不回滾
func (rs *RecipeStore) Save(ctx context.Context, payload *session.CommitPayload) (*recipe.Recipe, error) {
	start := time.Now()

	var (
		saved *recipe.Recipe
		err   error
	)
	if payload.Recipe.IsNew() {
		saved, err = rs.gw.CreateRecipe(ctx, payload.Recipe)
	} else {
		saved, err = rs.gw.UpdateRecipe(ctx, payload.Recipe)
	}
	if err != nil {
		// 第一步失敗時尚未寫入任何資料，不構成部分儲存
		return nil, err
	}
	recipeID := saved.ID

	if err := rs.gw.UpsertPortion(ctx, recipeID, payload.Portion); err != nil {
		return nil, &common.PartialSaveError{Step: "portion", RecipeID: recipeID, Err: err}
	}
	if err := rs.gw.UpsertIngredients(ctx, recipeID, payload.Ingredients); err != nil {
		return nil, &common.PartialSaveError{Step: "ingredients", RecipeID: recipeID, Err: err}
	}
	if err := rs.gw.UpsertMethods(ctx, recipeID, payload.Methods); err != nil {
		return nil, &common.PartialSaveError{Step: "methods", RecipeID: recipeID, Err: err}
	}
	if len(payload.ImageBytes) > 0 {
		if err := rs.gw.UploadImage(ctx, recipeID, payload.ImageBytes); err != nil {
			return nil, &common.PartialSaveError{Step: "image", RecipeID: recipeID, Err: err}
		}
	}
	for _, d := range payload.Dividers {
		d.RecipeID = recipeID
		created, err := rs.gw.AddDivider(ctx, recipeID, d)
		if err != nil {
			return nil, &common.PartialSaveError{Step: "divider", RecipeID: recipeID, Err: err}
		}
		if len(d.Ingredients) > 0 {
			if err := rs.gw.AttachDividerIngredients(ctx, recipeID, created.ID, d.Ingredients); err != nil {
				return nil, &common.PartialSaveError{Step: "divider_ingredients", RecipeID: recipeID, Err: err}
			}
		}
	}

	authoritative, err := rs.gw.GetRecipe(ctx, recipeID)
	common.LogGatewayCall("save_recipe", time.Since(start), err)
	if err != nil {
		return nil, &common.PartialSaveError{Step: "refresh", RecipeID: recipeID, Err: err}
	}

	rs.mu.Lock()
	replaced := false
	for i := range rs.recipes {
		if rs.recipes[i].ID == authoritative.ID {
			rs.recipes[i] = *authoritative
			replaced = true
			break
		}
	}
	if !replaced {
		rs.recipes = append(rs.recipes, *authoritative)
	}
	rs.mu.Unlock()

	common.LogInfo("食譜儲存完成",
		zap.Int("recipe_id", authoritative.ID),
		zap.String("name", authoritative.Name))
	return authoritative, nil
}

// Delete 刪除食譜後重新載入清單
func (rs *RecipeStore) Delete(ctx context.Context, id int) error {
	start := time.Now()
	err := rs.gw.DeleteRecipe(ctx, id)
	common.LogGatewayCall("delete_recipe", time.Since(start), err)
	if err != nil {
		return err
	}
	return rs.Load(ctx)
}

// ToggleSplitView 切換雙欄顯示
func (rs *RecipeStore) ToggleSplitView() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.splitView = !rs.splitView
	return rs.splitView
}

// SetCookingMode 切換烹飪模式
func (rs *RecipeStore) SetCookingMode(on bool) {
	rs.mu.Lock()
	rs.cookingMode = on
	rs.mu.Unlock()
}

// CookingMode 是否處於烹飪模式
func (rs *RecipeStore) CookingMode() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.cookingMode
}
