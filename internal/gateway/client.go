package gateway

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/core/store"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

// Client 後端閘道的 HTTP 客戶端
// 實現 store.Gateway 介面，所有請求都帶 context 與 X-Request-ID
type Client struct {
	client *resty.Client
}

var _ store.Gateway = (*Client)(nil)

// NewClient 創建閘道客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Gateway.BaseURL).
		SetTimeout(cfg.Gateway.Timeout).
		SetRetryCount(cfg.Gateway.Retries).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			req.SetHeader("X-Request-ID", common.GenerateUUID())
			return nil
		})

	return &Client{client: client}
}

// NewClientForURL 以固定位址創建閘道客戶端（測試用）
func NewClientForURL(baseURL string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			req.SetHeader("X-Request-ID", common.GenerateUUID())
			return nil
		})

	return &Client{client: client}
}

func checkStatus(operation string, resp *resty.Response, err error) error {
	if err != nil {
		return common.NewGatewayError(operation, 0, err)
	}
	if resp.IsError() {
		return common.NewGatewayError(operation, resp.StatusCode(), fmt.Errorf("%s", resp.String()))
	}
	return nil
}

// ListRecipes 取得食譜清單
func (c *Client) ListRecipes(ctx context.Context, query store.ListQuery) ([]recipe.Recipe, error) {
	var recipes []recipe.Recipe

	req := c.client.R().
		SetContext(ctx).
		SetResult(&recipes)

	if query.Search != "" {
		req.SetQueryParam("search", query.Search)
	}
	if names := common.JoinNonEmpty(query.IngredientNames); names != "" {
		req.SetQueryParam("ingredientNames", names)
	}
	if query.SortKey != "" {
		req.SetQueryParam("sortKey", query.SortKey)
	}
	if query.SortDirection != "" {
		req.SetQueryParam("sortDirection", query.SortDirection)
	}

	resp, err := req.Get("/recipes")
	if err := checkStatus("list_recipes", resp, err); err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe 取得單一食譜
func (c *Client) GetRecipe(ctx context.Context, id int) (*recipe.Recipe, error) {
	var r recipe.Recipe
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&r).
		Get("/recipe/" + strconv.Itoa(id))
	if err := checkStatus("get_recipe", resp, err); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecipe 建立新食譜，回傳帶權威 ID 的食譜
func (c *Client) CreateRecipe(ctx context.Context, in recipe.Recipe) (*recipe.Recipe, error) {
	var r recipe.Recipe
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&r).
		Post("/recipe")
	if err := checkStatus("create_recipe", resp, err); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRecipe 更新既有食譜
func (c *Client) UpdateRecipe(ctx context.Context, in recipe.Recipe) (*recipe.Recipe, error) {
	var r recipe.Recipe
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&r).
		Put("/recipe/" + strconv.Itoa(in.ID))
	if err := checkStatus("update_recipe", resp, err); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRecipe 刪除食譜
func (c *Client) DeleteRecipe(ctx context.Context, id int) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Delete("/recipe/" + strconv.Itoa(id))
	return checkStatus("delete_recipe", resp, err)
}

// ReorderRecipes 送出整份新順序，回傳伺服器確認後的清單
func (c *Client) ReorderRecipes(ctx context.Context, recipes []recipe.Recipe) ([]recipe.Recipe, error) {
	var saved []recipe.Recipe
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(recipes).
		SetResult(&saved).
		Put("/recipes")
	if err := checkStatus("reorder_recipes", resp, err); err != nil {
		return nil, err
	}
	return saved, nil
}

// UpsertPortion 新增或更新份量
func (c *Client) UpsertPortion(ctx context.Context, recipeID int, portion recipe.Portion) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(portion).
		Post("/portion/" + strconv.Itoa(recipeID))
	return checkStatus("upsert_portion", resp, err)
}

// UpsertIngredients 整份上傳食材清單
func (c *Client) UpsertIngredients(ctx context.Context, recipeID int, ingredients []recipe.Ingredient) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(ingredients).
		Post("/ingredients/" + strconv.Itoa(recipeID))
	return checkStatus("upsert_ingredients", resp, err)
}

// UpsertMethods 整份上傳步驟清單
func (c *Client) UpsertMethods(ctx context.Context, recipeID int, methods []recipe.Method) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(methods).
		Post("/methods/" + strconv.Itoa(recipeID))
	return checkStatus("upsert_methods", resp, err)
}

// UploadImage 以 multipart 上傳 PNG 圖片，欄位名 image
func (c *Client) UploadImage(ctx context.Context, recipeID int, imageBytes []byte) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("image", fmt.Sprintf("recipe-%d.png", recipeID), bytes.NewReader(imageBytes)).
		Post("/image/" + strconv.Itoa(recipeID))
	return checkStatus("upload_image", resp, err)
}

// AddDivider 新增章節，回傳帶權威 ID 的章節
func (c *Client) AddDivider(ctx context.Context, recipeID int, divider recipe.Divider) (*recipe.Divider, error) {
	var d recipe.Divider
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(divider).
		SetResult(&d).
		Post("/divider/" + strconv.Itoa(recipeID))
	if err := checkStatus("add_divider", resp, err); err != nil {
		return nil, err
	}
	return &d, nil
}

// DividerIngredientsRequest 章節附加食材的請求本體
type DividerIngredientsRequest struct {
	RecipeID    int                 `json:"recipe_id"`
	DividerID   int                 `json:"divider_id"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
}

// AttachDividerIngredients 將食材附加到章節
func (c *Client) AttachDividerIngredients(ctx context.Context, recipeID, dividerID int, ingredients []recipe.Ingredient) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(DividerIngredientsRequest{
			RecipeID:    recipeID,
			DividerID:   dividerID,
			Ingredients: ingredients,
		}).
		Post("/divider/ingredients")
	return checkStatus("attach_divider_ingredients", resp, err)
}

// ListIngredients 取得所有食材（呼叫端自行取名稱去重）
func (c *Client) ListIngredients(ctx context.Context) ([]recipe.Ingredient, error) {
	var ingredients []recipe.Ingredient
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&ingredients).
		Get("/ingredients")
	if err := checkStatus("list_ingredients", resp, err); err != nil {
		return nil, err
	}
	return ingredients, nil
}
