package recipe

// 與後端 Gateway 的 JSON 欄位名稱一致，不可隨意更動

// Portion 份量，每個食譜最多一個
type Portion struct {
	ID          int     `json:"id"`
	Value       float64 `json:"value"`
	Measurement string  `json:"measurement"`
	RecipeID    int     `json:"recipe_id"`
}

// Ingredient 食材
// Name 是方法連結的自然鍵（以名稱比對，不是 ID）
type Ingredient struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Measurement string  `json:"measurement"`
	Value       float64 `json:"value"`
	RecipeID    int     `json:"recipe_id"`
	SortOrder   int     `json:"sortOrder"`
}

// Method 作法步驟
// Ingredients 是連結到此步驟的食材視圖，以名稱參照食譜的食材清單
type Method struct {
	ID          int          `json:"id"`
	Value       string       `json:"value"`
	SortOrder   int          `json:"sortOrder"`
	RecipeID    int          `json:"recipe_id"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
}

// Divider 食譜內的章節（如「醬料」「配料」），擁有一組食材子清單
type Divider struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	RecipeID    int          `json:"recipe_id"`
	SortOrder   int          `json:"sortOrder"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
}

// Image 食譜圖片，URL 欄位存 base64 編碼的 PNG 位元組
type Image struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	RecipeID int    `json:"recipe_id"`
}

// Recipe 食譜
// ID 為 0 表示尚未持久化，儲存時走建立而非更新
type Recipe struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Portion      *Portion     `json:"portion"`
	Image        *Image       `json:"image"`
	URL          string       `json:"url"`
	Ingredients  []Ingredient `json:"ingredients"`
	Methods      []Method     `json:"methods"`
	Dividers     []Divider    `json:"dividers,omitempty"`
	CreatedAt    string       `json:"createdAt"`
	LastEditedAt string       `json:"lastEditedAt"`
	Type         string       `json:"type"`
	SortOrder    int          `json:"sortOrder"`
}

// IsNew 檢查食譜是否尚未持久化
func (r Recipe) IsNew() bool {
	return r.ID == 0
}

// 排序鍵
const (
	// SortKeyOrder 使用者自訂順序，只有在此排序鍵下才允許拖曳重排
	SortKeyOrder        = "sortOrder"
	SortKeyName         = "name"
	SortKeyCreatedAt    = "createdAt"
	SortKeyLastEditedAt = "lastEditedAt"
	SortKeyPortion      = "portion"
)

// 排序方向
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PortionMeasurements 份量單位
var PortionMeasurements = []string{"day", "portion", "gram", "kg", "bar", "item", "mL", "L"}

// IngredientMeasurements 食材單位
var IngredientMeasurements = []string{"bottle", "can", "item", "g", "kg", "mL", "L", "tbsp", "tsp", "cup", "to taste"}

// RecipeTypes 食譜類型，空字串表示未分類
var RecipeTypes = []string{"breakfast", "lunch", "dinner", "dessert", "snack"}
