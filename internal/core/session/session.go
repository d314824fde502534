package session

import (
	"errors"
	"strconv"
	"strings"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/pkg/common"
)

// State 編輯會話狀態
type State int

const (
	// StateEmpty 會話已建立但尚未有任何變更
	StateEmpty State = iota
	// StateEditing 累積本地變更中，不發任何網路請求
	StateEditing
	// StateSaved 已由明確的儲存動作結束
	StateSaved
	// StateDiscarded 已由取消／返回結束，不發任何網路請求
	StateDiscarded
)

var (
	// ErrSessionClosed 會話已結束，不接受變更
	ErrSessionClosed = errors.New("edit session is closed")
	// ErrIndexOutOfRange 清單索引越界
	ErrIndexOutOfRange = errors.New("index out of range")
)

// CommitPayload 單次儲存的完整提交內容
// 儲存順序固定：食譜本體 → 份量 → 食材 → 步驟 → 圖片 → 章節
type CommitPayload struct {
	Recipe      recipe.Recipe
	Portion     recipe.Portion
	Ingredients []recipe.Ingredient
	Methods     []recipe.Method
	ImageBytes  []byte
	Dividers    []recipe.Divider
}

// Session 單一食譜的編輯會話
// 草稿狀態為會話私有，只在 Commit 這一個點交給 RecipeStore
type Session struct {
	state State

	recipeID  int // 0 表示建立新食譜
	portionID int

	name        string
	recipeType  string
	externalURL string

	portionValue       float64
	portionMeasurement string

	imageBytes []byte

	ingredients []recipe.Ingredient
	methods     []recipe.Method
	dividers    []recipe.Divider
}

// New 建立編輯會話
// seed 為 nil 時是建立新食譜，否則以載入的食譜作為草稿起點
func New(seed *recipe.Recipe) *Session {
	s := &Session{
		state:              StateEmpty,
		portionValue:       1,
		portionMeasurement: "portion",
	}

	if seed == nil {
		return s
	}

	s.recipeID = seed.ID
	s.name = seed.Name
	s.recipeType = seed.Type
	s.externalURL = seed.URL

	if seed.Portion != nil {
		s.portionID = seed.Portion.ID
		s.portionValue = seed.Portion.Value
		s.portionMeasurement = seed.Portion.Measurement
	}

	s.ingredients = append([]recipe.Ingredient(nil), seed.Ingredients...)
	s.methods = append([]recipe.Method(nil), seed.Methods...)
	s.dividers = append([]recipe.Divider(nil), seed.Dividers...)

	return s
}

// State 回傳目前狀態
func (s *Session) State() State {
	return s.state
}

// RecipeID 回傳草稿的食譜 ID（0 表示尚未持久化）
func (s *Session) RecipeID() int {
	return s.recipeID
}

func (s *Session) mutate() error {
	switch s.state {
	case StateSaved, StateDiscarded:
		return ErrSessionClosed
	}
	s.state = StateEditing
	return nil
}

// --- 欄位 ---

// SetName 設定食譜名稱
func (s *Session) SetName(name string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.name = name
	return nil
}

// SetType 設定食譜類型
func (s *Session) SetType(recipeType string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.recipeType = recipeType
	return nil
}

// SetExternalURL 設定來源連結
func (s *Session) SetExternalURL(url string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.externalURL = url
	return nil
}

// SetPortion 設定份量
func (s *Session) SetPortion(value float64, measurement string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.portionValue = value
	s.portionMeasurement = measurement
	return nil
}

// SetImage 設定新圖片位元組（PNG）
func (s *Session) SetImage(imageBytes []byte) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.imageBytes = imageBytes
	return nil
}

// ParseQuantity 解析數量輸入，無效輸入回退為 1
// 驗證採取寬鬆補值而非拒絕
func ParseQuantity(input string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || v < 0 {
		return 1
	}
	return v
}

// --- 食材（主清單）---

// MainIngredients 回傳主食材清單視圖（排除章節擁有的食材）
func (s *Session) MainIngredients() []recipe.Ingredient {
	return recipe.MainIngredients(s.ingredients, s.dividers)
}

// Ingredients 回傳完整食材清單
func (s *Session) Ingredients() []recipe.Ingredient {
	return append([]recipe.Ingredient(nil), s.ingredients...)
}

// AddIngredient 新增食材到主清單
func (s *Session) AddIngredient(ing recipe.Ingredient) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.ingredients = recipe.RenumberIngredients(append(s.ingredients, ing))
	return nil
}

// EditIngredientAt 編輯主清單中指定位置的食材
// 改名時連帶更新所有步驟的連結集
func (s *Session) EditIngredientAt(index int, ing recipe.Ingredient) error {
	if err := s.mutate(); err != nil {
		return err
	}

	main := s.MainIngredients()
	if index < 0 || index >= len(main) {
		return ErrIndexOutOfRange
	}

	oldName := main[index].Name
	oldID := main[index].ID

	for i := range s.ingredients {
		if s.ingredients[i].Name == oldName && s.ingredients[i].ID == oldID {
			ing.ID = s.ingredients[i].ID
			ing.SortOrder = s.ingredients[i].SortOrder
			s.ingredients[i] = ing
			break
		}
	}

	if oldName != ing.Name {
		s.methods = recipe.RenameInMethods(s.methods, oldName, ing)
	}
	return nil
}

// RemoveIngredient 從主清單移除名稱相符的食材，並從所有步驟的連結集剔除
func (s *Session) RemoveIngredient(name string) error {
	if err := s.mutate(); err != nil {
		return err
	}

	kept := make([]recipe.Ingredient, 0, len(s.ingredients))
	for _, ing := range s.ingredients {
		if ing.Name == name {
			continue
		}
		kept = append(kept, ing)
	}
	s.ingredients = recipe.RenumberIngredients(kept)
	s.methods = recipe.StripFromMethods(s.methods, name)
	return nil
}

// ReorderIngredients 在主清單視圖內單元素搬移，完成後重新編號
func (s *Session) ReorderIngredients(from, to int) error {
	if err := s.mutate(); err != nil {
		return err
	}

	main := recipe.Move(s.MainIngredients(), from, to)

	// 主視圖移動後重建完整清單：主清單在前，章節擁有的食材保持原相對順序
	owned := recipe.DividerIngredientNames(s.dividers)
	rest := make([]recipe.Ingredient, 0)
	for _, ing := range s.ingredients {
		if _, ok := owned[ing.Name]; ok {
			rest = append(rest, ing)
		}
	}
	s.ingredients = recipe.RenumberIngredients(append(main, rest...))
	return nil
}

// --- 食材（章節清單）---

// AddDividerIngredient 新增食材到指定章節
func (s *Session) AddDividerIngredient(dividerIndex int, ing recipe.Ingredient) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if dividerIndex < 0 || dividerIndex >= len(s.dividers) {
		return ErrIndexOutOfRange
	}
	d := s.dividers[dividerIndex]
	d.Ingredients = recipe.RenumberIngredients(append(d.Ingredients, ing))
	s.dividers[dividerIndex] = d
	return nil
}

// EditDividerIngredientAt 編輯指定章節中指定位置的食材
// 改名時連帶更新所有步驟的連結集
func (s *Session) EditDividerIngredientAt(dividerIndex, index int, ing recipe.Ingredient) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if dividerIndex < 0 || dividerIndex >= len(s.dividers) {
		return ErrIndexOutOfRange
	}
	d := s.dividers[dividerIndex]
	if index < 0 || index >= len(d.Ingredients) {
		return ErrIndexOutOfRange
	}
	oldName := d.Ingredients[index].Name
	ing.ID = d.Ingredients[index].ID
	ing.SortOrder = d.Ingredients[index].SortOrder
	d.Ingredients[index] = ing
	s.dividers[dividerIndex] = d

	if oldName != ing.Name {
		s.methods = recipe.RenameInMethods(s.methods, oldName, ing)
	}
	return nil
}

// RemoveDividerIngredient 從指定章節移除名稱相符的食材，並從所有步驟的連結集剔除
func (s *Session) RemoveDividerIngredient(dividerIndex int, name string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if dividerIndex < 0 || dividerIndex >= len(s.dividers) {
		return ErrIndexOutOfRange
	}
	d := s.dividers[dividerIndex]
	kept := make([]recipe.Ingredient, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		if ing.Name == name {
			continue
		}
		kept = append(kept, ing)
	}
	d.Ingredients = recipe.RenumberIngredients(kept)
	s.dividers[dividerIndex] = d
	s.methods = recipe.StripFromMethods(s.methods, name)
	return nil
}

// ReorderDividerIngredients 在指定章節的清單內單元素搬移
func (s *Session) ReorderDividerIngredients(dividerIndex, from, to int) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if dividerIndex < 0 || dividerIndex >= len(s.dividers) {
		return ErrIndexOutOfRange
	}
	d := s.dividers[dividerIndex]
	d.Ingredients = recipe.RenumberIngredients(recipe.Move(d.Ingredients, from, to))
	s.dividers[dividerIndex] = d
	return nil
}

// --- 步驟 ---

// Methods 回傳步驟清單
func (s *Session) Methods() []recipe.Method {
	return append([]recipe.Method(nil), s.methods...)
}

// AddMethod 新增步驟：連結集為空，sortOrder 接在最後
func (s *Session) AddMethod(value string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.methods = append(s.methods, recipe.Method{
		Value:       strings.TrimSpace(value),
		SortOrder:   len(s.methods) + 1,
		Ingredients: []recipe.Ingredient{},
	})
	return nil
}

// EditMethodAt 編輯步驟文字，保留既有的連結集
// 連結集不在編輯對話框的欄位內
func (s *Session) EditMethodAt(index int, value string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.methods) {
		return ErrIndexOutOfRange
	}
	s.methods[index].Value = strings.TrimSpace(value)
	return nil
}

// RemoveMethodAt 移除步驟並重新編號
func (s *Session) RemoveMethodAt(index int) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.methods) {
		return ErrIndexOutOfRange
	}
	s.methods = recipe.RenumberMethods(append(s.methods[:index], s.methods[index+1:]...))
	return nil
}

// ReorderMethods 步驟單元素搬移，完成後重新編號
func (s *Session) ReorderMethods(from, to int) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.methods = recipe.RenumberMethods(recipe.Move(s.methods, from, to))
	return nil
}

// LinkIngredientsToMethod 以名稱整組替換步驟的連結集
// 只連結目前存在於食材清單中的名稱，不是增量增刪
func (s *Session) LinkIngredientsToMethod(methodIndex int, names []string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if methodIndex < 0 || methodIndex >= len(s.methods) {
		return ErrIndexOutOfRange
	}
	s.methods[methodIndex].Ingredients = recipe.LinkByNames(s.ingredients, names)
	return nil
}

// UnlinkIngredientFromMethod 將單一食材從步驟的連結集移除
func (s *Session) UnlinkIngredientFromMethod(methodIndex int, name string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if methodIndex < 0 || methodIndex >= len(s.methods) {
		return ErrIndexOutOfRange
	}

	linked := make([]recipe.Ingredient, 0, len(s.methods[methodIndex].Ingredients))
	for _, ing := range s.methods[methodIndex].Ingredients {
		if ing.Name != name {
			linked = append(linked, ing)
		}
	}
	s.methods[methodIndex].Ingredients = linked
	return nil
}

// --- 章節 ---

// Dividers 回傳章節清單
func (s *Session) Dividers() []recipe.Divider {
	return append([]recipe.Divider(nil), s.dividers...)
}

// AddDivider 新增章節：本地 ID 取現有最大值加一，sortOrder 接在最後
func (s *Session) AddDivider(title string) error {
	if err := s.mutate(); err != nil {
		return err
	}

	maxID := 0
	for _, d := range s.dividers {
		if d.ID > maxID {
			maxID = d.ID
		}
	}

	s.dividers = recipe.RenumberDividers(append(s.dividers, recipe.Divider{
		ID:          maxID + 1,
		Title:       strings.TrimSpace(title),
		RecipeID:    s.recipeID,
		Ingredients: []recipe.Ingredient{},
	}))
	return nil
}

// EditDividerTitle 編輯章節：只替換標題，保留 ID、recipeId、sortOrder 與食材子清單
func (s *Session) EditDividerTitle(index int, title string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.dividers) {
		return ErrIndexOutOfRange
	}
	s.dividers[index].Title = strings.TrimSpace(title)
	return nil
}

// RemoveDividerAt 移除章節並重新編號
func (s *Session) RemoveDividerAt(index int) error {
	if err := s.mutate(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.dividers) {
		return ErrIndexOutOfRange
	}
	s.dividers = recipe.RenumberDividers(append(s.dividers[:index], s.dividers[index+1:]...))
	return nil
}

// ReorderDividers 章節單元素搬移，完成後重新編號
func (s *Session) ReorderDividers(from, to int) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.dividers = recipe.RenumberDividers(recipe.Move(s.dividers, from, to))
	return nil
}

// --- 結束 ---

// Commit 驗證並產生提交內容
// 名稱空白在任何網路請求之前就被擋下；會話留在編輯狀態直到 MarkSaved
func (s *Session) Commit() (*CommitPayload, error) {
	if s.state == StateSaved || s.state == StateDiscarded {
		return nil, ErrSessionClosed
	}
	if strings.TrimSpace(s.name) == "" {
		return nil, common.ErrBlankName
	}

	payload := &CommitPayload{
		Recipe: recipe.Recipe{
			ID:   s.recipeID,
			Name: strings.TrimSpace(s.name),
			Type: s.recipeType,
			URL:  s.externalURL,
		},
		Portion: recipe.Portion{
			ID:          s.portionID,
			Value:       s.portionValue,
			Measurement: s.portionMeasurement,
		},
		// 扁平食材上傳只帶主清單，章節擁有的食材走章節附加呼叫
		Ingredients: recipe.RenumberIngredients(recipe.MainIngredients(s.ingredients, s.dividers)),
		Methods:     recipe.RenumberMethods(s.methods),
		ImageBytes:  s.imageBytes,
		Dividers:    recipe.RenumberDividers(s.dividers),
	}
	return payload, nil
}

// MarkSaved 標記會話已由儲存動作結束
func (s *Session) MarkSaved() {
	s.state = StateSaved
}

// Discard 丟棄草稿，不發任何網路請求
func (s *Session) Discard() {
	s.state = StateDiscarded
}
