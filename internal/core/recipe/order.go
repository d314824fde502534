package recipe

// 可重排清單的共用操作
// 「移動」只針對順序本身，不改變元素身份，避免拖曳時的錯位與重複鍵

// Move 將清單中 from 位置的元素移動到 to 位置（單元素搬移，不是交換）
// 索引越界時回傳原清單不動
func Move[T any](list []T, from, to int) []T {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return list
	}

	result := make([]T, 0, len(list))
	result = append(result, list...)

	item := result[from]
	result = append(result[:from], result[from+1:]...)

	// 重新插入到目標位置
	result = append(result, item)
	copy(result[to+1:], result[to:])
	result[to] = item

	return result
}

// RenumberIngredients 重新編號食材的 sortOrder（1 起算，密集無空洞）
func RenumberIngredients(list []Ingredient) []Ingredient {
	result := make([]Ingredient, len(list))
	copy(result, list)
	for i := range result {
		result[i].SortOrder = i + 1
	}
	return result
}

// RenumberMethods 重新編號步驟的 sortOrder（1 起算，同時是顯示編號）
func RenumberMethods(list []Method) []Method {
	result := make([]Method, len(list))
	copy(result, list)
	for i := range result {
		result[i].SortOrder = i + 1
	}
	return result
}

// RenumberDividers 重新編號章節的 sortOrder（0 起算）
func RenumberDividers(list []Divider) []Divider {
	result := make([]Divider, len(list))
	copy(result, list)
	for i := range result {
		result[i].SortOrder = i
	}
	return result
}

// RenumberRecipes 重新編號食譜的 sortOrder（1 起算，與後端一致）
func RenumberRecipes(list []Recipe) []Recipe {
	result := make([]Recipe, len(list))
	copy(result, list)
	for i := range result {
		result[i].SortOrder = i + 1
	}
	return result
}
