package recipe

// 方法與食材的連結以名稱比對（Gateway 契約如此），
// 改名與刪除的連帶維護集中在這裡，不散落在各呼叫點

// RenameInMethods 將所有步驟連結集中名稱為 oldName 的食材換成 renamed
func RenameInMethods(methods []Method, oldName string, renamed Ingredient) []Method {
	result := make([]Method, len(methods))
	copy(result, methods)
	for i := range result {
		if len(result[i].Ingredients) == 0 {
			continue
		}
		linked := make([]Ingredient, 0, len(result[i].Ingredients))
		for _, ing := range result[i].Ingredients {
			if ing.Name == oldName {
				linked = append(linked, renamed)
			} else {
				linked = append(linked, ing)
			}
		}
		result[i].Ingredients = linked
	}
	return result
}

// StripFromMethods 將名稱為 name 的食材從所有步驟的連結集移除
func StripFromMethods(methods []Method, name string) []Method {
	result := make([]Method, len(methods))
	copy(result, methods)
	for i := range result {
		if len(result[i].Ingredients) == 0 {
			continue
		}
		linked := make([]Ingredient, 0, len(result[i].Ingredients))
		for _, ing := range result[i].Ingredients {
			if ing.Name != name {
				linked = append(linked, ing)
			}
		}
		result[i].Ingredients = linked
	}
	return result
}

// LinkByNames 依名稱從食材清單挑出連結集（整組替換用）
// 不在清單中的名稱直接忽略
func LinkByNames(ingredients []Ingredient, names []string) []Ingredient {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	linked := make([]Ingredient, 0, len(names))
	for _, ing := range ingredients {
		if _, ok := wanted[ing.Name]; ok {
			linked = append(linked, ing)
		}
	}
	return linked
}

// DividerIngredientNames 收集所有章節擁有的食材名稱
func DividerIngredientNames(dividers []Divider) map[string]struct{} {
	names := make(map[string]struct{})
	for _, d := range dividers {
		for _, ing := range d.Ingredients {
			names[ing.Name] = struct{}{}
		}
	}
	return names
}

// MainIngredients 計算主食材清單：排除任何章節擁有的食材
// 每個食材同一時間只屬於主清單或恰好一個章節
func MainIngredients(ingredients []Ingredient, dividers []Divider) []Ingredient {
	owned := DividerIngredientNames(dividers)

	main := make([]Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		if _, ok := owned[ing.Name]; ok {
			continue
		}
		main = append(main, ing)
	}
	return main
}
