package session

import (
	"strings"

	"recipe-manager/internal/core/recipe"
)

// ParsedIngredient 解析結果中的單一食材
type ParsedIngredient struct {
	Name        string
	Value       float64
	Measurement string
}

// ParsedMethod 解析結果中的單一步驟
type ParsedMethod struct {
	Value string
}

// ParsedPortion 解析結果中的份量
type ParsedPortion struct {
	Value       float64
	Measurement string
}

// ParsedSeed 文字解析產出的草稿素材
type ParsedSeed struct {
	URL         string
	Ingredients []ParsedIngredient
	Methods     []ParsedMethod
	Portion     *ParsedPortion
}

// SeedFromParsed 以解析結果建立新食譜的編輯會話
// 缺漏欄位採用寬鬆補值：數量補 1，份量單位補 portion
func SeedFromParsed(title string, p ParsedSeed) *Session {
	s := New(nil)
	s.state = StateEditing
	s.name = strings.TrimSpace(title)
	s.externalURL = p.URL

	if p.Portion != nil {
		s.portionValue = p.Portion.Value
		if s.portionValue <= 0 {
			s.portionValue = 1
		}
		s.portionMeasurement = p.Portion.Measurement
		if s.portionMeasurement == "" {
			s.portionMeasurement = "portion"
		}
	}

	for _, ing := range p.Ingredients {
		value := ing.Value
		if value <= 0 {
			value = 1
		}
		s.ingredients = append(s.ingredients, recipe.Ingredient{
			Name:        strings.TrimSpace(ing.Name),
			Value:       value,
			Measurement: ing.Measurement,
		})
	}
	s.ingredients = recipe.RenumberIngredients(s.ingredients)

	for _, m := range p.Methods {
		s.methods = append(s.methods, recipe.Method{
			Value:       strings.TrimSpace(m.Value),
			Ingredients: []recipe.Ingredient{},
		})
	}
	s.methods = recipe.RenumberMethods(s.methods)

	return s
}
