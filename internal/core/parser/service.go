package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-manager/internal/core/session"
	"recipe-manager/internal/pkg/common"
)

// recipeSchema 產出 JSON 必須遵守的結構描述，直接嵌進 prompt
const recipeSchema = `{
  "type": "object",
  "properties": {
    "url": { "type": "string", "format": "uri", "nullable": true, "description": "Optional URL of the recipe source." },
    "methods": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "value": { "type": "string", "description": "The instruction for this method step." }
        }
      },
      "nullable": true
    },
    "ingredients": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": { "type": "string", "description": "Name of the ingredient." },
          "value": { "type": "number", "description": "Quantity of the ingredient." },
          "measurement": { "type": "string", "description": "Unit of measurement for the quantity (e.g., grams, ml, cups)." }
        }
      },
      "nullable": true
    },
    "portion": {
      "type": "object",
      "properties": {
        "value": { "type": "number", "description": "Numeric value of the portion (e.g., 4)." },
        "measurement": { "type": "string", "description": "Unit of measurement for the portion (e.g., servings, people)." }
      },
      "nullable": true
    }
  }
}`

// ParsedRecipe 文字解析的結構化結果
type ParsedRecipe struct {
	URL         string
	Methods     []string
	Ingredients []ParsedIngredient
	Portion     *ParsedPortion
}

// ParsedIngredient 解析出的單一食材
type ParsedIngredient struct {
	Name        string
	Value       float64
	Measurement string
}

// ParsedPortion 解析出的份量
type ParsedPortion struct {
	Value       float64
	Measurement string
}

// Seed 轉成編輯會話的草稿素材
func (p *ParsedRecipe) Seed() session.ParsedSeed {
	seed := session.ParsedSeed{URL: p.URL}

	for _, ing := range p.Ingredients {
		seed.Ingredients = append(seed.Ingredients, session.ParsedIngredient{
			Name:        ing.Name,
			Value:       ing.Value,
			Measurement: ing.Measurement,
		})
	}
	for _, m := range p.Methods {
		seed.Methods = append(seed.Methods, session.ParsedMethod{Value: m})
	}
	if p.Portion != nil {
		seed.Portion = &session.ParsedPortion{
			Value:       p.Portion.Value,
			Measurement: p.Portion.Measurement,
		}
	}
	return seed
}

// Service 文字轉食譜服務
type Service struct {
	generator Generator
	cache     ResultCache
}

// NewService 創建文字轉食譜服務
// cache 可為 nil，此時每次都呼叫生成服務
func NewService(generator Generator, cache ResultCache) *Service {
	return &Service{
		generator: generator,
		cache:     cache,
	}
}

// buildPrompt 組合解析 prompt
func buildPrompt(plainText string) string {
	return fmt.Sprintf(`You are an expert recipe parser. Convert the following plain text recipe into a valid JSON object.
The JSON object MUST strictly adhere to the following JSON schema:
%s

Plain text recipe:
"%s"

JSON output:`, recipeSchema, plainText)
}

// Parse 將自由文字解析成結構化食譜草稿
// 解析失敗不自動建立食譜，錯誤帶原始輸出供顯示與重試
func (s *Service) Parse(ctx context.Context, text string) (*ParsedRecipe, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewValidationError("recipe text must not be blank")
	}

	start := time.Now()

	raw, cached := s.lookupCache(ctx, text)
	if !cached {
		var err error
		raw, err = s.generator.Generate(ctx, buildPrompt(text))
		if err != nil {
			return nil, common.NewParseError("generative service call failed", "", err)
		}
	}

	parsed, err := decodeParsed(common.CleanModelJSON(raw))
	if err != nil {
		return nil, common.NewParseError("model output is not a valid recipe", raw, err)
	}

	if !cached {
		s.storeCache(ctx, text, raw)
	}

	common.LogInfo("文字解析完成",
		zap.Bool("cache_hit", cached),
		zap.Int("ingredients", len(parsed.Ingredients)),
		zap.Int("methods", len(parsed.Methods)),
		zap.Duration("duration", time.Since(start)),
	)
	return parsed, nil
}

func (s *Service) lookupCache(ctx context.Context, text string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, err := s.cache.Get(ctx, text)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *Service) storeCache(ctx context.Context, text, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, text, value); err != nil {
		common.LogWarn("解析結果寫入快取失敗", zap.Error(err))
	}
}

// rawParsed 模型輸出的寬鬆解碼形狀，數值欄位可能是字串
type rawParsed struct {
	URL     string `json:"url"`
	Methods []struct {
		Value string `json:"value"`
	} `json:"methods"`
	Ingredients []struct {
		Name        string      `json:"name"`
		Value       interface{} `json:"value"`
		Measurement string      `json:"measurement"`
	} `json:"ingredients"`
	Portion *struct {
		Value       interface{} `json:"value"`
		Measurement string      `json:"measurement"`
	} `json:"portion"`
}

// decodeParsed 寬鬆解碼並套用補值：數量補 1，份量單位補 portion
func decodeParsed(cleaned string) (*ParsedRecipe, error) {
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("empty model output")
	}

	var raw rawParsed
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	parsed := &ParsedRecipe{URL: raw.URL}

	for _, m := range raw.Methods {
		value := strings.TrimSpace(m.Value)
		if value == "" {
			continue
		}
		parsed.Methods = append(parsed.Methods, value)
	}

	for _, ing := range raw.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		parsed.Ingredients = append(parsed.Ingredients, ParsedIngredient{
			Name:        name,
			Value:       coerceQuantity(ing.Value),
			Measurement: strings.TrimSpace(ing.Measurement),
		})
	}

	if raw.Portion != nil {
		measurement := strings.TrimSpace(raw.Portion.Measurement)
		if measurement == "" {
			measurement = "portion"
		}
		parsed.Portion = &ParsedPortion{
			Value:       coerceQuantity(raw.Portion.Value),
			Measurement: measurement,
		}
	}

	return parsed, nil
}

// coerceQuantity 將任意型別的數量收斂成正數，無效值補 1
func coerceQuantity(v interface{}) float64 {
	switch value := v.(type) {
	case json.Number:
		f, err := value.Float64()
		if err != nil || f <= 0 {
			return 1
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f <= 0 {
			return 1
		}
		return f
	case float64:
		if value <= 0 {
			return 1
		}
		return value
	default:
		return 1
	}
}
