package parser

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipe-manager/internal/pkg/common"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// stubGenerator 固定回應的生成服務
type stubGenerator struct {
	output string
	err    error
	calls  int
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

// mapCache 記憶體 map 充當緩存
type mapCache struct {
	store map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{store: map[string]string{}}
}

func (c *mapCache) Get(_ context.Context, text string) (string, error) {
	if v, ok := c.store[text]; ok {
		return v, nil
	}
	return "", common.ErrCacheMiss
}

func (c *mapCache) Set(_ context.Context, text, value string) error {
	c.store[text] = value
	return nil
}

const modelOutput = `{
  "url": "https://example.com/stir-fry",
  "methods": [{"value": "Heat the wok."}, {"value": "Stir fry everything."}],
  "ingredients": [
    {"name": "chicken", "value": 300, "measurement": "g"},
    {"name": "garlic", "measurement": "item"}
  ],
  "portion": {"value": 2, "measurement": "servings"}
}`

func TestParseStructuredOutput(t *testing.T) {
	svc := NewService(&stubGenerator{output: modelOutput}, nil)

	parsed, err := svc.Parse(context.Background(), "chicken stir fry with garlic")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/stir-fry", parsed.URL)
	require.Len(t, parsed.Methods, 2)
	assert.Equal(t, "Heat the wok.", parsed.Methods[0])

	require.Len(t, parsed.Ingredients, 2)
	assert.Equal(t, 300.0, parsed.Ingredients[0].Value)
	// 缺數量補 1
	assert.Equal(t, 1.0, parsed.Ingredients[1].Value)

	require.NotNil(t, parsed.Portion)
	assert.Equal(t, 2.0, parsed.Portion.Value)
	assert.Equal(t, "servings", parsed.Portion.Measurement)
}

func TestParseStripsMarkdownFences(t *testing.T) {
	svc := NewService(&stubGenerator{output: "```json\n" + modelOutput + "\n```"}, nil)

	parsed, err := svc.Parse(context.Background(), "some recipe text")
	require.NoError(t, err)
	assert.Len(t, parsed.Ingredients, 2)
}

func TestParsePortionMeasurementDefault(t *testing.T) {
	svc := NewService(&stubGenerator{output: `{"portion": {"value": 0, "measurement": ""}}`}, nil)

	parsed, err := svc.Parse(context.Background(), "minimal")
	require.NoError(t, err)
	require.NotNil(t, parsed.Portion)
	assert.Equal(t, 1.0, parsed.Portion.Value)
	assert.Equal(t, "portion", parsed.Portion.Measurement)
}

func TestParseMalformedOutputKeepsRaw(t *testing.T) {
	raw := "Sorry, I cannot parse that recipe."
	svc := NewService(&stubGenerator{output: raw}, nil)

	_, err := svc.Parse(context.Background(), "gibberish")
	require.Error(t, err)

	var pe *common.ParseError
	require.ErrorAs(t, err, &pe)
	// 原始輸出保留，供顯示與重試
	assert.Equal(t, raw, pe.RawOutput)
}

func TestParseGeneratorFailure(t *testing.T) {
	svc := NewService(&stubGenerator{err: errors.New("upstream down")}, nil)

	_, err := svc.Parse(context.Background(), "anything")
	require.Error(t, err)

	var pe *common.ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorContains(t, pe.Err, "upstream down")
}

func TestParseBlankTextRejected(t *testing.T) {
	gen := &stubGenerator{output: modelOutput}
	svc := NewService(gen, nil)

	_, err := svc.Parse(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
	assert.Zero(t, gen.calls)
}

func TestParseUsesCache(t *testing.T) {
	gen := &stubGenerator{output: modelOutput}
	cache := newMapCache()
	svc := NewService(gen, cache)

	_, err := svc.Parse(context.Background(), "cached recipe")
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)

	// 第二次命中快取，不再呼叫生成服務
	_, err = svc.Parse(context.Background(), "cached recipe")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestSeedMapping(t *testing.T) {
	parsed := &ParsedRecipe{
		URL:     "https://example.com",
		Methods: []string{"mix", "bake"},
		Ingredients: []ParsedIngredient{
			{Name: "flour", Value: 200, Measurement: "g"},
		},
		Portion: &ParsedPortion{Value: 4, Measurement: "portion"},
	}

	seed := parsed.Seed()

	assert.Equal(t, "https://example.com", seed.URL)
	require.Len(t, seed.Methods, 2)
	assert.Equal(t, "mix", seed.Methods[0].Value)
	require.Len(t, seed.Ingredients, 1)
	assert.Equal(t, "flour", seed.Ingredients[0].Name)
	require.NotNil(t, seed.Portion)
	assert.Equal(t, 4.0, seed.Portion.Value)
}

func TestCleanModelJSONVariants(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"bare", `{"url": ""}`},
		{"json fence", "```json\n{\"url\": \"\"}\n```"},
		{"plain fence", "```\n{\"url\": \"\"}\n```"},
		{"leading prose", "Here is the JSON you asked for: {\"url\": \"\"} hope it helps"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cleaned := common.CleanModelJSON(tc.in)
			parsed, err := decodeParsed(cleaned)
			require.NoError(t, err)
			assert.NotNil(t, parsed)
		})
	}
}
