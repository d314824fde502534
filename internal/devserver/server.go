package devserver

import (
	"encoding/base64"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

const timeLayout = "2006-01-02 15:04:05"

// Server 開發用的後端替身
// 以記憶體內的清單完整實現閘道契約，供整合測試與離線開發使用
type Server struct {
	cfg *config.Config

	mu      sync.RWMutex
	recipes []recipe.Recipe

	nextRecipeID     int
	nextPortionID    int
	nextIngredientID int
	nextMethodID     int
	nextImageID      int
	nextDividerID    int
}

// New 創建後端替身
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:              cfg,
		nextRecipeID:     1,
		nextPortionID:    1,
		nextIngredientID: 1,
		nextMethodID:     1,
		nextImageID:      1,
		nextDividerID:    1,
	}
}

// Router 組出完整路由
func (s *Server) Router() *gin.Engine {
	if s.cfg != nil && !s.cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(Recovery())
	router.Use(Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", s.handleHealth)

	router.GET("/recipes", s.handleListRecipes)
	router.PUT("/recipes", s.handleReorderRecipes)
	router.GET("/recipe/:id", s.handleGetRecipe)
	router.POST("/recipe", s.handleCreateRecipe)
	router.PUT("/recipe/:id", s.handleUpdateRecipe)
	router.DELETE("/recipe/:id", s.handleDeleteRecipe)

	router.POST("/portion/:recipe_id", s.handleUpsertPortion)
	router.POST("/ingredients/:recipe_id", s.handleUpsertIngredients)
	router.GET("/ingredients", s.handleListIngredients)
	router.POST("/methods/:recipe_id", s.handleUpsertMethods)
	router.POST("/image/:recipe_id", s.handleUploadImage)

	router.POST("/divider/ingredients", s.handleAttachDividerIngredients)
	router.POST("/divider/:recipe_id", s.handleAddDivider)

	common.LogInfo("後端替身路由已就緒",
		zap.Int("seeded_recipes", len(s.recipes)),
	)
	return router
}

// Seed 預載食譜資料（測試用）
func (s *Server) Seed(recipes []recipe.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipes = append([]recipe.Recipe(nil), recipes...)
	for _, r := range recipes {
		if r.ID >= s.nextRecipeID {
			s.nextRecipeID = r.ID + 1
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	payload := gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	if s.cfg != nil {
		payload["version"] = s.cfg.App.Version
		payload["environment"] = s.cfg.App.Env
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) findRecipe(id int) *recipe.Recipe {
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			return &s.recipes[i]
		}
	}
	return nil
}

func (s *Server) touch(r *recipe.Recipe) {
	r.LastEditedAt = time.Now().Format(timeLayout)
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleListRecipes(c *gin.Context) {
	search := c.Query("search")
	sortKey := c.DefaultQuery("sortKey", recipe.SortKeyOrder)
	sortDirection := c.DefaultQuery("sortDirection", recipe.SortDesc)
	ingredientNames := c.Query("ingredientNames")

	s.mu.RLock()
	list := append([]recipe.Recipe(nil), s.recipes...)
	s.mu.RUnlock()

	if search != "" {
		needle := strings.ToLower(search)
		filtered := list[:0:0]
		for _, r := range list {
			if strings.Contains(strings.ToLower(r.Name), needle) {
				filtered = append(filtered, r)
			}
		}
		list = filtered
	}

	if ingredientNames != "" {
		wanted := map[string]struct{}{}
		for _, name := range strings.Split(ingredientNames, ",") {
			wanted[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
		}
		filtered := list[:0:0]
	outer:
		for _, r := range list {
			for _, ing := range r.Ingredients {
				if _, ok := wanted[strings.ToLower(ing.Name)]; ok {
					filtered = append(filtered, r)
					continue outer
				}
			}
		}
		list = filtered
	}

	sortRecipes(list, sortKey, sortDirection)
	c.JSON(http.StatusOK, list)
}

// sortRecipes 依排序鍵整理清單
// 份量排序把沒有份量的食譜固定排在最後，不分方向
func sortRecipes(list []recipe.Recipe, sortKey, sortDirection string) {
	asc := strings.EqualFold(sortDirection, recipe.SortAsc)

	less := func(i, j int) bool { return false }
	switch sortKey {
	case recipe.SortKeyName:
		less = func(i, j int) bool { return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name) }
	case recipe.SortKeyCreatedAt:
		less = func(i, j int) bool { return list[i].CreatedAt < list[j].CreatedAt }
	case recipe.SortKeyLastEditedAt:
		less = func(i, j int) bool { return list[i].LastEditedAt < list[j].LastEditedAt }
	case recipe.SortKeyPortion:
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Portion == nil && list[j].Portion != nil {
				return false
			}
			if list[i].Portion != nil && list[j].Portion == nil {
				return true
			}
			if list[i].Portion != nil && list[j].Portion != nil {
				if asc {
					return list[i].Portion.Value < list[j].Portion.Value
				}
				return list[i].Portion.Value > list[j].Portion.Value
			}
			return false
		})
		return
	default:
		less = func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder }
	}

	sort.SliceStable(list, func(i, j int) bool {
		if asc {
			return less(i, j)
		}
		return less(j, i)
	})
}

func (s *Server) handleGetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.findRecipe(id)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, *r)
}

func (s *Server) handleCreateRecipe(c *gin.Context) {
	var in recipe.Recipe
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Format(timeLayout)
	created := recipe.Recipe{
		ID:           s.nextRecipeID,
		Name:         in.Name,
		URL:          in.URL,
		Type:         in.Type,
		CreatedAt:    now,
		LastEditedAt: now,
		SortOrder:    len(s.recipes) + 1,
		Ingredients:  []recipe.Ingredient{},
		Methods:      []recipe.Method{},
	}
	s.nextRecipeID++
	s.recipes = append(s.recipes, created)

	c.JSON(http.StatusOK, created)
}

func (s *Server) handleUpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in recipe.Recipe
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findRecipe(id)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	r.Name = in.Name
	r.URL = in.URL
	r.Type = in.Type
	s.touch(r)

	c.JSON(http.StatusOK, *r)
}

func (s *Server) handleDeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.recipes[:0:0]
	for _, r := range s.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.recipes = kept

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) handleReorderRecipes(c *gin.Context) {
	var passed []recipe.Recipe
	if err := c.ShouldBindJSON(&passed); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 伺服器以收到的順序重新指定 sortOrder，未知 ID 直接忽略
	for index, p := range passed {
		if r := s.findRecipe(p.ID); r != nil {
			r.SortOrder = index + 1
		}
	}

	list := append([]recipe.Recipe(nil), s.recipes...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleUpsertPortion(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id")
	if !ok {
		return
	}

	var in recipe.Portion
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findRecipe(recipeID)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	if r.Portion == nil {
		r.Portion = &recipe.Portion{
			ID:          s.nextPortionID,
			Value:       in.Value,
			Measurement: in.Measurement,
			RecipeID:    recipeID,
		}
		s.nextPortionID++
	} else {
		r.Portion.Value = in.Value
		r.Portion.Measurement = in.Measurement
	}
	s.touch(r)

	c.JSON(http.StatusOK, *r)
}

func (s *Server) handleUpsertIngredients(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id")
	if !ok {
		return
	}

	var passed []recipe.Ingredient
	if err := c.ShouldBindJSON(&passed); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findRecipe(recipeID)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	existingCount := len(r.Ingredients)
	for index, p := range passed {
		found := false
		for i := range r.Ingredients {
			if p.ID != 0 && r.Ingredients[i].ID == p.ID {
				sortOrder := p.SortOrder
				if sortOrder == 0 {
					sortOrder = i + 1
				}
				r.Ingredients[i].Name = p.Name
				r.Ingredients[i].Measurement = p.Measurement
				r.Ingredients[i].Value = p.Value
				r.Ingredients[i].SortOrder = sortOrder
				found = true
				break
			}
		}
		if !found {
			sortOrder := p.SortOrder
			if sortOrder == 0 {
				sortOrder = index + 1 + existingCount
			}
			r.Ingredients = append(r.Ingredients, recipe.Ingredient{
				ID:          s.nextIngredientID,
				Name:        p.Name,
				Measurement: p.Measurement,
				Value:       p.Value,
				RecipeID:    recipeID,
				SortOrder:   sortOrder,
			})
			s.nextIngredientID++
		}
	}

	sort.SliceStable(r.Ingredients, func(i, j int) bool {
		return r.Ingredients[i].SortOrder < r.Ingredients[j].SortOrder
	})
	s.touch(r)

	c.JSON(http.StatusOK, *r)
}

func (s *Server) handleListIngredients(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ingredients := []recipe.Ingredient{}
	for _, r := range s.recipes {
		ingredients = append(ingredients, r.Ingredients...)
		for _, d := range r.Dividers {
			ingredients = append(ingredients, d.Ingredients...)
		}
	}
	c.JSON(http.StatusOK, ingredients)
}

func (s *Server) handleUpsertMethods(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id")
	if !ok {
		return
	}

	var passed []recipe.Method
	if err := c.ShouldBindJSON(&passed); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findRecipe(recipeID)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	existingCount := len(r.Methods)
	for index, p := range passed {
		found := false
		for i := range r.Methods {
			if p.ID != 0 && r.Methods[i].ID == p.ID {
				sortOrder := p.SortOrder
				if sortOrder == 0 {
					sortOrder = i + 1
				}
				r.Methods[i].Value = p.Value
				r.Methods[i].SortOrder = sortOrder
				r.Methods[i].Ingredients = p.Ingredients
				found = true
				break
			}
		}
		if !found {
			sortOrder := p.SortOrder
			if sortOrder == 0 {
				sortOrder = index + 1 + existingCount
			}
			r.Methods = append(r.Methods, recipe.Method{
				ID:          s.nextMethodID,
				Value:       p.Value,
				SortOrder:   sortOrder,
				RecipeID:    recipeID,
				Ingredients: p.Ingredients,
			})
			s.nextMethodID++
		}
	}

	sort.SliceStable(r.Methods, func(i, j int) bool {
		return r.Methods[i].SortOrder < r.Methods[j].SortOrder
	})
	s.touch(r)

	c.JSON(http.StatusOK, *r)
}

func (s *Server) handleUploadImage(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	imgBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findRecipe(recipeID)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	// 圖片以 base64 存放在 url 欄位
	encoded := base64.StdEncoding.EncodeToString(imgBytes)
	if r.Image == nil {
		r.Image = &recipe.Image{
			ID:       s.nextImageID,
			URL:      encoded,
			Filename: header.Filename,
			RecipeID: recipeID,
		}
		s.nextImageID++
	} else {
		r.Image.URL = encoded
		r.Image.Filename = header.Filename
	}
	s.touch(r)

	c.JSON(http.StatusOK, *r)
}

func (s *Server) handleAddDivider(c *gin.Context) {
	recipeID, ok := pathID(c, "recipe_id")
	if !ok {
		return
	}

	var in recipe.Divider
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findRecipe(recipeID)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	for i := range r.Dividers {
		if in.ID != 0 && r.Dividers[i].ID == in.ID {
			r.Dividers[i].Title = in.Title
			r.Dividers[i].SortOrder = in.SortOrder
			s.touch(r)
			c.JSON(http.StatusOK, r.Dividers[i])
			return
		}
	}

	created := recipe.Divider{
		ID:          s.nextDividerID,
		Title:       in.Title,
		RecipeID:    recipeID,
		SortOrder:   in.SortOrder,
		Ingredients: []recipe.Ingredient{},
	}
	s.nextDividerID++
	r.Dividers = append(r.Dividers, created)
	s.touch(r)

	c.JSON(http.StatusOK, created)
}

type attachDividerIngredientsRequest struct {
	RecipeID    int                 `json:"recipe_id"`
	DividerID   int                 `json:"divider_id"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
}

func (s *Server) handleAttachDividerIngredients(c *gin.Context) {
	var in attachDividerIngredientsRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findRecipe(in.RecipeID)
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	for i := range r.Dividers {
		if r.Dividers[i].ID != in.DividerID {
			continue
		}
		attached := make([]recipe.Ingredient, 0, len(in.Ingredients))
		for _, ing := range in.Ingredients {
			if ing.ID == 0 {
				ing.ID = s.nextIngredientID
				s.nextIngredientID++
			}
			ing.RecipeID = in.RecipeID
			attached = append(attached, ing)
		}
		r.Dividers[i].Ingredients = attached
		s.touch(r)
		c.JSON(http.StatusOK, r.Dividers[i])
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "divider not found"})
}
