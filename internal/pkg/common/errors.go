package common

import (
	"errors"
	"fmt"
)

// ValidationError 表示驗證錯誤（在任何網路請求之前被擋下）
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GatewayError 表示 Gateway 傳輸或伺服器錯誤
// 呼叫端捕捉後記錄日誌，視為「沒有資料」，不得讓既有狀態被破壞
type GatewayError struct {
	Operation string // 操作名稱（如 list_recipes）
	Status    int    // HTTP 狀態碼，0 表示傳輸層錯誤
	Err       error  // 原始錯誤
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s failed with status %d", e.Operation, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("gateway %s failed", e.Operation)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError 創建新的 Gateway 錯誤
func NewGatewayError(operation string, status int, err error) *GatewayError {
	return &GatewayError{
		Operation: operation,
		Status:    status,
		Err:       err,
	}
}

// PartialSaveError 表示多步驟儲存中途失敗
// 沒有補償回滾：食譜本體可能已經持久化但缺少後續步驟的資料
type PartialSaveError struct {
	Step     string // 失敗的步驟（portion/ingredients/methods/image/divider）
	RecipeID int    // 已取得的權威食譜 ID
	Err      error  // 該步驟的原始錯誤
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("partial save: step %q failed for recipe %d: %v", e.Step, e.RecipeID, e.Err)
}

func (e *PartialSaveError) Unwrap() error {
	return e.Err
}

// IsPartialSave 檢查是否為部分儲存錯誤
func IsPartialSave(err error) bool {
	var pe *PartialSaveError
	return errors.As(err, &pe)
}

// ParseError 表示文字轉食譜的解析錯誤
// 保留模型的原始輸出，讓呼叫端可以顯示並重試，不自動建立食譜
type ParseError struct {
	Message   string // 描述性錯誤信息
	RawOutput string // 模型的原始輸出
	Err       error  // 原始錯誤
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError 創建新的解析錯誤
func NewParseError(message, rawOutput string, err error) *ParseError {
	return &ParseError{
		Message:   message,
		RawOutput: rawOutput,
		Err:       err,
	}
}

// 預定義錯誤
var (
	ErrBlankName     = NewValidationError("recipe name must not be blank")
	ErrCacheDisabled = errors.New("cache disabled")
	ErrCacheFull     = errors.New("cache full")
	ErrCacheMiss     = errors.New("cache miss")
)
