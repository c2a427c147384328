package roster

import (
	"errors"
	"fmt"
)

// ── 核心引擎错误 ──

var (
	ErrUnresolvableAnchor    = errors.New("无法确定排班周的起始日期")
	ErrMissingRequiredColumn = errors.New("登记表缺少必需列")
	ErrUnparseableTable      = errors.New("生成结果中没有可解析的排班表格")
	ErrDateCellUnparseable   = errors.New("日期单元格无法解析")
	ErrColumnCountMismatch   = errors.New("排班表格列数不符合要求")
	ErrEmptyRegistration     = errors.New("登记内容为空")
	ErrInvalidSelection      = errors.New("无效的手动选择")
)

// ColumnCountError 表格清洗后剩余列数不足
type ColumnCountError struct {
	Found int
}

func (e *ColumnCountError) Error() string {
	return fmt.Sprintf("%s: 清洗后仅剩 %d 列", ErrColumnCountMismatch.Error(), e.Found)
}

func (e *ColumnCountError) Unwrap() error {
	return ErrColumnCountMismatch
}
