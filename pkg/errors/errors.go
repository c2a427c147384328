package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrSelectionStoreUnavailable 手动选择存储不可用（Redis 异常且未启用内存降级）
var ErrSelectionStoreUnavailable = errors.New("手动选择存储不可用")
