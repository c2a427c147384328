package service

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operator 可登录的操作员
type Operator struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
	Role         string `yaml:"role"`
}

// CredentialStore 用户名 → 操作员
type CredentialStore map[string]Operator

type credentialsFile struct {
	Operators []Operator `yaml:"operators"`
}

// LoadCredentials 从 YAML 文件读取操作员列表
//
//	operators:
//	  - username: lan
//	    password_hash: $2a$10$...
//	    role: operator
func LoadCredentials(path string) (CredentialStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开凭据文件失败: %w", err)
	}
	defer f.Close()
	return ParseCredentials(f)
}

// ParseCredentials 解析凭据 YAML；用户名不区分大小写，重复用户名报错
func ParseCredentials(r io.Reader) (CredentialStore, error) {
	var file credentialsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("解析凭据文件失败: %w", err)
	}

	store := make(CredentialStore, len(file.Operators))
	for i, op := range file.Operators {
		name := strings.ToLower(strings.TrimSpace(op.Username))
		if name == "" || op.PasswordHash == "" {
			return nil, fmt.Errorf("凭据第 %d 项缺少 username 或 password_hash", i+1)
		}
		if _, dup := store[name]; dup {
			return nil, fmt.Errorf("凭据中用户名重复: %s", name)
		}
		if op.Role == "" {
			op.Role = RoleOperator
		}
		op.Username = name
		store[name] = op
	}
	return store, nil
}

// Lookup 按用户名查找
func (s CredentialStore) Lookup(username string) (Operator, bool) {
	op, ok := s[strings.ToLower(strings.TrimSpace(username))]
	return op, ok
}
