package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"shiftgrid/internal/roster"
)

// readInput 读取文件内容；路径为 "-" 时读取 stdin
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" {
		return "", fmt.Errorf("未指定输入文件")
	}
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("读取 stdin 失败: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	return string(data), nil
}

// loadRegistration .xlsx 按工作簿读取首个工作表，其余按制表符文本解析
func loadRegistration(path string, stdin io.Reader) (*roster.RegistrationSheet, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("打开 %s 失败: %w", path, err)
		}
		defer f.Close()
		return roster.ReadRegistrationWorkbook(f)
	}

	text, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	return roster.ParseRegistrationText(text)
}

// extractAvailability 登记表 → 周次 → 可用性
func extractAvailability(path string, stdin io.Reader) (roster.WeekAnchor, roster.AvailabilityTable, error) {
	sheet, err := loadRegistration(path, stdin)
	if err != nil {
		return roster.WeekAnchor{}, roster.AvailabilityTable{}, err
	}
	anchor := roster.ResolveWeekAnchor(sheet)
	table, err := roster.ExtractAvailability(sheet, anchor)
	if err != nil {
		return anchor, roster.AvailabilityTable{}, err
	}
	return anchor, table, nil
}

// openOutput 路径为空或 "-" 时写到 fallback
func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("创建 %s 失败: %w", path, err)
	}
	return f, f.Close, nil
}
