package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"shiftgrid/internal/roster"
)

// 2025-05-05 为周一，且日 == 月
const registrationFixture = "Tên nhân viên:\tĐăng kí ca cho tuần:\t[Thứ 2]\t[Thứ 3]\t[Thứ 4]\t[Thứ 5]\t[Thứ 6]\t[Thứ 7]\t[Chủ nhật]\tGhi chú (nếu có)\n" +
	"An\t05/05/2025\tca 1\toff\tca 2\t\t\t\t\t\n" +
	"Bình\t\tca 1, ca 2\tca 1\t\t\t\t\t\tthích ca sáng\n" +
	"Chi\t\tchiều\tca 2\t\t\t\t\t\t\n"

const generatedFixture = `Đây là lịch làm việc đề xuất:

| Ngày | Ca | Nhân viên được phân công |
|---|---|---|
| 2025-05-05 | Ca 1 | An, Bình |
| 2025-05-05 | Ca 2 | Chi |
| 2025-05-06 | Ca 1 | Bình |
| 2025-05-06 | Ca 2 | Chi, Dũng |
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return path
}

// run 执行一次命令，返回 stdout
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAvailabilityCmd(t *testing.T) {
	out, err := run(t, registrationFixture, "availability", "-i", "-")
	if err != nil {
		t.Fatalf("availability 失败: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// 3 人 × 7 天 × 2 班 + 表头
	if len(lines) != 43 {
		t.Fatalf("输出行数 = %d, want 43", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Ngày\tThứ\tNhân viên") {
		t.Errorf("表头不符: %q", lines[0])
	}
	if !strings.Contains(out, "thích ca sáng") {
		t.Error("输出应包含 Bình 的备注")
	}
}

func TestGridCmd_TSV(t *testing.T) {
	reg := writeFixture(t, "dang_ky.txt", registrationFixture)
	gen := writeFixture(t, "lich.md", generatedFixture)

	out, err := run(t, "", "grid", "-r", reg, "-g", gen, "-f", "tsv")
	if err != nil {
		t.Fatalf("grid 失败: %v", err)
	}
	want := []string{
		strings.Join(roster.GridHeader, "\t"),
		"Thứ 2\t05/05/2025\tAn\tBình\t\tChi\t\t",
		"Thứ 3\t06/05/2025\tBình\t\t\tChi\tDũng\t",
	}
	if diff := cmp.Diff(want, strings.Split(strings.TrimRight(out, "\n"), "\n")); diff != "" {
		t.Errorf("TSV 内容不符 (-want +got):\n%s", diff)
	}
}

func TestGridCmd_Selections(t *testing.T) {
	reg := writeFixture(t, "dang_ky.txt", registrationFixture)
	gen := writeFixture(t, "lich.md", generatedFixture)

	out, err := run(t, "", "grid", "-r", reg, "-g", gen, "--select", "A:1:2025-05-05=")
	if err != nil {
		t.Fatalf("grid 失败: %v", err)
	}
	if !strings.Contains(out, "Thứ 2\t05/05/2025\tAn\t\t\tChi\t\t") {
		t.Errorf("清空位置后输出不符:\n%s", out)
	}

	// Chi 周一只登记了 ca 2
	_, err = run(t, "", "grid", "-r", reg, "-g", gen, "--select", "A:1:2025-05-05=Chi")
	if !errors.Is(err, roster.ErrInvalidSelection) {
		t.Errorf("err = %v, want ErrInvalidSelection", err)
	}

	_, err = run(t, "", "grid", "-r", reg, "-g", gen, "--select", "A:1:2025-05-05")
	if !errors.Is(err, roster.ErrInvalidSelection) {
		t.Errorf("缺少 '=' 时 err = %v, want ErrInvalidSelection", err)
	}
}

func TestGridCmd_WorkbookOutput(t *testing.T) {
	reg := writeFixture(t, "dang_ky.txt", registrationFixture)
	gen := writeFixture(t, "lich.md", generatedFixture)
	outPath := filepath.Join(t.TempDir(), "lich.xlsx")

	if _, err := run(t, "", "grid", "-r", reg, "-g", gen, "-f", "xlsx", "-o", outPath); err != nil {
		t.Fatalf("grid 失败: %v", err)
	}

	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("打开导出文件失败: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(roster.WorkbookSheet)
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("行数 = %d, want 3", len(rows))
	}
}

func TestGridCmd_UnknownFormat(t *testing.T) {
	reg := writeFixture(t, "dang_ky.txt", registrationFixture)
	gen := writeFixture(t, "lich.md", generatedFixture)

	if _, err := run(t, "", "grid", "-r", reg, "-g", gen, "-f", "pdf"); err == nil {
		t.Error("不支持的格式应返回错误")
	}
}

func TestParseCmd(t *testing.T) {
	out, err := run(t, generatedFixture, "parse")
	if err != nil {
		t.Fatalf("parse 失败: %v", err)
	}
	again, err := roster.ParseScheduleTable(out)
	if err != nil {
		t.Fatalf("规范化输出应可再次解析: %v", err)
	}
	if len(again) != 4 {
		t.Errorf("行数 = %d, want 4", len(again))
	}

	if _, err := run(t, "không có bảng nào ở đây", "parse"); !errors.Is(err, roster.ErrUnparseableTable) {
		t.Errorf("err = %v, want ErrUnparseableTable", err)
	}
}

func TestParseCmd_GridFormats(t *testing.T) {
	// 不需要登记表：直接由生成结果输出 8 列网格
	out, err := run(t, generatedFixture, "parse", "-f", "tsv")
	if err != nil {
		t.Fatalf("parse 失败: %v", err)
	}
	want := []string{
		strings.Join(roster.GridHeader, "\t"),
		"Thứ 2\t05/05/2025\tAn\tBình\t\tChi\t\t",
		"Thứ 3\t06/05/2025\tBình\t\t\tChi\tDũng\t",
	}
	if diff := cmp.Diff(want, strings.Split(strings.TrimRight(out, "\n"), "\n")); diff != "" {
		t.Errorf("TSV 内容不符 (-want +got):\n%s", diff)
	}

	outPath := filepath.Join(t.TempDir(), "lich.csv")
	if _, err := run(t, generatedFixture, "parse", "-f", "csv", "-o", outPath); err != nil {
		t.Fatalf("parse 失败: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("读取输出文件失败: %v", err)
	}
	if !strings.Contains(string(data), "Thứ 3,06/05/2025,Bình,,,Chi,Dũng,") {
		t.Errorf("CSV 内容不符:\n%s", data)
	}

	if _, err := run(t, generatedFixture, "parse", "-f", "pdf"); err == nil {
		t.Error("不支持的格式应返回错误")
	}
}

func TestPromptCmd(t *testing.T) {
	out, err := run(t, registrationFixture, "prompt")
	if err != nil {
		t.Fatalf("prompt 失败: %v", err)
	}
	for _, want := range []string{"An", "Bình", "Chi", "2025-05-05"} {
		if !strings.Contains(out, want) {
			t.Errorf("提示词缺少 %q", want)
		}
	}
}

func TestGenerateCmd_NotConfigured(t *testing.T) {
	t.Setenv("SHIFTGRID_GENERATION_API_KEY", "")
	if _, err := run(t, registrationFixture, "generate"); err == nil {
		t.Error("未配置 API Key 时应返回错误")
	}
}

func TestMigrateDown_InvalidSteps(t *testing.T) {
	if _, err := run(t, "", "migrate", "down", "abc"); err == nil {
		t.Error("非数字 steps 应返回错误")
	}
}

func TestHashPasswordCmd(t *testing.T) {
	out, err := run(t, "mat-khau-bi-mat\n", "hash-password", "--cost", "4")
	if err != nil {
		t.Fatalf("hash-password 失败: %v", err)
	}
	hash := strings.TrimSpace(out)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("mat-khau-bi-mat")); err != nil {
		t.Errorf("哈希无法验证原密码: %v", err)
	}

	if _, err := run(t, "", "hash-password"); err == nil {
		t.Error("空密码应返回错误")
	}
}
