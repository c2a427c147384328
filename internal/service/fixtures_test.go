package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"shiftgrid/internal/dto"
)

// 2025-05-05 为周一，且日 == 月，当天需要 3 人
const weekFixture = "Tên nhân viên:\tĐăng kí ca cho tuần:\t[Thứ 2]\t[Thứ 3]\t[Thứ 4]\t[Thứ 5]\t[Thứ 6]\t[Thứ 7]\t[Chủ nhật]\tGhi chú (nếu có)\n" +
	"An\t05/05/2025\tca 1\toff\tca 2\t\t\t\t\t\n" +
	"Bình\t\tca 1, ca 2\tca 1\t\t\t\t\t\tthích ca sáng\n" +
	"Chi\t\tchiều\tca 2\t\t\t\t\t\t\n"

// 无周次信息的登记
const undatedFixture = "Tên nhân viên:\tĐăng kí ca cho tuần:\t[Thứ 2]\t[Thứ 3]\t[Thứ 4]\t[Thứ 5]\t[Thứ 6]\t[Thứ 7]\t[Chủ nhật]\tGhi chú (nếu có)\n" +
	"An\t\tca 1\t\t\t\t\t\t\t\n"

// 生成服务返回的文本：表格嵌在说明文字中，Dũng 未登记
const generatedFixture = `Đây là lịch làm việc đề xuất:

| Ngày | Ca | Nhân viên được phân công |
|---|---|---|
| 2025-05-05 | Ca 1 | An, Bình |
| 2025-05-05 | Ca 2 | Chi |
| 2025-05-06 | Ca 1 | Bình |
| 2025-05-06 | Ca 2 | Chi, Dũng |
`

const testOperator = "linh"

type fixtureEnv struct {
	repos     *testRepos
	store     SelectionStore
	generator *fakeGenerator
	svc       *Service
}

func newFixtureEnv(t *testing.T) *fixtureEnv {
	t.Helper()
	repos := newTestRepos()
	store := newMemorySelectionStore()
	gen := &fakeGenerator{text: generatedFixture}
	settings := DefaultSettings()
	logger := zap.NewNop()
	repo := repos.toRepository()

	return &fixtureEnv{
		repos:     repos,
		store:     store,
		generator: gen,
		svc: &Service{
			Session:    NewSessionService(repo, store, settings, logger),
			Generation: NewGenerationService(repo, gen, settings, logger),
			Grid:       NewGridService(repo, store, logger),
			Export:     NewExportService(repo, store, settings, logger),
		},
	}
}

// registered 创建会话并返回其 ID
func (e *fixtureEnv) registered(t *testing.T) string {
	t.Helper()
	resp, err := e.svc.Session.CreateFromText(context.Background(), testOperator, weekFixture)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	return resp.SessionID
}

// generated 创建会话并完成一次 AI 生成
func (e *fixtureEnv) generated(t *testing.T) string {
	t.Helper()
	id := e.registered(t)
	if _, err := e.svc.Generation.Generate(context.Background(), id, testOperator, &dto.GenerateRequest{}); err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	return id
}
