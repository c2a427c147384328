package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftgrid/internal/roster"
)

type gridOptions struct {
	registration string
	generated    string
	format       string
	output       string
	selections   []string
}

func newGridCmd(env *cliEnv) *cobra.Command {
	opts := &gridOptions{}

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Reconcile a generated schedule against availability and export the grid",
		Long: `将生成的排班表与登记表的可用性对照，输出 8 列网格。

--select 可多次指定手动选择，格式为 班次:位置:日期=姓名，例如
  --select A:0:2025-05-05=Chi
姓名为空表示清空该位置。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runGrid(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.registration, "registration", "r", "", "登记表文件（.xlsx 或制表符文本）")
	f.StringVarP(&opts.generated, "generated", "g", "", "生成结果文本（- 为 stdin）")
	f.StringVarP(&opts.format, "format", "f", "tsv", "输出格式：tsv | csv | xlsx | ics | markdown")
	f.StringVarP(&opts.output, "output", "o", "", "输出文件（默认 stdout）")
	f.StringArrayVar(&opts.selections, "select", nil, "手动选择 班次:位置:日期=姓名，可重复")
	_ = cmd.MarkFlagRequired("registration")
	_ = cmd.MarkFlagRequired("generated")
	return cmd
}

func (e *cliEnv) runGrid(cmd *cobra.Command, opts *gridOptions) error {
	anchor, table, err := extractAvailability(opts.registration, cmd.InOrStdin())
	if err != nil {
		return err
	}
	text, err := readInput(opts.generated, cmd.InOrStdin())
	if err != nil {
		return err
	}
	assignments, err := roster.ParseScheduleTable(text)
	if err != nil {
		return err
	}

	input := roster.ReconcileInput{
		Assignments:  assignments,
		Availability: table,
		Staffing:     e.settings.Staffing.Plan(anchor),
	}
	result := roster.Reconcile(input)
	for _, raw := range opts.selections {
		key, name, err := parseSelectFlag(raw)
		if err != nil {
			return err
		}
		next, err := roster.ApplySelection(result, key, name)
		if err != nil {
			return err
		}
		input.Selections = next
		result = roster.Reconcile(input)
	}
	e.logger.Debug("网格调和完成",
		zap.String("week", anchor.String()),
		zap.Int("rows", len(result.Rows)),
		zap.Int("selections", len(opts.selections)),
	)

	w, closeFn, err := openOutput(opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := e.writeGrid(w, opts.format, text, result.Rows); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

// writeGrid 按格式写出网格；scope 参与日历事件 UID，取生成结果原文，
// 同一份生成结果重复导出时 UID 不变
func (e *cliEnv) writeGrid(w io.Writer, format, scope string, rows []roster.GridRow) error {
	switch strings.ToLower(format) {
	case "tsv":
		return roster.WriteTSV(w, rows)
	case "csv":
		return roster.WriteCSV(w, rows)
	case "xlsx":
		return roster.WriteWorkbook(w, rows)
	case "ics":
		return roster.WriteCalendar(w, scope, rows, e.settings.Constraints.Windows, e.settings.Location, time.Now())
	case "markdown", "md":
		_, err := io.WriteString(w, roster.FormatScheduleTable(roster.GridAssignments(rows)))
		return err
	default:
		return fmt.Errorf("不支持的输出格式: %s", format)
	}
}

// parseSelectFlag 解析 "A:0:2025-05-05=Chi"
func parseSelectFlag(s string) (roster.SelectionKey, string, error) {
	keyPart, name, ok := strings.Cut(s, "=")
	if !ok {
		return roster.SelectionKey{}, "", fmt.Errorf("%w: 缺少 '=': %q", roster.ErrInvalidSelection, s)
	}
	key, err := roster.ParseSelectionKey(strings.TrimSpace(keyPart))
	if err != nil {
		return roster.SelectionKey{}, "", err
	}
	return key, strings.TrimSpace(name), nil
}
