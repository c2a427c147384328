package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftgrid/internal/roster"
)

func newParseCmd(env *cliEnv) *cobra.Command {
	var input, format, output string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a generated schedule table and print it in canonical form",
		Long: `解析生成结果中的排班表。

默认输出规范化的 3 列 markdown 表格；--format 为 tsv | csv | xlsx | ics 时
直接输出 8 列网格，不对照可用性，也不含手动选择。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			assignments, report, err := roster.ParseScheduleTableWithReport(text)
			if err != nil {
				return err
			}
			env.logger.Info("排班表解析完成",
				zap.String("strategy", report.Strategy),
				zap.Int("columns", report.Columns),
				zap.Int("rows", len(assignments)),
				zap.Int("dropped_rows", report.DroppedRows),
				zap.Int("duplicate_rows", report.DuplicateRows),
			)

			w, closeFn, err := openOutput(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := writeParsed(env, w, format, text, assignments); err != nil {
				_ = closeFn()
				return fmt.Errorf("写入输出失败: %w", err)
			}
			return closeFn()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "-", "生成结果文本（- 为 stdin）")
	f.StringVarP(&format, "format", "f", "markdown", "输出格式：markdown | tsv | csv | xlsx | ics")
	f.StringVarP(&output, "output", "o", "", "输出文件（默认 stdout）")
	return cmd
}

// writeParsed markdown 保留解析出的原始行；其余格式走只读网格
func writeParsed(env *cliEnv, w io.Writer, format, text string, assignments []roster.ParsedAssignment) error {
	switch strings.ToLower(format) {
	case "markdown", "md", "":
		_, err := io.WriteString(w, roster.FormatScheduleTable(assignments))
		return err
	default:
		return env.writeGrid(w, format, text, roster.BuildExportGrid(assignments))
	}
}
