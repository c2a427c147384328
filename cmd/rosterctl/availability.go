package main

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftgrid/internal/roster"
)

func newAvailabilityCmd(env *cliEnv) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Extract per-shift availability from a registration sheet",
		Long:  "将登记表展开为每人每天两班的可用性记录，以制表符分隔输出。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, table, err := extractAvailability(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if table.Degraded {
				env.logger.Warn("未能确定周次，可用性为空", zap.String("input", input))
			}
			env.logger.Debug("可用性提取完成",
				zap.String("week", anchor.String()),
				zap.Int("records", len(table.Records)),
				zap.Int("employees", len(table.Employees())),
			)

			w := csv.NewWriter(cmd.OutOrStdout())
			w.Comma = '\t'
			_ = w.Write([]string{"Ngày", "Thứ", "Nhân viên", "Ca", "Có thể làm", "Ghi chú"})
			for _, r := range table.Records {
				_ = w.Write([]string{
					roster.FormatDisplayDate(r.Date),
					roster.WeekdayLabel(r.Date),
					r.Employee,
					r.Shift.Label(),
					strconv.FormatBool(r.CanWork),
					r.Note,
				})
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return fmt.Errorf("写入输出失败: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "登记表文件（.xlsx 或制表符文本，- 为 stdin）")
	return cmd
}
