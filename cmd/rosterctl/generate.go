package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftgrid/internal/roster"
	"shiftgrid/pkg/llm"
)

// buildPrompt 登记表 → 原始登记 + 可用性 → 提示词
func (e *cliEnv) buildPrompt(input string, stdin io.Reader) (string, error) {
	sheet, err := loadRegistration(input, stdin)
	if err != nil {
		return "", err
	}
	regs, err := sheet.Registrations()
	if err != nil {
		return "", err
	}
	anchor := roster.ResolveWeekAnchor(sheet)
	table, err := roster.ExtractAvailability(sheet, anchor)
	if err != nil {
		return "", err
	}
	payload := roster.BuildGenerationPayload(regs, table, anchor, e.settings.Staffing, e.settings.Constraints)
	return roster.RenderPrompt(payload, e.settings.Staffing.Base)
}

func newPromptCmd(env *cliEnv) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render the generation prompt for a registration sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := env.buildPrompt(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), prompt)
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "registration", "r", "-", "登记表文件（- 为 stdin）")
	return cmd
}

func newGenerateCmd(env *cliEnv) *cobra.Command {
	var input string
	var raw bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask the text generation service for a schedule",
		Long:  "渲染提示词并调用 Gemini；默认输出规范化后的表格，--raw 输出原始返回文本。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := env.buildPrompt(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			gen, err := llm.NewGeminiGenerator(ctx, &env.cfg.Generation, env.logger)
			if err != nil {
				return fmt.Errorf("文本生成服务不可用: %w", err)
			}
			text, err := gen.Generate(ctx, prompt)
			if err != nil {
				return err
			}
			return writeGenerated(cmd.OutOrStdout(), text, raw, env.logger)
		},
	}

	cmd.Flags().StringVarP(&input, "registration", "r", "-", "登记表文件（- 为 stdin）")
	cmd.Flags().BoolVar(&raw, "raw", false, "输出原始返回文本，不做表格解析")
	return cmd
}

// writeGenerated 无法解析时仍输出原文，并返回错误便于脚本判断
func writeGenerated(w io.Writer, text string, raw bool, logger *zap.Logger) error {
	if raw {
		_, err := io.WriteString(w, text)
		return err
	}
	assignments, report, err := roster.ParseScheduleTableWithReport(text)
	if err != nil {
		logger.Warn("生成结果无法解析为表格，输出原文", zap.Error(err))
		if _, werr := io.WriteString(w, text); werr != nil {
			return werr
		}
		return err
	}
	logger.Info("生成结果已解析", zap.String("strategy", report.Strategy), zap.Int("rows", len(assignments)))
	_, err = io.WriteString(w, roster.FormatScheduleTable(assignments))
	return err
}
