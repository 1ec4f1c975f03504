package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paiban/weekshift/pkg/model"
	"github.com/paiban/weekshift/pkg/preference"
)

func newTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "template NAME...",
		Short:   "为指定员工生成偏好表模板，每天填入默认排序",
		Example: "  weekshift template Alice Bob Carol -o employee.csv",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			employees := make([]model.Employee, 0, len(args))
			for _, name := range args {
				employees = append(employees, model.NewEmployee(name))
			}

			if output == "" {
				return preference.Write(cmd.OutOrStdout(), employees, model.AllDays(), model.AllShiftKinds())
			}
			return writeTemplateFile(output, employees)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件（默认标准输出）")
	return cmd
}

// writeTemplateFile 写出模板文件，关闭失败同样视为写入失败
func writeTemplateFile(path string, employees []model.Employee) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 %s 失败: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("关闭 %s 失败: %w", path, cerr)
		}
	}()
	return preference.Write(f, employees, model.AllDays(), model.AllShiftKinds())
}
