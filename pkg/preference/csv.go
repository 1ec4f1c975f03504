// Package preference 读取员工班次偏好表
//
// 表格格式：首行为表头 Name,Mon,Tue,...,Sun，之后每行一名员工；
// 单元格为以 '>' 分隔的班次排序，如 morning>evening>afternoon。
// 缺少某天的列表示该天使用默认偏好；存在但为空的单元格视为格式错误，整份输入被拒绝。
package preference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paiban/weekshift/pkg/errors"
	"github.com/paiban/weekshift/pkg/model"
)

// Separator 班次排序分隔符
const Separator = ">"

// nameColumn 姓名列表头
const nameColumn = "name"

// Load 从文件读取偏好表
func Load(path string) ([]model.Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "打开偏好表失败").WithDetails(path)
	}
	defer f.Close()
	return Read(f)
}

// Read 从 CSV 读取偏好表，员工顺序与行顺序一致
func Read(r io.Reader) ([]model.Employee, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.CodeInvalidInput, "偏好表为空")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "读取表头失败")
	}

	days, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var employees []model.Employee
	seen := make(map[string]int)
	ve := &errors.ValidationErrors{}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, fmt.Sprintf("读取第 %d 行失败", line))
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			ve.Add(fmt.Sprintf("row %d", line), "员工姓名不能为空")
			continue
		}
		if prev, dup := seen[name]; dup {
			ve.Add(fmt.Sprintf("row %d", line), fmt.Sprintf("员工 %s 与第 %d 行重复", name, prev))
			continue
		}
		seen[name] = line

		e := model.NewEmployee(name)
		for col, day := range days {
			if day == "" {
				continue
			}
			ranking, err := ParseRanking(record[col])
			if err != nil {
				ve.Add(fmt.Sprintf("row %d %s", line, day), err.Error())
				continue
			}
			e.Preferences[day] = ranking
		}
		employees = append(employees, e)
	}

	if ve.HasErrors() {
		return nil, ve.ToAppErrorWithCode(errors.CodeMalformedPreference, "偏好表存在无效记录")
	}
	return employees, nil
}

// parseHeader 解析表头，返回每列对应的工作日（姓名列为空）
func parseHeader(header []string) ([]model.Day, error) {
	if len(header) == 0 || !strings.EqualFold(strings.TrimSpace(header[0]), nameColumn) {
		return nil, errors.InvalidInput("header", "第一列必须为 Name")
	}

	days := make([]model.Day, len(header))
	seen := make(map[model.Day]bool)
	for i := 1; i < len(header); i++ {
		day, ok := model.ParseDay(header[i])
		if !ok {
			return nil, errors.InvalidInput("header", fmt.Sprintf("未知工作日列 %q", header[i]))
		}
		if seen[day] {
			return nil, errors.InvalidInput("header", fmt.Sprintf("工作日列 %s 重复", day))
		}
		seen[day] = true
		days[i] = day
	}
	return days, nil
}

// ParseRanking 解析单元格中的班次排序
func ParseRanking(cell string) ([]model.ShiftKind, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, fmt.Errorf("偏好列表为空")
	}

	parts := strings.Split(cell, Separator)
	ranking := make([]model.ShiftKind, 0, len(parts))
	for _, p := range parts {
		shift, ok := model.ParseShiftKind(p)
		if !ok {
			return nil, fmt.Errorf("未知班次 %q", strings.TrimSpace(p))
		}
		if model.IndexOf(ranking, shift) >= 0 {
			return nil, fmt.Errorf("班次 %s 重复", shift)
		}
		ranking = append(ranking, shift)
	}
	return ranking, nil
}

// FormatRanking 将班次排序格式化为单元格文本
func FormatRanking(ranking []model.ShiftKind) string {
	parts := make([]string, len(ranking))
	for i, s := range ranking {
		parts[i] = string(s)
	}
	return strings.Join(parts, Separator)
}

// Write 将偏好表写为 CSV，列为 Name + 指定工作日；未给出偏好的单元格写为默认排序
func Write(w io.Writer, employees []model.Employee, days []model.Day, fallback []model.ShiftKind) error {
	writer := csv.NewWriter(w)

	header := []string{"Name"}
	for _, d := range days {
		header = append(header, string(d))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range employees {
		row := []string{e.Name}
		for _, d := range days {
			ranking, ok := e.PreferenceFor(d)
			if !ok {
				ranking = fallback
			}
			row = append(row, FormatRanking(ranking))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
