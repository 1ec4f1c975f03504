// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/weekshift/internal/metrics"
	"github.com/paiban/weekshift/pkg/errors"
	"github.com/paiban/weekshift/pkg/logger"
	"github.com/paiban/weekshift/pkg/model"
	"github.com/paiban/weekshift/pkg/preference"
	"github.com/paiban/weekshift/pkg/render"
	"github.com/paiban/weekshift/pkg/scheduler/solver"
	"github.com/paiban/weekshift/pkg/stats"
)

// 排班来源，用作指标标签
const (
	sourcePage  = "page"
	sourceAPI   = "api"
	sourceBatch = "batch"
)

// Options 处理器选项
type Options struct {
	Solver         solver.Config            // 默认排班参数，可被请求覆盖
	PreferenceFile string                   // 页面与 GET 接口使用的偏好表
	Timeout        time.Duration            // 单次请求排班超时
	MaxBatch       int                      // 批量排班最多的输入份数
	Metrics        *metrics.MetricsRegistry // 为空时不记录指标
	Logger         *logger.SchedulerLogger  // 为空时使用全局日志器
}

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	opts Options
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(opts Options) *ScheduleHandler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 50
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewSchedulerLogger()
	}
	return &ScheduleHandler{opts: opts}
}

// EmployeeInput 员工输入
// preferences 的键为工作日（Mon 或 Monday），值为按优先级排列的班次
type EmployeeInput struct {
	Name        string              `json:"name"`
	Preferences map[string][]string `json:"preferences,omitempty"`
}

// GenerateOptions 生成选项，未填写的字段使用服务端默认值
// 数值字段为指针，显式给出的 0 也要经过校验
type GenerateOptions struct {
	MinPerShift        *int     `json:"min_per_shift,omitempty"`
	MaxDaysPerEmployee *int     `json:"max_days_per_employee,omitempty"`
	TieBreak           string   `json:"tie_break,omitempty"`
	Days               []string `json:"days,omitempty"`
	Shifts             []string `json:"shifts,omitempty"`
	Timeout            *int     `json:"timeout_seconds,omitempty"`
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	Employees []EmployeeInput  `json:"employees"`
	Options   *GenerateOptions `json:"options,omitempty"`
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	RunID      string             `json:"run_id"`
	Schedule   *model.Schedule    `json:"schedule"`
	DaysWorked map[string]int     `json:"days_worked"`
	Statistics *solver.Statistics `json:"statistics"`
	Audit      *stats.Report      `json:"audit"`
	Duration   string             `json:"duration"`
}

// BatchRequest 批量排班请求，inputs 的键为部门或周次等标识
type BatchRequest struct {
	Inputs  map[string][]EmployeeInput `json:"inputs"`
	Options *GenerateOptions           `json:"options,omitempty"`
}

// BatchResponse 批量排班响应
type BatchResponse struct {
	Success  bool                         `json:"success"`
	BatchID  string                       `json:"batch_id"`
	Results  map[string]*GenerateResponse `json:"results"`
	Duration string                       `json:"duration"`
}

// AuditRequest 排班审计请求
type AuditRequest struct {
	Schedule  *model.Schedule  `json:"schedule"`
	Employees []EmployeeInput  `json:"employees"`
	Options   *GenerateOptions `json:"options,omitempty"`
}

// Index 页面：读取偏好表并以 HTML 展示本周排班
func (h *ScheduleHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	employees, err := preference.Load(h.opts.PreferenceFile)
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Str("file", h.opts.PreferenceFile).Msg("读取偏好表失败")
		respondError(w, errors.AsAppError(err))
		return
	}

	resp, appErr := h.run(r.Context(), sourcePage, employees, h.opts.Solver, h.opts.Timeout)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err = render.HTML(w, resp.Schedule, render.PageOptions{
		Title:       "Weekly Schedule",
		MinPerShift: h.opts.Solver.MinPerShift,
	})
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("输出页面失败")
	}
}

// Current 以JSON返回偏好表对应的本周排班
func (h *ScheduleHandler) Current(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	employees, err := preference.Load(h.opts.PreferenceFile)
	if err != nil {
		respondError(w, errors.AsAppError(err))
		return
	}

	resp, appErr := h.run(r.Context(), sourceAPI, employees, h.opts.Solver, h.opts.Timeout)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Generate 生成排班
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	cfg, timeout, appErr := h.resolveOptions(req.Options)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	employees, appErr := toEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	resp, appErr := h.run(r.Context(), sourceAPI, employees, cfg, timeout)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Batch 批量生成互不相关的排班
func (h *ScheduleHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if len(req.Inputs) == 0 {
		respondError(w, errors.InvalidInput("inputs", "不能为空"))
		return
	}
	if len(req.Inputs) > h.opts.MaxBatch {
		respondError(w, errors.InvalidInput("inputs", fmt.Sprintf("最多 %d 份，实际 %d 份", h.opts.MaxBatch, len(req.Inputs))))
		return
	}

	cfg, timeout, appErr := h.resolveOptions(req.Options)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	keys := make([]string, 0, len(req.Inputs))
	for key := range req.Inputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	inputs := make(map[string][]model.Employee, len(req.Inputs))
	for _, key := range keys {
		employees, appErr := toEmployees(req.Inputs[key])
		if appErr != nil {
			respondError(w, appErr.WithField("input", key))
			return
		}
		inputs[key] = employees
	}

	s, err := solver.NewGreedySolver(cfg)
	if err != nil {
		respondError(w, errors.AsAppError(err))
		return
	}
	s.WithLogger(h.opts.Logger)

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	if h.opts.Metrics != nil {
		defer h.opts.Metrics.TrackRun()()
	}

	start := time.Now()
	results, err := s.AssignBatch(ctx, inputs)
	if err != nil {
		h.recordFailure(sourceBatch, time.Since(start))
		appErr := solveError(err)
		if appErr.Details == "" {
			appErr.Details = err.Error()
		}
		respondError(w, appErr)
		return
	}

	resp := BatchResponse{
		Success:  true,
		BatchID:  uuid.New().String(),
		Results:  make(map[string]*GenerateResponse, len(results)),
		Duration: time.Since(start).String(),
	}
	for key, result := range results {
		resp.Results[key] = h.buildResponse(sourceBatch, result, inputs[key], cfg)
	}

	logger.WithContext(r.Context()).Info().
		Str("batch_id", resp.BatchID).
		Int("inputs", len(inputs)).
		Str("duration", resp.Duration).
		Msg("批量排班完成")
	respondJSON(w, http.StatusOK, resp)
}

// Audit 审计客户端提交的排班表
func (h *ScheduleHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Schedule == nil {
		respondError(w, errors.InvalidInput("schedule", "不能为空"))
		return
	}

	cfg, _, appErr := h.resolveOptions(req.Options)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	employees, appErr := toEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	respondJSON(w, http.StatusOK, stats.Audit(req.Schedule, employees, cfg))
}

// run 执行一次排班并构建响应
func (h *ScheduleHandler) run(ctx context.Context, source string, employees []model.Employee, cfg solver.Config, timeout time.Duration) (*GenerateResponse, *errors.AppError) {
	s, err := solver.NewGreedySolver(cfg)
	if err != nil {
		return nil, errors.AsAppError(err)
	}
	s.WithLogger(h.opts.Logger)

	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if h.opts.Metrics != nil {
		defer h.opts.Metrics.TrackRun()()
	}

	start := time.Now()
	result, err := s.Solve(solveCtx, employees)
	if err != nil {
		h.recordFailure(source, time.Since(start))
		return nil, solveError(err)
	}

	resp := h.buildResponse(source, result, employees, cfg)
	runCtx := context.WithValue(ctx, logger.RunIDKey, resp.RunID)
	logger.WithContext(runCtx).Info().
		Str("source", source).
		Int("employees", len(employees)).
		Int("shortfalls", len(resp.Audit.Coverage.Shortfalls)).
		Bool("valid", resp.Audit.Valid).
		Msg("排班完成")
	return resp, nil
}

// buildResponse 审计结果并记录指标
func (h *ScheduleHandler) buildResponse(source string, result *solver.Result, employees []model.Employee, cfg solver.Config) *GenerateResponse {
	report := stats.Audit(result.Schedule, employees, cfg)

	resp := &GenerateResponse{
		Success:    true,
		RunID:      result.RunID.String(),
		Schedule:   result.Schedule,
		DaysWorked: result.DaysWorked,
		Statistics: result.Statistics,
		Audit:      report,
		Duration:   result.Duration.String(),
	}
	if n := len(report.Coverage.Shortfalls); n > 0 {
		resp.Message = fmt.Sprintf("存在%d个未达最低人数的班次", n)
	}

	if m := h.opts.Metrics; m != nil {
		m.RecordScheduleRun(source, true, result.Duration)
		for _, sf := range report.Coverage.Shortfalls {
			m.RecordShortfall(string(sf.Day), string(sf.Shift))
		}
		m.SetCoverageRate(source, report.Coverage.OverallCoverage)
		m.SetFairnessGini(source, report.Fairness.DaysGini)
	}
	return resp
}

func (h *ScheduleHandler) recordFailure(source string, duration time.Duration) {
	if h.opts.Metrics != nil {
		h.opts.Metrics.RecordScheduleRun(source, false, duration)
	}
}

// resolveOptions 合并请求选项与默认配置
func (h *ScheduleHandler) resolveOptions(opts *GenerateOptions) (solver.Config, time.Duration, *errors.AppError) {
	cfg := h.opts.Solver
	timeout := h.opts.Timeout
	if opts == nil {
		return cfg, timeout, nil
	}

	if opts.MinPerShift != nil {
		cfg.MinPerShift = *opts.MinPerShift
	}
	if opts.MaxDaysPerEmployee != nil {
		cfg.MaxDaysPerEmployee = *opts.MaxDaysPerEmployee
	}
	if opts.TieBreak != "" {
		cfg.TieBreak = solver.TieBreak(opts.TieBreak)
	}
	if len(opts.Days) > 0 {
		cfg.Days = make([]model.Day, 0, len(opts.Days))
		for _, d := range opts.Days {
			day, ok := model.ParseDay(d)
			if !ok {
				return cfg, 0, errors.InvalidConfig("days", fmt.Sprintf("未知工作日 %q", d))
			}
			cfg.Days = append(cfg.Days, day)
		}
	}
	if len(opts.Shifts) > 0 {
		cfg.Shifts = make([]model.ShiftKind, 0, len(opts.Shifts))
		for _, s := range opts.Shifts {
			shift, ok := model.ParseShiftKind(s)
			if !ok {
				return cfg, 0, errors.InvalidConfig("shifts", fmt.Sprintf("未知班次 %q", s))
			}
			cfg.Shifts = append(cfg.Shifts, shift)
		}
	}
	if opts.Timeout != nil {
		if *opts.Timeout <= 0 {
			return cfg, 0, errors.InvalidConfig("timeout_seconds", fmt.Sprintf("必须为正数，当前为 %d", *opts.Timeout))
		}
		timeout = time.Duration(*opts.Timeout) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return cfg, 0, errors.AsAppError(err)
	}
	return cfg, timeout, nil
}

// toEmployees 转换员工输入，保持请求中的顺序
func toEmployees(inputs []EmployeeInput) ([]model.Employee, *errors.AppError) {
	employees := make([]model.Employee, 0, len(inputs))
	seen := make(map[string]int, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("employees[%d].name", i)
		if strings.TrimSpace(in.Name) == "" {
			return nil, errors.InvalidInput(field, "员工姓名不能为空")
		}
		if prev, dup := seen[in.Name]; dup {
			return nil, errors.InvalidInput(field, fmt.Sprintf("员工 %s 与 employees[%d] 重复", in.Name, prev))
		}
		seen[in.Name] = i

		e := model.NewEmployee(in.Name)

		keys := make([]string, 0, len(in.Preferences))
		for k := range in.Preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			day, ok := model.ParseDay(key)
			if !ok {
				return nil, errors.MalformedPreference(in.Name, key, "未知工作日")
			}
			if _, dup := e.Preferences[day]; dup {
				return nil, errors.MalformedPreference(in.Name, key, "工作日重复")
			}
			ranking := make([]model.ShiftKind, 0, len(in.Preferences[key]))
			for _, s := range in.Preferences[key] {
				shift, ok := model.ParseShiftKind(s)
				if !ok {
					return nil, errors.MalformedPreference(in.Name, string(day), fmt.Sprintf("未知班次 %q", s))
				}
				ranking = append(ranking, shift)
			}
			e.Preferences[day] = ranking
		}
		employees = append(employees, e)
	}
	return employees, nil
}

// solveError 将求解错误转换为响应错误
func solveError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.New(errors.CodeTimeout, "排班计算超时")
	case stderrors.Is(err, context.Canceled):
		return errors.New(errors.CodeInternal, "排班请求已取消")
	default:
		return errors.AsAppError(err)
	}
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}
