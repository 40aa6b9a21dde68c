// Package handler 提供HTTP请求处理器
//
// 所有接口都是无状态的：请求体携带完整的数据快照（项目/日程/技师），
// 服务端只做计算不做持久化。快照省略时可按 account_id 从只读仓储加载。
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lumiplan/lumiplan/internal/metrics"
	"github.com/lumiplan/lumiplan/internal/repository"
	"github.com/lumiplan/lumiplan/pkg/agenda"
	"github.com/lumiplan/lumiplan/pkg/conflict"
	"github.com/lumiplan/lumiplan/pkg/errors"
	"github.com/lumiplan/lumiplan/pkg/logger"
	"github.com/lumiplan/lumiplan/pkg/model"
)

// SnapshotInput 请求体携带的数据快照
type SnapshotInput struct {
	AccountID   string              `json:"account_id,omitempty"`
	Jobs        []*model.Job        `json:"jobs"`
	Events      []*model.Event      `json:"events"`
	Technicians []*model.Technician `json:"technicians"`
}

// ScheduleHandler 排期处理器
type ScheduleHandler struct {
	detector *conflict.Detector
	builder  *agenda.Builder
	repo     *repository.SnapshotRepository // 可为nil（纯无状态模式）
}

// NewScheduleHandler 创建排期处理器
func NewScheduleHandler(detector *conflict.Detector, repo *repository.SnapshotRepository) *ScheduleHandler {
	return &ScheduleHandler{
		detector: detector,
		builder:  agenda.NewBuilder(),
		repo:     repo,
	}
}

// ConflictRequest 冲突检测请求
type ConflictRequest struct {
	SnapshotInput
	Proposal conflict.Proposal `json:"proposal"`
}

// ConflictResponse 冲突检测响应
type ConflictResponse struct {
	Success     bool                  `json:"success"`
	HasConflict bool                  `json:"has_conflict"`
	Conflicts   []model.ScheduledItem `json:"conflicts"`
	Warnings    []string              `json:"warnings"`
	Duration    string                `json:"duration"`
}

// CheckConflicts 检测提议排期与已有排期的冲突
func (h *ScheduleHandler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if _, err := model.ParseDate(req.Proposal.Date); err != nil {
		respondError(w, errors.InvalidDateRange(req.Proposal.Date))
		return
	}

	if appErr := h.resolveSnapshot(r, &req.SnapshotInput); appErr != nil {
		respondError(w, appErr)
		return
	}

	start := time.Now()
	result, err := h.detector.Detect(req.Proposal, req.Jobs, req.Events)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			respondError(w, appErr)
		} else {
			respondError(w, errors.Wrap(err, errors.CodeInvalidTimeFormat, "时间格式无效"))
		}
		return
	}

	metrics.RecordConflictCheck(result.HasConflict, len(result.Conflicts))
	if result.HasConflict {
		logger.WithContext(r.Context()).Warn().
			Str("date", req.Proposal.Date).
			Int("conflicts", len(result.Conflicts)).
			Msg("检出排期冲突")
	}

	respondJSON(w, http.StatusOK, &ConflictResponse{
		Success:     true,
		HasConflict: result.HasConflict,
		Conflicts:   result.Conflicts,
		Warnings:    result.Warnings,
		Duration:    time.Since(start).String(),
	})
}

// AgendaRequest 日程请求
type AgendaRequest struct {
	SnapshotInput
	Date string `json:"date"` // YYYY-MM-DD
}

// AgendaResponse 日程响应
type AgendaResponse struct {
	Success bool                  `json:"success"`
	Date    string                `json:"date"`
	DayName string                `json:"day_name"`
	Items   []model.ScheduledItem `json:"items"`
	Count   int                   `json:"count"`
}

// DailyAgenda 返回某日的统一日程（项目+日程，按时段排序）
func (h *ScheduleHandler) DailyAgenda(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AgendaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if _, err := model.ParseDate(req.Date); err != nil {
		respondError(w, errors.InvalidDateRange(req.Date))
		return
	}

	if appErr := h.resolveSnapshot(r, &req.SnapshotInput); appErr != nil {
		respondError(w, appErr)
		return
	}

	items := h.builder.ForDate(req.Date, req.Jobs, req.Events)

	respondJSON(w, http.StatusOK, &AgendaResponse{
		Success: true,
		Date:    req.Date,
		DayName: model.DayName(req.Date),
		Items:   items,
		Count:   len(items),
	})
}

// resolveSnapshot 当请求体未携带快照时从仓储加载
func (h *ScheduleHandler) resolveSnapshot(r *http.Request, in *SnapshotInput) *errors.AppError {
	return loadSnapshot(r, h.repo, in)
}

func loadSnapshot(r *http.Request, repo *repository.SnapshotRepository, in *SnapshotInput) *errors.AppError {
	// 请求体已携带数据，直接使用
	if in.Jobs != nil || in.Events != nil || in.Technicians != nil {
		return nil
	}
	if in.AccountID == "" {
		return errors.New(errors.CodeInvalidInput, "请求未携带数据快照，也未指定account_id")
	}
	if repo == nil {
		return errors.New(errors.CodeInvalidInput, "服务未连接数据库，请在请求体中携带数据快照")
	}

	accountID, err := uuid.Parse(in.AccountID)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "无效的账户ID格式")
	}

	snapshot, err := repo.Load(r.Context(), accountID)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "加载数据快照失败")
	}

	in.Jobs = snapshot.Jobs
	in.Events = snapshot.Events
	in.Technicians = snapshot.Technicians
	return nil
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
	})
}
