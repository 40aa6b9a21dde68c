package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lumiplan/lumiplan/internal/metrics"
	"github.com/lumiplan/lumiplan/internal/repository"
	"github.com/lumiplan/lumiplan/pkg/capacity"
	"github.com/lumiplan/lumiplan/pkg/errors"
	"github.com/lumiplan/lumiplan/pkg/logger"
	"github.com/lumiplan/lumiplan/pkg/model"
)

// CapacityHandler 容量规划处理器
type CapacityHandler struct {
	planner *capacity.Planner
	repo    *repository.SnapshotRepository
	plog    *logger.PlannerLogger
}

// NewCapacityHandler 创建容量规划处理器
func NewCapacityHandler(planner *capacity.Planner, repo *repository.SnapshotRepository) *CapacityHandler {
	return &CapacityHandler{
		planner: planner,
		repo:    repo,
		plog:    logger.NewPlannerLogger(),
	}
}

// PlanRequest 容量规划请求
type PlanRequest struct {
	SnapshotInput
	ReferenceDate string `json:"reference_date"` // YYYY-MM-DD，窗口首日
}

// PlanResponse 容量规划响应
type PlanResponse struct {
	Success  bool                     `json:"success"`
	Result   *capacity.PlanningResult `json:"result"`
	Duration string                   `json:"duration"`
}

// Plan 聚合未来窗口内每位技师与团队的容量
func (h *CapacityHandler) Plan(w http.ResponseWriter, r *http.Request) {
	result, duration, appErr := h.plan(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	respondJSON(w, http.StatusOK, &PlanResponse{
		Success:  true,
		Result:   result,
		Duration: duration.String(),
	})
}

// AlertsResponse 负载提醒响应
type AlertsResponse struct {
	Success bool             `json:"success"`
	Alerts  []capacity.Alert `json:"alerts"`
	Count   int              `json:"count"`
}

// Alerts 仅返回负载均衡提醒（规划结果的提醒子集）
func (h *CapacityHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	result, _, appErr := h.plan(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	respondJSON(w, http.StatusOK, &AlertsResponse{
		Success: true,
		Alerts:  result.Alerts,
		Count:   len(result.Alerts),
	})
}

// plan 解析请求并执行一次容量规划
func (h *CapacityHandler) plan(r *http.Request) (*capacity.PlanningResult, time.Duration, *errors.AppError) {
	if r.Method != http.MethodPost {
		return nil, 0, errors.New(errors.CodeInvalidInput, "仅支持POST方法")
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}

	if _, err := model.ParseDate(req.ReferenceDate); err != nil {
		return nil, 0, errors.InvalidDateRange(req.ReferenceDate)
	}

	if appErr := loadSnapshot(r, h.repo, &req.SnapshotInput); appErr != nil {
		return nil, 0, appErr
	}

	h.plog.StartPlanning(req.ReferenceDate, len(req.Technicians), len(req.Jobs))

	start := time.Now()
	result := h.planner.Plan(req.ReferenceDate, req.Technicians, req.Jobs, req.Events)
	duration := time.Since(start)

	metrics.RecordCapacityPlan(duration, result.Team.TeamUtilizationPercent)
	for _, alert := range result.Alerts {
		metrics.RecordAlert(string(alert.Type), string(alert.Severity))
	}
	h.plog.PlanningComplete(req.ReferenceDate, duration, result.Team.TeamUtilizationPercent, len(result.Alerts))

	return result, duration, nil
}
