package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lumiplan/lumiplan/internal/metrics"
	"github.com/lumiplan/lumiplan/internal/repository"
	"github.com/lumiplan/lumiplan/pkg/conflict"
	"github.com/lumiplan/lumiplan/pkg/errors"
	"github.com/lumiplan/lumiplan/pkg/model"
	"github.com/lumiplan/lumiplan/pkg/recommend"
)

// RecommendHandler 技师推荐处理器
type RecommendHandler struct {
	matcher *recommend.Matcher
	repo    *repository.SnapshotRepository
}

// NewRecommendHandler 创建技师推荐处理器
func NewRecommendHandler(matcher *recommend.Matcher, repo *repository.SnapshotRepository) *RecommendHandler {
	return &RecommendHandler{matcher: matcher, repo: repo}
}

// RecommendRequest 技师推荐请求
type RecommendRequest struct {
	SnapshotInput
	Proposal conflict.Proposal  `json:"proposal"`
	Options  *recommend.Options `json:"options,omitempty"`
}

// RecommendResponse 技师推荐响应
type RecommendResponse struct {
	Success         bool                       `json:"success"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
}

// Recommend 为提议排期推荐空闲技师
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if _, err := model.ParseDate(req.Proposal.Date); err != nil {
		respondError(w, errors.InvalidDateRange(req.Proposal.Date))
		return
	}

	if appErr := loadSnapshot(r, h.repo, &req.SnapshotInput); appErr != nil {
		respondError(w, appErr)
		return
	}

	recs, err := h.matcher.Recommend(req.Proposal, req.Technicians, req.Jobs, req.Events, req.Options)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			respondError(w, appErr)
		} else {
			respondError(w, errors.Wrap(err, errors.CodeInternal, "推荐计算失败"))
		}
		return
	}

	metrics.RecordRecommendation()

	respondJSON(w, http.StatusOK, &RecommendResponse{
		Success:         true,
		Recommendations: recs,
		Count:           len(recs),
	})
}
