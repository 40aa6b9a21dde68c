// Package recommend 为提议的排期推荐合适的技师
package recommend

import (
	"fmt"
	"sort"

	"github.com/lumiplan/lumiplan/pkg/capacity"
	"github.com/lumiplan/lumiplan/pkg/conflict"
	"github.com/lumiplan/lumiplan/pkg/model"
	"github.com/lumiplan/lumiplan/pkg/timewindow"
)

// Recommendation 技师推荐
type Recommendation struct {
	TechnicianID             string  `json:"technician_id"`
	TechnicianName           string  `json:"technician_name"`
	Score                    float64 `json:"score"`
	Rank                     int     `json:"rank"`
	Reason                   string  `json:"reason"`
	DayUtilizationPercent    int     `json:"day_utilization_percent"`
	WeeklyUtilizationPercent int     `json:"weekly_utilization_percent"`
}

// Options 推荐选项
type Options struct {
	MaxRecommendations int      // 最大推荐数量
	MinScore           float64  // 最低得分
	ExcludeTechnicians []string // 排除的技师
}

// DefaultOptions 返回默认选项
func DefaultOptions() *Options {
	return &Options{
		MaxRecommendations: 3,
		MinScore:           0,
	}
}

// Matcher 技师匹配器
// 硬过滤：当日与该技师已有项目冲突的直接排除；
// 软排序：按当日与整周利用率余量打分
type Matcher struct {
	detector *conflict.Detector
	planner  *capacity.Planner
}

// NewMatcher 创建技师匹配器
func NewMatcher(cfg *capacity.Config, resolver *timewindow.Resolver) *Matcher {
	return &Matcher{
		detector: conflict.NewDetector(resolver),
		planner:  capacity.NewPlanner(cfg),
	}
}

// Recommend 为提议排期返回按得分排序的技师推荐
// 仅为建议，不做任何指派写入
func (m *Matcher) Recommend(
	p conflict.Proposal,
	technicians []*model.Technician,
	jobs []*model.Job,
	events []*model.Event,
	opts *Options,
) ([]Recommendation, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	excludeSet := make(map[string]bool, len(opts.ExcludeTechnicians))
	for _, id := range opts.ExcludeTechnicians {
		excludeSet[id] = true
	}

	// 以提议日期为窗口起点做一次容量聚合，首日即提议当天
	plan := m.planner.Plan(p.Date, technicians, jobs, events)
	capacityByID := make(map[string]capacity.TechnicianCapacity, len(plan.Technicians))
	for _, tc := range plan.Technicians {
		capacityByID[tc.TechnicianID] = tc
	}

	candidates := []Recommendation{}

	for _, t := range technicians {
		if t == nil || excludeSet[t.ID] {
			continue
		}

		tc, ok := capacityByID[t.ID]
		if !ok || len(tc.Days) == 0 {
			continue
		}
		day := tc.Days[0]
		if day.AvailableHours <= 0 {
			continue // 当天不上班
		}

		// 只与该技师名下的项目做冲突检测；事件不绑定技师，不阻塞指派
		result, err := m.detector.Detect(p, jobsForTechnician(jobs, t.ID), nil)
		if err != nil {
			return nil, err
		}
		if result.HasConflict {
			continue
		}

		rec := Recommendation{
			TechnicianID:             t.ID,
			TechnicianName:           t.Name,
			Score:                    score(day.UtilizationPercent, tc.WeeklyUtilizationPercent),
			DayUtilizationPercent:    day.UtilizationPercent,
			WeeklyUtilizationPercent: tc.WeeklyUtilizationPercent,
			Reason: fmt.Sprintf("Available %s at %d%% day utilization, %d%% for the week",
				day.DayName, day.UtilizationPercent, tc.WeeklyUtilizationPercent),
		}
		if rec.Score < opts.MinScore {
			continue
		}
		candidates = append(candidates, rec)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if opts.MaxRecommendations > 0 && len(candidates) > opts.MaxRecommendations {
		candidates = candidates[:opts.MaxRecommendations]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	return candidates, nil
}

// score 按余量打分：当日余量权重高于整周余量
func score(dayUtil, weeklyUtil int) float64 {
	s := 100 - 0.6*float64(dayUtil) - 0.4*float64(weeklyUtil)
	if s < 0 {
		return 0
	}
	return s
}

// jobsForTechnician 过滤指派给某技师的项目
func jobsForTechnician(jobs []*model.Job, technicianID string) []*model.Job {
	var result []*model.Job
	for _, j := range jobs {
		if j != nil && j.IsScheduled() && j.Schedule.TechnicianID == technicianID {
			result = append(result, j)
		}
	}
	return result
}
