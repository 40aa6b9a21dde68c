// Package conflict 提供排期冲突检测
package conflict

import (
	"fmt"

	"github.com/lumiplan/lumiplan/pkg/model"
	"github.com/lumiplan/lumiplan/pkg/timewindow"
)

// Proposal 待检测的排期请求
type Proposal struct {
	Date          string         `json:"proposed_date"` // YYYY-MM-DD
	Slot          model.TimeSlot `json:"proposed_slot"`
	CustomTime    string         `json:"proposed_custom_time,omitempty"`
	DurationHours float64        `json:"proposed_duration,omitempty"`
	// 改期/编辑已有排期时传入自身ID，避免与自己冲突
	ExcludeID string `json:"exclude_id,omitempty"`
}

// Result 冲突检测结果
type Result struct {
	HasConflict bool                  `json:"has_conflict"`
	Conflicts   []model.ScheduledItem `json:"conflicts"`
	Warnings    []string              `json:"warnings"`
}

// Detector 冲突检测器
// 纯函数式：只读入参，不持有状态，相同输入产出相同结果（含冲突顺序）
type Detector struct {
	resolver *timewindow.Resolver
}

// NewDetector 创建冲突检测器，resolver 为 nil 时使用默认宽松解析
func NewDetector(resolver *timewindow.Resolver) *Detector {
	if resolver == nil {
		resolver = timewindow.NewResolver()
	}
	return &Detector{resolver: resolver}
}

// Detect 检测提议时段与当日已有排期的冲突
// 返回所有重叠的排期项（先项目后事件，保持输入顺序），而非只返回第一个
func (d *Detector) Detect(p Proposal, jobs []*model.Job, events []*model.Event) (*Result, error) {
	duration := p.DurationHours
	if duration <= 0 {
		duration = model.DefaultJobDurationHours
	}

	proposed, err := d.resolver.Resolve(p.Slot, p.CustomTime, duration)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Conflicts: []model.ScheduledItem{},
		Warnings:  []string{},
	}

	jobCount := 0
	eventCount := 0

	for _, j := range jobs {
		if j == nil || !j.IsOnDate(p.Date) || j.ID == p.ExcludeID {
			continue
		}
		item, ok := model.ItemFromJob(j)
		if !ok {
			continue
		}
		window, err := d.resolver.ResolveItem(item)
		if err != nil {
			return nil, err
		}
		if proposed.Overlaps(window) {
			result.Conflicts = append(result.Conflicts, item)
			jobCount++
		}
	}

	for _, e := range events {
		if e == nil || !e.IsOnDate(p.Date) || e.ID == p.ExcludeID {
			continue
		}
		item, ok := model.ItemFromEvent(e)
		if !ok {
			continue
		}
		window, err := d.resolver.ResolveItem(item)
		if err != nil {
			return nil, err
		}
		if proposed.Overlaps(window) {
			result.Conflicts = append(result.Conflicts, item)
			eventCount++
		}
	}

	result.HasConflict = len(result.Conflicts) > 0

	// 按来源汇总提示，计数为零时不输出
	if jobCount > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d %s already scheduled", jobCount, plural(jobCount, "installation", "installations")))
	}
	if eventCount > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d %s scheduled", eventCount, plural(eventCount, "event", "events")))
	}

	return result, nil
}

// plural 按数量选择单复数
func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
