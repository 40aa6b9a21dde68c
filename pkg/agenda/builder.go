// Package agenda 提供单日日程构建
package agenda

import (
	"sort"

	"github.com/lumiplan/lumiplan/pkg/model"
	"github.com/lumiplan/lumiplan/pkg/timewindow"
)

// Builder 日程构建器
type Builder struct{}

// NewBuilder 创建日程构建器
func NewBuilder() *Builder {
	return &Builder{}
}

// ForDate 返回指定日期的全部排期项（项目 + 事件），按时段排序
// 排序键：时段权重（上午0/下午1/傍晚2/自定义3），自定义之间按开始时间的分钟数
// 比较（先解析为数值再比较，"9:00" 与 "10:00" 也能正确排序），其余并列保持输入顺序
func (b *Builder) ForDate(date string, jobs []*model.Job, events []*model.Event) []model.ScheduledItem {
	items := make([]model.ScheduledItem, 0, len(jobs)+len(events))

	for _, j := range jobs {
		if j == nil || !j.IsOnDate(date) {
			continue
		}
		if item, ok := model.ItemFromJob(j); ok {
			items = append(items, item)
		}
	}
	for _, e := range events {
		if e == nil || !e.IsOnDate(date) {
			continue
		}
		if item, ok := model.ItemFromEvent(e); ok {
			items = append(items, item)
		}
	}

	SortItems(items)
	return items
}

// SortItems 按时段权重与自定义开始时间稳定排序
func SortItems(items []model.ScheduledItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Slot.Rank(), items[j].Slot.Rank()
		if ri != rj {
			return ri < rj
		}
		if items[i].Slot == model.SlotCustom && items[j].Slot == model.SlotCustom {
			return timewindow.ClockMinutes(items[i].CustomTime) < timewindow.ClockMinutes(items[j].CustomTime)
		}
		return false
	})
}
