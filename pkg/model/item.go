// Package model 定义排期与容量核心的数据模型
package model

// 两类来源的历史默认时长不同：项目默认 2 小时，事件默认 1 小时
const (
	DefaultJobDurationHours   = 2
	DefaultEventDurationHours = 1
)

// ScheduledItem 排期项：项目排期与日历事件归一化后的统一形态
// 冲突扫描与容量聚合都以它为操作单元
type ScheduledItem struct {
	ID            string     `json:"id"`
	Date          string     `json:"date"` // YYYY-MM-DD
	Slot          TimeSlot   `json:"time_slot"`
	CustomTime    string     `json:"custom_time,omitempty"`
	DurationHours float64    `json:"duration_hours"`
	Name          string     `json:"name"`
	ClientName    string     `json:"client_name,omitempty"`
	Source        ItemSource `json:"origin"`
}

// ItemFromJob 将项目归一化为排期项
// 未排期的项目返回 false，不会进入后续计算
func ItemFromJob(j *Job) (ScheduledItem, bool) {
	if j == nil || !j.IsScheduled() {
		return ScheduledItem{}, false
	}
	duration := j.Schedule.DurationHours
	if duration <= 0 {
		duration = DefaultJobDurationHours
	}
	return ScheduledItem{
		ID:            j.ID,
		Date:          j.Schedule.Date,
		Slot:          j.Schedule.TimeSlot,
		CustomTime:    j.Schedule.CustomTime,
		DurationHours: duration,
		Name:          j.Name,
		ClientName:    j.ClientName,
		Source:        SourceJob,
	}, true
}

// ItemFromEvent 将日历事件归一化为排期项
// 无日期的事件返回 false
func ItemFromEvent(e *Event) (ScheduledItem, bool) {
	if e == nil || e.Date == "" {
		return ScheduledItem{}, false
	}
	duration := e.DurationHours
	if duration <= 0 {
		duration = DefaultEventDurationHours
	}
	return ScheduledItem{
		ID:            e.ID,
		Date:          e.Date,
		Slot:          e.TimeSlot,
		CustomTime:    e.CustomTime,
		DurationHours: duration,
		Name:          e.Title,
		Source:        SourceEvent,
	}, true
}

// TimeLabel 返回排期项的展示用时段标签
func (it ScheduledItem) TimeLabel() string {
	if it.Slot == SlotCustom && it.CustomTime != "" {
		return it.CustomTime
	}
	return it.Slot.Label()
}
