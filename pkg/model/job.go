// Package model 定义排期与容量核心的数据模型
package model

import "time"

// Job 已保存的照明设计项目
// 由应用层提供快照，本核心只读不写
type Job struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	ClientName string       `json:"client_name,omitempty"`
	Status     string       `json:"status,omitempty"` // draft/quoted/approved/completed
	Schedule   *JobSchedule `json:"schedule,omitempty"`
}

// JobSchedule 项目排期子对象（可选，未排期的项目没有该字段）
type JobSchedule struct {
	Date          string   `json:"scheduled_date"` // YYYY-MM-DD
	TimeSlot      TimeSlot `json:"time_slot"`
	CustomTime    string   `json:"custom_time,omitempty"` // HH:MM，仅 custom 时段使用
	DurationHours float64  `json:"estimated_duration_hours,omitempty"`
	TechnicianID  string   `json:"assigned_technician_id,omitempty"`
}

// IsScheduled 检查项目是否已有排期日期
func (j *Job) IsScheduled() bool {
	return j.Schedule != nil && j.Schedule.Date != ""
}

// IsOnDate 检查项目是否排在指定日期
func (j *Job) IsOnDate(date string) bool {
	return j.IsScheduled() && j.Schedule.Date == date
}

// Event 日历事件（勘测、复测、客户会面等）
type Event struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Date          string   `json:"date"` // YYYY-MM-DD
	TimeSlot      TimeSlot `json:"time_slot"`
	CustomTime    string   `json:"custom_time,omitempty"`
	DurationHours float64  `json:"duration_hours,omitempty"`
}

// IsOnDate 检查事件是否在指定日期
func (e *Event) IsOnDate(date string) bool {
	return e.Date != "" && e.Date == date
}

// Technician 安装技师
type Technician struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// 每个星期日的可用工时，键为小写英文星期名（monday…sunday）
	// 缺失的键视为该日不上班（0 小时）
	WeeklyAvailableHours map[string]float64 `json:"weekly_available_hours_by_weekday"`
}

// AvailableHoursOn 返回技师在某个星期日的可用工时
func (t *Technician) AvailableHoursOn(wd time.Weekday) float64 {
	if t.WeeklyAvailableHours == nil {
		return 0
	}
	switch wd {
	case time.Monday:
		return t.WeeklyAvailableHours["monday"]
	case time.Tuesday:
		return t.WeeklyAvailableHours["tuesday"]
	case time.Wednesday:
		return t.WeeklyAvailableHours["wednesday"]
	case time.Thursday:
		return t.WeeklyAvailableHours["thursday"]
	case time.Friday:
		return t.WeeklyAvailableHours["friday"]
	case time.Saturday:
		return t.WeeklyAvailableHours["saturday"]
	default:
		return t.WeeklyAvailableHours["sunday"]
	}
}

// WeeklyTotal 返回技师一周可用工时合计
func (t *Technician) WeeklyTotal() float64 {
	var total float64
	for _, h := range t.WeeklyAvailableHours {
		total += h
	}
	return total
}
