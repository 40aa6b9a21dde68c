// Package model 定义排期与容量核心的数据模型
package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// TimeSlot 时段类型
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"   // 上午 08:00-12:00
	SlotAfternoon TimeSlot = "afternoon" // 下午 12:00-17:00
	SlotEvening   TimeSlot = "evening"   // 傍晚 17:00-20:00
	SlotCustom    TimeSlot = "custom"    // 自定义开始时间 + 时长
)

// Rank 返回时段的排序权重（上午=0 … 自定义=3）
func (s TimeSlot) Rank() int {
	switch s {
	case SlotMorning:
		return 0
	case SlotAfternoon:
		return 1
	case SlotEvening:
		return 2
	default:
		return 3
	}
}

// Label 返回面向客户的时段名称
func (s TimeSlot) Label() string {
	switch s {
	case SlotMorning:
		return "Morning"
	case SlotAfternoon:
		return "Afternoon"
	case SlotEvening:
		return "Evening"
	default:
		return "Custom"
	}
}

// IsValid 检查时段是否为已知类型
func (s TimeSlot) IsValid() bool {
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening, SlotCustom:
		return true
	}
	return false
}

// ItemSource 排期项来源
type ItemSource string

const (
	SourceJob   ItemSource = "job"   // 已保存项目的排期
	SourceEvent ItemSource = "event" // 日历事件
)

// Interval 一天内的时间区间，单位为小时（可含小数），语义为 [Start, End)
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Overlaps 检查两个区间是否重叠
// 半开区间语义：首尾相接（12:00 结束与 12:00 开始）不算重叠
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Duration 返回区间时长（小时）
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Label 返回 "HH:MM-HH:MM" 形式的区间标签
func (iv Interval) Label() string {
	return FormatClock(iv.Start) + "-" + FormatClock(iv.End)
}

// FormatClock 将小时数格式化为 HH:MM
func FormatClock(hours float64) string {
	total := int(math.Round(hours * 60))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// DateLayout 日期格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD 日期字符串
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// AddDays 返回日期加 n 天后的日期字符串，输入非法时原样返回
func AddDays(date string, n int) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}

// WeekdayOf 返回日期对应的星期，输入非法时返回周日
func WeekdayOf(date string) time.Weekday {
	t, err := ParseDate(date)
	if err != nil {
		return time.Sunday
	}
	return t.Weekday()
}

// DayName 返回日期对应的英文星期名（面向客户展示）
func DayName(date string) string {
	return WeekdayOf(date).String()
}

// BaseModel 基础模型（持久化记录的通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
