// Package timewindow 提供时段到具体时间区间的解析
package timewindow

import (
	"strconv"
	"strings"

	"github.com/lumiplan/lumiplan/pkg/errors"
	"github.com/lumiplan/lumiplan/pkg/model"
)

// 固定时段窗口
var (
	MorningWindow   = model.Interval{Start: 8, End: 12}
	AfternoonWindow = model.Interval{Start: 12, End: 17}
	EveningWindow   = model.Interval{Start: 17, End: 20}
)

// Resolver 时间窗口解析器
// 默认宽松解析：无法解析的时间片段按 0 处理，保证脏数据下排期功能仍可用；
// Strict 开启后，非法的自定义时间返回 INVALID_TIME_FORMAT 错误
type Resolver struct {
	Strict bool
}

// NewResolver 创建宽松解析器
func NewResolver() *Resolver {
	return &Resolver{}
}

// NewStrictResolver 创建严格解析器
func NewStrictResolver() *Resolver {
	return &Resolver{Strict: true}
}

// Resolve 将时段解析为 [start, end) 区间（小时，24小时制）
// 固定时段忽略 durationHours；custom 时段 durationHours<=0 时默认 2 小时
func (r *Resolver) Resolve(slot model.TimeSlot, customTime string, durationHours float64) (model.Interval, error) {
	switch slot {
	case model.SlotMorning:
		return MorningWindow, nil
	case model.SlotAfternoon:
		return AfternoonWindow, nil
	case model.SlotEvening:
		return EveningWindow, nil
	default:
		// custom 以及未知时段都按自定义时间处理
		if durationHours <= 0 {
			durationHours = model.DefaultJobDurationHours
		}
		start, err := r.clockHours(customTime)
		if err != nil {
			return model.Interval{}, err
		}
		return model.Interval{Start: start, End: start + durationHours}, nil
	}
}

// ResolveItem 解析排期项的时间窗口
func (r *Resolver) ResolveItem(item model.ScheduledItem) (model.Interval, error) {
	return r.Resolve(item.Slot, item.CustomTime, item.DurationHours)
}

// clockHours 解析 HH:MM 为小时数
func (r *Resolver) clockHours(clock string) (float64, error) {
	if r.Strict {
		if err := validateClock(clock); err != nil {
			return 0, err
		}
	}
	return float64(ClockMinutes(clock)) / 60, nil
}

// ClockMinutes 宽松解析 HH:MM 为当日分钟数
// 非数字片段按 0 处理，永不失败
func ClockMinutes(clock string) int {
	parts := strings.SplitN(clock, ":", 2)
	hour, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	minute := 0
	if len(parts) > 1 {
		minute, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return hour*60 + minute
}

// validateClock 严格校验 HH:MM 格式
func validateClock(clock string) error {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return errors.InvalidTimeFormat(clock)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return errors.InvalidTimeFormat(clock)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return errors.InvalidTimeFormat(clock)
	}
	return nil
}
