// Package capacity 提供技师容量聚合与负载均衡提醒
package capacity

import (
	"math"

	"github.com/lumiplan/lumiplan/pkg/agenda"
	"github.com/lumiplan/lumiplan/pkg/model"
)

// Config 容量规划配置
type Config struct {
	WindowDays                    int     // 滚动窗口天数
	AdmissionThresholdPercent     float64 // 团队接单阈值（利用率低于该值才建议接新单）
	UnderutilizedThresholdPercent float64 // 技师低利用率阈值
	FallbackAvgJobHours           float64 // 窗口内无项目时的平均项目时长兜底
}

// DefaultConfig 返回默认配置
// 80% 接单阈值与产品其他部分的电气负载余量规则保持一致
func DefaultConfig() *Config {
	return &Config{
		WindowDays:                    7,
		AdmissionThresholdPercent:     80,
		UnderutilizedThresholdPercent: 50,
		FallbackAvgJobHours:           model.DefaultJobDurationHours,
	}
}

// JobSummary 单日项目摘要（仅用于展示下钻，不参与后续计算）
type JobSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ClientName string  `json:"client_name,omitempty"`
	TimeLabel  string  `json:"time_label"`
	Hours      float64 `json:"hours"`
}

// DayCapacity 技师单日容量
type DayCapacity struct {
	Date               string       `json:"date"`
	DayName            string       `json:"day_name"`
	JobCount           int          `json:"scheduled_job_count"`
	ScheduledHours     float64      `json:"scheduled_hours"`
	AvailableHours     float64      `json:"available_hours"`
	UtilizationPercent int          `json:"utilization_percent"`
	IsToday            bool         `json:"is_today"`
	Jobs               []JobSummary `json:"jobs"`
}

// TechnicianCapacity 技师周容量
type TechnicianCapacity struct {
	TechnicianID             string        `json:"technician_id"`
	TechnicianName           string        `json:"technician_name"`
	Days                     []DayCapacity `json:"days"`
	TotalScheduledHours      float64       `json:"total_scheduled_hours"`
	TotalAvailableHours      float64       `json:"total_available_hours"`
	WeeklyUtilizationPercent int           `json:"weekly_utilization_percent"`
	IsOverbooked             bool          `json:"is_overbooked"`
}

// TeamCapacity 团队周容量汇总
type TeamCapacity struct {
	JobsThisWeek           int     `json:"jobs_this_week"`
	EventsThisWeek         int     `json:"events_this_week"`
	TotalScheduledHours    float64 `json:"total_scheduled_hours"`
	TotalAvailableHours    float64 `json:"total_available_hours"`
	TeamUtilizationPercent int     `json:"team_utilization_percent"`
	RemainingCapacityHours float64 `json:"remaining_capacity_hours"`
	// 指向未知技师或未指派技师的项目：不进入任何技师的聚合，
	// 但必须计入团队总量，不能悄悄消失
	UnassignedJobs  int     `json:"unassigned_jobs"`
	UnassignedHours float64 `json:"unassigned_hours"`
}

// PlanningResult 容量规划结果
type PlanningResult struct {
	ReferenceDate     string               `json:"reference_date"`
	Technicians       []TechnicianCapacity `json:"technicians"`
	Team              TeamCapacity         `json:"team"`
	Alerts            []Alert              `json:"alerts"`
	CanTakeMoreJobs   bool                 `json:"can_take_more_jobs"`
	SuggestedCapacity int                  `json:"suggested_capacity"`
}

// Planner 容量规划器
// 纯计算：不持有共享状态，可被多请求并发调用；"今天"由调用方显式传入
type Planner struct {
	cfg     *Config
	builder *agenda.Builder
}

// NewPlanner 创建容量规划器
func NewPlanner(cfg *Config) *Planner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	return &Planner{cfg: cfg, builder: agenda.NewBuilder()}
}

// Plan 以 referenceDate 为窗口起点，聚合每位技师与团队的容量并生成提醒
// 每位技师恒有 WindowDays 个 DayCapacity，与项目多少无关；
// 同一项目被数据指派给多名技师时不做去重（数据质量由调用方负责）
func (p *Planner) Plan(referenceDate string, technicians []*model.Technician, jobs []*model.Job, events []*model.Event) *PlanningResult {
	windowDates := make([]string, p.cfg.WindowDays)
	inWindow := make(map[string]bool, p.cfg.WindowDays)
	for i := range windowDates {
		d := model.AddDays(referenceDate, i)
		windowDates[i] = d
		inWindow[d] = true
	}

	roster := make(map[string]bool, len(technicians))
	for _, t := range technicians {
		if t != nil {
			roster[t.ID] = true
		}
	}

	result := &PlanningResult{
		ReferenceDate: referenceDate,
		Technicians:   make([]TechnicianCapacity, 0, len(technicians)),
	}

	var teamAvailable float64
	for _, t := range technicians {
		if t == nil {
			continue
		}
		tc := p.planTechnician(t, windowDates, referenceDate, jobs)
		teamAvailable += tc.TotalAvailableHours
		result.Technicians = append(result.Technicians, tc)
	}

	// 团队汇总遍历窗口内全部已排期项目，含未指派/未知技师的项目
	team := TeamCapacity{TotalAvailableHours: teamAvailable}
	var jobHoursTotal float64
	for _, j := range jobs {
		if j == nil || !j.IsScheduled() || !inWindow[j.Schedule.Date] {
			continue
		}
		item, ok := model.ItemFromJob(j)
		if !ok {
			continue
		}
		team.JobsThisWeek++
		team.TotalScheduledHours += item.DurationHours
		jobHoursTotal += item.DurationHours
		if !roster[j.Schedule.TechnicianID] {
			team.UnassignedJobs++
			team.UnassignedHours += item.DurationHours
		}
	}
	for _, e := range events {
		if e == nil || !inWindow[e.Date] {
			continue
		}
		team.EventsThisWeek++
	}

	team.TeamUtilizationPercent = utilizationPercent(team.TotalScheduledHours, team.TotalAvailableHours)
	team.RemainingCapacityHours = math.Max(0, team.TotalAvailableHours-team.TotalScheduledHours)
	result.Team = team

	avgJobHours := p.cfg.FallbackAvgJobHours
	if team.JobsThisWeek > 0 {
		avgJobHours = jobHoursTotal / float64(team.JobsThisWeek)
	}
	if avgJobHours > 0 {
		result.SuggestedCapacity = int(math.Floor(team.RemainingCapacityHours / avgJobHours))
	}
	result.CanTakeMoreJobs = float64(team.TeamUtilizationPercent) < p.cfg.AdmissionThresholdPercent

	result.Alerts = p.GenerateAlerts(result.Technicians, result.Team)

	return result
}

// planTechnician 聚合单个技师的窗口容量
func (p *Planner) planTechnician(t *model.Technician, windowDates []string, referenceDate string, jobs []*model.Job) TechnicianCapacity {
	tc := TechnicianCapacity{
		TechnicianID:   t.ID,
		TechnicianName: t.Name,
		Days:           make([]DayCapacity, 0, len(windowDates)),
	}

	for _, date := range windowDates {
		day := DayCapacity{
			Date:           date,
			DayName:        model.DayName(date),
			AvailableHours: t.AvailableHoursOn(model.WeekdayOf(date)),
			IsToday:        date == referenceDate,
			Jobs:           []JobSummary{},
		}

		items := make([]model.ScheduledItem, 0, 4)
		for _, j := range jobs {
			if j == nil || !j.IsOnDate(date) || j.Schedule.TechnicianID != t.ID {
				continue
			}
			if item, ok := model.ItemFromJob(j); ok {
				items = append(items, item)
			}
		}
		agenda.SortItems(items)

		for _, item := range items {
			day.JobCount++
			day.ScheduledHours += item.DurationHours
			day.Jobs = append(day.Jobs, JobSummary{
				ID:         item.ID,
				Name:       item.Name,
				ClientName: item.ClientName,
				TimeLabel:  item.TimeLabel(),
				Hours:      item.DurationHours,
			})
		}

		day.UtilizationPercent = utilizationPercent(day.ScheduledHours, day.AvailableHours)

		tc.TotalScheduledHours += day.ScheduledHours
		tc.TotalAvailableHours += day.AvailableHours
		tc.Days = append(tc.Days, day)
	}

	tc.WeeklyUtilizationPercent = utilizationPercent(tc.TotalScheduledHours, tc.TotalAvailableHours)
	tc.IsOverbooked = tc.WeeklyUtilizationPercent > 100

	return tc
}

// utilizationPercent 计算利用率百分比
// 可用工时为 0 时定义为 0，绝不触发除零；超过 100 不截断，超订必须可见
func utilizationPercent(scheduled, available float64) int {
	if available <= 0 {
		return 0
	}
	return int(math.Round(scheduled / available * 100))
}
