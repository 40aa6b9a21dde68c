// Package capacity 提供技师容量聚合与负载均衡提醒
package capacity

import (
	"fmt"
	"sort"
)

// AlertType 提醒类型
type AlertType string

const (
	AlertOverbooked    AlertType = "overbooked"    // 超订
	AlertUnderutilized AlertType = "underutilized" // 利用率偏低
	AlertGap           AlertType = "gap"           // 排期空档
	AlertSuggestion    AlertType = "suggestion"    // 调度建议
)

// Severity 提醒级别
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// rank 返回级别排序权重
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Alert 负载均衡提醒
// 提醒是派生数据，每次规划重新生成，从不独立持久化
type Alert struct {
	Type         AlertType `json:"type"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	Date         string    `json:"date,omitempty"`
	TechnicianID string    `json:"technician_id,omitempty"`
}

// GenerateAlerts 基于容量聚合结果生成提醒
// 评估顺序：逐技师逐日 → 逐技师整周 → 团队维度；结果按级别从高到低稳定排序
func (p *Planner) GenerateAlerts(technicians []TechnicianCapacity, team TeamCapacity) []Alert {
	alerts := []Alert{}

	for _, tc := range technicians {
		// 单日超订
		for _, day := range tc.Days {
			if day.UtilizationPercent > 100 {
				alerts = append(alerts, Alert{
					Type:         AlertOverbooked,
					Severity:     SeverityHigh,
					TechnicianID: tc.TechnicianID,
					Date:         day.Date,
					Message: fmt.Sprintf("%s is overbooked on %s %s (%d%% utilization)",
						tc.TechnicianName, day.DayName, day.Date, day.UtilizationPercent),
				})
			}
		}

		// 整周超订
		if tc.WeeklyUtilizationPercent > 100 {
			alerts = append(alerts, Alert{
				Type:         AlertOverbooked,
				Severity:     SeverityHigh,
				TechnicianID: tc.TechnicianID,
				Message: fmt.Sprintf("%s is overbooked this week (%d%% utilization)",
					tc.TechnicianName, tc.WeeklyUtilizationPercent),
			})
		}

		// 低利用率：仅在团队整体不闲时才有调度意义
		if float64(tc.WeeklyUtilizationPercent) < p.cfg.UnderutilizedThresholdPercent &&
			float64(team.TeamUtilizationPercent) >= p.cfg.UnderutilizedThresholdPercent {
			alerts = append(alerts, Alert{
				Type:         AlertUnderutilized,
				Severity:     SeverityLow,
				TechnicianID: tc.TechnicianID,
				Message: fmt.Sprintf("%s is only at %d%% utilization this week",
					tc.TechnicianName, tc.WeeklyUtilizationPercent),
			})
		}

		// 排期空档：前后都有排期、本身有可用工时却零排期的日子
		for i := 1; i < len(tc.Days)-1; i++ {
			day := tc.Days[i]
			if day.JobCount == 0 && day.AvailableHours > 0 &&
				tc.Days[i-1].JobCount > 0 && tc.Days[i+1].JobCount > 0 {
				alerts = append(alerts, Alert{
					Type:         AlertGap,
					Severity:     SeverityMedium,
					TechnicianID: tc.TechnicianID,
					Date:         day.Date,
					Message: fmt.Sprintf("%s has an open %s (%s) between scheduled days",
						tc.TechnicianName, day.DayName, day.Date),
				})
			}
		}

		alerts = append(alerts, p.suggestRebalance(tc)...)
	}

	alerts = append(alerts, p.suggestTeamRebalance(technicians)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.rank() > alerts[j].Severity.rank()
	})

	return alerts
}

// suggestRebalance 为单个技师生成挪单建议：
// 某天超订且同周存在低负载的可用日时，建议把溢出项目挪过去
func (p *Planner) suggestRebalance(tc TechnicianCapacity) []Alert {
	var alerts []Alert

	for _, day := range tc.Days {
		if day.UtilizationPercent <= 100 {
			continue
		}
		target := -1
		for i, candidate := range tc.Days {
			if candidate.Date == day.Date || candidate.AvailableHours <= 0 {
				continue
			}
			if float64(candidate.UtilizationPercent) >= p.cfg.AdmissionThresholdPercent {
				continue
			}
			if target < 0 || candidate.UtilizationPercent < tc.Days[target].UtilizationPercent {
				target = i
			}
		}
		if target < 0 {
			continue
		}
		alerts = append(alerts, Alert{
			Type:         AlertSuggestion,
			Severity:     SeverityMedium,
			TechnicianID: tc.TechnicianID,
			Date:         tc.Days[target].Date,
			Message: fmt.Sprintf("%s is at %d%% utilization %s - consider moving %s's overflow job there",
				tc.TechnicianName, tc.Days[target].UtilizationPercent, tc.Days[target].DayName, day.DayName),
		})
	}

	return alerts
}

// suggestTeamRebalance 在技师之间利用率差距过大时生成再均衡建议
func (p *Planner) suggestTeamRebalance(technicians []TechnicianCapacity) []Alert {
	if len(technicians) < 2 {
		return nil
	}

	busiest, idlest := 0, 0
	for i, tc := range technicians {
		if tc.WeeklyUtilizationPercent > technicians[busiest].WeeklyUtilizationPercent {
			busiest = i
		}
		if tc.WeeklyUtilizationPercent < technicians[idlest].WeeklyUtilizationPercent {
			idlest = i
		}
	}

	spread := technicians[busiest].WeeklyUtilizationPercent - technicians[idlest].WeeklyUtilizationPercent
	if spread <= 40 || float64(technicians[busiest].WeeklyUtilizationPercent) < p.cfg.AdmissionThresholdPercent {
		return nil
	}
	if technicians[idlest].TotalAvailableHours <= 0 {
		return nil
	}

	return []Alert{{
		Type:         AlertSuggestion,
		Severity:     SeverityMedium,
		TechnicianID: technicians[idlest].TechnicianID,
		Message: fmt.Sprintf("Consider shifting jobs from %s (%d%%) to %s (%d%%)",
			technicians[busiest].TechnicianName, technicians[busiest].WeeklyUtilizationPercent,
			technicians[idlest].TechnicianName, technicians[idlest].WeeklyUtilizationPercent),
	}}
}
