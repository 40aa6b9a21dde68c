package capacity

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/lumiplan/lumiplan/pkg/model"
)

// 2026-03-02 是周一，窗口为周一到周日
const refDate = "2026-03-02"

func weekdayTech(id, name string, hoursPerDay float64, days ...string) *model.Technician {
	hours := make(map[string]float64, len(days))
	for _, d := range days {
		hours[d] = hoursPerDay
	}
	return &model.Technician{ID: id, Name: name, WeeklyAvailableHours: hours}
}

func assignedJob(id, techID, date string, slot model.TimeSlot, duration float64) *model.Job {
	return &model.Job{
		ID:   id,
		Name: "安装项目 " + id,
		Schedule: &model.JobSchedule{
			Date:          date,
			TimeSlot:      slot,
			DurationHours: duration,
			TechnicianID:  techID,
		},
	}
}

func TestPlanner_WindowAlwaysSevenDays(t *testing.T) {
	p := NewPlanner(nil)

	tech := weekdayTech("t1", "陈师傅", 8, "monday", "tuesday", "wednesday", "thursday", "friday")
	result := p.Plan(refDate, []*model.Technician{tech}, nil, nil)

	if len(result.Technicians) != 1 {
		t.Fatalf("Expected 1 technician, got %d", len(result.Technicians))
	}
	days := result.Technicians[0].Days
	if len(days) != 7 {
		t.Fatalf("Expected 7 days regardless of jobs, got %d", len(days))
	}
	if days[0].Date != "2026-03-02" || days[6].Date != "2026-03-08" {
		t.Errorf("Window = [%s, %s], want [2026-03-02, 2026-03-08]", days[0].Date, days[6].Date)
	}
	if !days[0].IsToday {
		t.Error("First day must be flagged as today")
	}
	for i := 1; i < 7; i++ {
		if days[i].IsToday {
			t.Errorf("Day %d should not be today", i)
		}
	}
	if days[0].DayName != "Monday" || days[6].DayName != "Sunday" {
		t.Errorf("DayNames = [%s, %s], want [Monday, Sunday]", days[0].DayName, days[6].DayName)
	}
}

func TestPlanner_UtilizationAt80Percent(t *testing.T) {
	p := NewPlanner(nil)

	// 周可用 40 小时，排期 32 小时 = 80%
	tech := weekdayTech("t1", "陈师傅", 8, "monday", "tuesday", "wednesday", "thursday", "friday")
	jobs := []*model.Job{
		assignedJob("j1", "t1", "2026-03-02", model.SlotMorning, 8),
		assignedJob("j2", "t1", "2026-03-03", model.SlotMorning, 8),
		assignedJob("j3", "t1", "2026-03-04", model.SlotMorning, 8),
		assignedJob("j4", "t1", "2026-03-05", model.SlotMorning, 8),
	}

	result := p.Plan(refDate, []*model.Technician{tech}, jobs, nil)

	tc := result.Technicians[0]
	if tc.TotalScheduledHours != 32 {
		t.Errorf("TotalScheduledHours = %v, want 32", tc.TotalScheduledHours)
	}
	if tc.TotalAvailableHours != 40 {
		t.Errorf("TotalAvailableHours = %v, want 40", tc.TotalAvailableHours)
	}
	if tc.WeeklyUtilizationPercent != 80 {
		t.Errorf("WeeklyUtilizationPercent = %d, want 80", tc.WeeklyUtilizationPercent)
	}
	if tc.IsOverbooked {
		t.Error("80% utilization is not overbooked")
	}

	// 80% 不触发低利用率提醒
	for _, a := range result.Alerts {
		if a.Type == AlertUnderutilized {
			t.Errorf("Unexpected underutilized alert: %s", a.Message)
		}
	}
}

func TestPlanner_ExactlyFullIsNotOverbooked(t *testing.T) {
	p := NewPlanner(nil)

	// 刚好 100% 不算超订
	tech := weekdayTech("t1", "陈师傅", 8, "monday")
	jobs := []*model.Job{
		assignedJob("j1", "t1", "2026-03-02", model.SlotMorning, 8),
	}

	result := p.Plan(refDate, []*model.Technician{tech}, jobs, nil)

	tc := result.Technicians[0]
	if tc.WeeklyUtilizationPercent != 100 {
		t.Fatalf("WeeklyUtilizationPercent = %d, want 100", tc.WeeklyUtilizationPercent)
	}
	if tc.IsOverbooked {
		t.Error("Exactly 100% must not be overbooked")
	}
	for _, a := range result.Alerts {
		if a.Type == AlertOverbooked {
			t.Errorf("Unexpected overbooked alert: %s", a.Message)
		}
	}
}

func TestPlanner_OverbookedAboveFull(t *testing.T) {
	p := NewPlanner(nil)

	tech := weekdayTech("t1", "陈师傅", 8, "monday")
	jobs := []*model.Job{
		assignedJob("j1", "t1", "2026-03-02", model.SlotMorning, 6),
		assignedJob("j2", "t1", "2026-03-02", model.SlotAfternoon, 4),
	}

	result := p.Plan(refDate, []*model.Technician{tech}, jobs, nil)

	tc := result.Technicians[0]
	// 10/8 = 125%，不得截断到 100
	if tc.Days[0].UtilizationPercent != 125 {
		t.Errorf("Day utilization = %d, want 125 (no clamping)", tc.Days[0].UtilizationPercent)
	}
	if !tc.IsOverbooked {
		t.Error("125% utilization must be overbooked")
	}

	found := false
	for _, a := range result.Alerts {
		if a.Type == AlertOverbooked && a.Severity == SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Error("Expected a high severity overbooked alert")
	}
}

func TestPlanner_ZeroAvailabilityDay(t *testing.T) {
	p := NewPlanner(nil)

	// 周二不上班，却被排了项目：利用率定义为 0，不崩溃不除零
	tech := weekdayTech("t1", "陈师傅", 8, "monday")
	jobs := []*model.Job{
		assignedJob("j1", "t1", "2026-03-03", model.SlotMorning, 3),
	}

	result := p.Plan(refDate, []*model.Technician{tech}, jobs, nil)

	day := result.Technicians[0].Days[1]
	if day.AvailableHours != 0 {
		t.Fatalf("Tuesday AvailableHours = %v, want 0", day.AvailableHours)
	}
	if day.ScheduledHours != 3 {
		t.Errorf("Tuesday ScheduledHours = %v, want 3", day.ScheduledHours)
	}
	if day.UtilizationPercent != 0 {
		t.Errorf("Zero-availability day utilization = %d, want 0", day.UtilizationPercent)
	}
}

func TestPlanner_UnassignedJobsBucket(t *testing.T) {
	p := NewPlanner(nil)

	tech := weekdayTech("t1", "陈师傅", 8, "monday")
	jobs := []*model.Job{
		assignedJob("j1", "t1", "2026-03-02", model.SlotMorning, 4),
		// 指向名册之外的技师
		assignedJob("j2", "ghost", "2026-03-02", model.SlotAfternoon, 3),
		// 完全未指派
		assignedJob("j3", "", "2026-03-03", model.SlotMorning, 0),
	}

	result := p.Plan(refDate, []*model.Technician{tech}, jobs, nil)

	team := result.Team
	// 未知/未指派的项目不能悄悄消失：计入团队总量
	if team.JobsThisWeek != 3 {
		t.Errorf("JobsThisWeek = %d, want 3", team.JobsThisWeek)
	}
	if team.UnassignedJobs != 2 {
		t.Errorf("UnassignedJobs = %d, want 2", team.UnassignedJobs)
	}
	// j3 无时长，缺省 2 小时
	if team.UnassignedHours != 5 {
		t.Errorf("UnassignedHours = %v, want 5", team.UnassignedHours)
	}
	if team.TotalScheduledHours != 9 {
		t.Errorf("TotalScheduledHours = %v, want 9", team.TotalScheduledHours)
	}
	// 但不进入任何技师的聚合
	if result.Technicians[0].TotalScheduledHours != 4 {
		t.Errorf("Technician scheduled = %v, want 4", result.Technicians[0].TotalScheduledHours)
	}
}

func TestPlanner_TeamCapacityAndSuggestion(t *testing.T) {
	p := NewPlanner(nil)

	// 两名技师各 40 小时：团队 80 小时，排期 76 小时 = 95%
	techA := weekdayTech("t1", "陈师傅", 8, "monday", "tuesday", "wednesday", "thursday", "friday")
	techB := weekdayTech("t2", "刘师傅", 8, "monday", "tuesday", "wednesday", "thursday", "friday")

	var jobs []*model.Job
	dates := []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"}
	id := 0
	for _, d := range dates {
		for _, techID := range []string{"t1", "t2"} {
			id++
			jobs = append(jobs, assignedJob(fmt.Sprintf("j%d", id), techID, d, model.SlotMorning, 4))
			id++
			jobs = append(jobs, assignedJob(fmt.Sprintf("j%d", id), techID, d, model.SlotAfternoon, 3.6))
		}
	}

	result := p.Plan(refDate, []*model.Technician{techA, techB}, jobs, nil)

	team := result.Team
	if team.TotalAvailableHours != 80 {
		t.Fatalf("TotalAvailableHours = %v, want 80", team.TotalAvailableHours)
	}
	if team.TotalScheduledHours != 76 {
		t.Fatalf("TotalScheduledHours = %v, want 76", team.TotalScheduledHours)
	}
	if team.TeamUtilizationPercent != 95 {
		t.Errorf("TeamUtilizationPercent = %d, want 95", team.TeamUtilizationPercent)
	}
	if team.RemainingCapacityHours != 4 {
		t.Errorf("RemainingCapacityHours = %v, want 4", team.RemainingCapacityHours)
	}
	// 平均项目时长 76/20 = 3.8，余量 4 → 建议 1 单
	if result.SuggestedCapacity != 1 {
		t.Errorf("SuggestedCapacity = %d, want 1", result.SuggestedCapacity)
	}
	// 95% >= 80% 接单阈值
	if result.CanTakeMoreJobs {
		t.Error("95% utilization team should not take more jobs")
	}
}

func TestPlanner_AdmissionThresholdBoundary(t *testing.T) {
	p := NewPlanner(nil)

	// 刚好 80%：不再接单（严格小于才接）
	tech := weekdayTech("t1", "陈师傅", 10, "monday")
	jobs := []*model.Job{
		assignedJob("j1", "t1", "2026-03-02", model.SlotMorning, 8),
	}
	result := p.Plan(refDate, []*model.Technician{tech}, jobs, nil)
	if result.Team.TeamUtilizationPercent != 80 {
		t.Fatalf("TeamUtilizationPercent = %d, want 80", result.Team.TeamUtilizationPercent)
	}
	if result.CanTakeMoreJobs {
		t.Error("Exactly at threshold must not take more jobs")
	}

	// 79%：可以接单
	jobs[0].Schedule.DurationHours = 7.9
	result = p.Plan(refDate, []*model.Technician{tech}, jobs, nil)
	if result.Team.TeamUtilizationPercent != 79 {
		t.Fatalf("TeamUtilizationPercent = %d, want 79", result.Team.TeamUtilizationPercent)
	}
	if !result.CanTakeMoreJobs {
		t.Error("Below threshold should take more jobs")
	}
}

func TestPlanner_SuggestedCapacityFallback(t *testing.T) {
	p := NewPlanner(nil)

	// 窗口内无项目：平均项目时长回退为 2 小时
	tech := weekdayTech("t1", "陈师傅", 8, "monday")
	result := p.Plan(refDate, []*model.Technician{tech}, nil, nil)

	if result.Team.RemainingCapacityHours != 8 {
		t.Fatalf("RemainingCapacityHours = %v, want 8", result.Team.RemainingCapacityHours)
	}
	if result.SuggestedCapacity != 4 {
		t.Errorf("SuggestedCapacity = %d, want 4 (8h / 2h fallback)", result.SuggestedCapacity)
	}
}

func TestPlanner_EventsCountedInWindow(t *testing.T) {
	p := NewPlanner(nil)

	tech := weekdayTech("t1", "陈师傅", 8, "monday")
	events := []*model.Event{
		{ID: "e1", Title: "现场勘测", Date: "2026-03-02", TimeSlot: model.SlotMorning},
		{ID: "e2", Title: "复测", Date: "2026-03-08", TimeSlot: model.SlotAfternoon},
		{ID: "e3", Title: "窗口外会面", Date: "2026-03-10", TimeSlot: model.SlotMorning},
	}

	result := p.Plan(refDate, []*model.Technician{tech}, nil, events)

	if result.Team.EventsThisWeek != 2 {
		t.Errorf("EventsThisWeek = %d, want 2 (out-of-window excluded)", result.Team.EventsThisWeek)
	}
}

func TestPlanner_OutOfWindowJobsIgnored(t *testing.T) {
	p := NewPlanner(nil)

	tech := weekdayTech("t1", "陈师傅", 8, "monday")
	jobs := []*model.Job{
		assignedJob("j1", "t1", "2026-03-02", model.SlotMorning, 2),
		assignedJob("j2", "t1", "2026-03-09", model.SlotMorning, 2), // 下周一
		assignedJob("j3", "t1", "2026-02-28", model.SlotMorning, 2), // 上周
	}

	result := p.Plan(refDate, []*model.Technician{tech}, jobs, nil)

	if result.Team.JobsThisWeek != 1 {
		t.Errorf("JobsThisWeek = %d, want 1", result.Team.JobsThisWeek)
	}
	if result.Technicians[0].TotalScheduledHours != 2 {
		t.Errorf("TotalScheduledHours = %v, want 2", result.Technicians[0].TotalScheduledHours)
	}
}

func TestPlanner_JobSummariesSorted(t *testing.T) {
	p := NewPlanner(nil)

	tech := weekdayTech("t1", "陈师傅", 10, "monday")
	jobs := []*model.Job{
		assignedJob("j-evening", "t1", "2026-03-02", model.SlotEvening, 1),
		assignedJob("j-morning", "t1", "2026-03-02", model.SlotMorning, 2),
	}

	result := p.Plan(refDate, []*model.Technician{tech}, jobs, nil)

	day := result.Technicians[0].Days[0]
	if day.JobCount != 2 {
		t.Fatalf("JobCount = %d, want 2", day.JobCount)
	}
	if day.Jobs[0].ID != "j-morning" || day.Jobs[1].ID != "j-evening" {
		t.Errorf("Day jobs order = [%s, %s], want [j-morning, j-evening]",
			day.Jobs[0].ID, day.Jobs[1].ID)
	}
	if day.Jobs[0].TimeLabel != "Morning" {
		t.Errorf("TimeLabel = %s, want Morning", day.Jobs[0].TimeLabel)
	}
}

func TestPlanner_Idempotent(t *testing.T) {
	p := NewPlanner(nil)

	techs := []*model.Technician{
		weekdayTech("t1", "陈师傅", 8, "monday", "tuesday", "wednesday"),
		weekdayTech("t2", "刘师傅", 6, "monday", "friday"),
	}
	jobs := []*model.Job{
		assignedJob("j1", "t1", "2026-03-02", model.SlotMorning, 4),
		assignedJob("j2", "t2", "2026-03-06", model.SlotAfternoon, 5),
		assignedJob("j3", "ghost", "2026-03-04", model.SlotMorning, 2),
	}
	events := []*model.Event{
		{ID: "e1", Title: "勘测", Date: "2026-03-03", TimeSlot: model.SlotMorning},
	}

	first := p.Plan(refDate, techs, jobs, events)
	for i := 0; i < 3; i++ {
		again := p.Plan(refDate, techs, jobs, events)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("Plan must be idempotent for identical input")
		}
	}
}
