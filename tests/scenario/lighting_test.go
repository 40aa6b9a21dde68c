// Package scenario 提供场景测试
package scenario

import (
	"testing"

	"github.com/lumiplan/lumiplan/pkg/agenda"
	"github.com/lumiplan/lumiplan/pkg/capacity"
	"github.com/lumiplan/lumiplan/pkg/conflict"
	"github.com/lumiplan/lumiplan/pkg/model"
	"github.com/lumiplan/lumiplan/pkg/recommend"
)

// 一家三人灯光设计公司的一周：
// 陈师傅排得很满，刘师傅中等，周师傅几乎空闲。
// 2026-03-02 是周一。
func buildWeek() ([]*model.Technician, []*model.Job, []*model.Event) {
	fullWeek := map[string]float64{
		"monday": 8, "tuesday": 8, "wednesday": 8, "thursday": 8, "friday": 8,
	}

	technicians := []*model.Technician{
		{ID: "chen", Name: "陈师傅", WeeklyAvailableHours: fullWeek},
		{ID: "liu", Name: "刘师傅", WeeklyAvailableHours: fullWeek},
		{ID: "zhou", Name: "周师傅", WeeklyAvailableHours: map[string]float64{
			"monday": 8, "wednesday": 8, "friday": 8,
		}},
	}

	jobs := []*model.Job{
		// 陈师傅：周一双项目超订，周二空档，周三继续
		{ID: "villa", Name: "别墅全宅灯光", ClientName: "王宅", Schedule: &model.JobSchedule{
			Date: "2026-03-02", TimeSlot: model.SlotMorning, DurationHours: 6, TechnicianID: "chen",
		}},
		{ID: "garden", Name: "庭院景观灯", ClientName: "王宅", Schedule: &model.JobSchedule{
			Date: "2026-03-02", TimeSlot: model.SlotAfternoon, DurationHours: 4, TechnicianID: "chen",
		}},
		{ID: "gallery", Name: "画廊轨道灯", ClientName: "艺术空间", Schedule: &model.JobSchedule{
			Date: "2026-03-04", TimeSlot: model.SlotMorning, DurationHours: 5, TechnicianID: "chen",
		}},
		// 刘师傅：两单中等负载
		{ID: "cafe", Name: "咖啡馆氛围改造", ClientName: "慢递咖啡", Schedule: &model.JobSchedule{
			Date: "2026-03-03", TimeSlot: model.SlotCustom, CustomTime: "9:30", DurationHours: 3, TechnicianID: "liu",
		}},
		{ID: "office", Name: "办公区照度整改", ClientName: "初见科技", Schedule: &model.JobSchedule{
			Date: "2026-03-05", TimeSlot: model.SlotAfternoon, DurationHours: 4, TechnicianID: "liu",
		}},
		// 数据残留：指向已离职技师的项目
		{ID: "orphan", Name: "门头灯带维修", Schedule: &model.JobSchedule{
			Date: "2026-03-06", TimeSlot: model.SlotMorning, DurationHours: 2, TechnicianID: "gone",
		}},
		// 草稿项目，未排期
		{ID: "draft", Name: "楼梯感应灯（待报价）"},
	}

	events := []*model.Event{
		{ID: "survey", Title: "新客户现场勘测", Date: "2026-03-02", TimeSlot: model.SlotMorning},
		{ID: "review", Title: "方案评审会", Date: "2026-03-04", TimeSlot: model.SlotCustom, CustomTime: "16:00", DurationHours: 1},
	}

	return technicians, jobs, events
}

// TestContractorWeek_ConflictCheck 周一上午再接一单会踩到谁
func TestContractorWeek_ConflictCheck(t *testing.T) {
	_, jobs, events := buildWeek()
	d := conflict.NewDetector(nil)

	result, err := d.Detect(conflict.Proposal{
		Date: "2026-03-02",
		Slot: model.SlotMorning,
	}, jobs, events)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !result.HasConflict {
		t.Fatal("Monday morning is taken, expected conflict")
	}
	// 别墅项目 + 勘测事件
	if len(result.Conflicts) != 2 {
		t.Fatalf("Expected 2 conflicts, got %d", len(result.Conflicts))
	}
	if result.Conflicts[0].ID != "villa" || result.Conflicts[1].ID != "survey" {
		t.Errorf("Conflict order = [%s, %s], want [villa, survey]",
			result.Conflicts[0].ID, result.Conflicts[1].ID)
	}
	wantWarnings := []string{"1 installation already scheduled", "1 event scheduled"}
	for i, w := range wantWarnings {
		if result.Warnings[i] != w {
			t.Errorf("Warning[%d] = %q, want %q", i, result.Warnings[i], w)
		}
	}

	// 周二傍晚是干净的
	clear, err := d.Detect(conflict.Proposal{
		Date: "2026-03-03",
		Slot: model.SlotEvening,
	}, jobs, events)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if clear.HasConflict {
		t.Error("Tuesday evening should be clear")
	}
}

// TestContractorWeek_Agenda 周三的日程应按时段排好
func TestContractorWeek_Agenda(t *testing.T) {
	_, jobs, events := buildWeek()
	b := agenda.NewBuilder()

	items := b.ForDate("2026-03-04", jobs, events)

	// 画廊项目（上午）在前，评审会（16:00 自定义）在后
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].ID != "gallery" || items[1].ID != "review" {
		t.Errorf("Agenda order = [%s, %s], want [gallery, review]", items[0].ID, items[1].ID)
	}
	if items[0].Source != model.SourceJob || items[1].Source != model.SourceEvent {
		t.Error("Sources not preserved through normalization")
	}
}

// TestContractorWeek_CapacityPlan 整周容量与提醒
func TestContractorWeek_CapacityPlan(t *testing.T) {
	technicians, jobs, events := buildWeek()
	p := capacity.NewPlanner(nil)

	result := p.Plan("2026-03-02", technicians, jobs, events)

	if len(result.Technicians) != 3 {
		t.Fatalf("Expected 3 technicians, got %d", len(result.Technicians))
	}
	for _, tc := range result.Technicians {
		if len(tc.Days) != 7 {
			t.Fatalf("%s has %d days, want 7", tc.TechnicianName, len(tc.Days))
		}
	}

	// 陈师傅周一 10/8 = 125%，当天超订
	chen := result.Technicians[0]
	if chen.Days[0].UtilizationPercent != 125 {
		t.Errorf("Chen Monday = %d%%, want 125%%", chen.Days[0].UtilizationPercent)
	}

	// 团队总量：6+4+5+3+4+2 = 24 小时排期，孤儿项目计入
	team := result.Team
	if team.JobsThisWeek != 6 {
		t.Errorf("JobsThisWeek = %d, want 6 (draft excluded, orphan included)", team.JobsThisWeek)
	}
	if team.TotalScheduledHours != 24 {
		t.Errorf("TotalScheduledHours = %v, want 24", team.TotalScheduledHours)
	}
	if team.UnassignedJobs != 1 || team.UnassignedHours != 2 {
		t.Errorf("Unassigned = %d jobs / %v h, want 1 / 2", team.UnassignedJobs, team.UnassignedHours)
	}
	if team.EventsThisWeek != 2 {
		t.Errorf("EventsThisWeek = %d, want 2", team.EventsThisWeek)
	}

	// 团队 24/104 = 23%，还能接单
	if team.TotalAvailableHours != 104 {
		t.Errorf("TotalAvailableHours = %v, want 104", team.TotalAvailableHours)
	}
	if !result.CanTakeMoreJobs {
		t.Error("23% utilization team should take more jobs")
	}

	// 至少要有陈师傅周一的高级别超订提醒，且排在最前
	if len(result.Alerts) == 0 {
		t.Fatal("Expected alerts")
	}
	if result.Alerts[0].Severity != capacity.SeverityHigh {
		t.Errorf("First alert = %s, want high severity", result.Alerts[0].Severity)
	}
	foundOverbooked := false
	for _, a := range result.Alerts {
		if a.Type == capacity.AlertOverbooked && a.TechnicianID == "chen" {
			foundOverbooked = true
		}
	}
	if !foundOverbooked {
		t.Error("Expected overbooked alert for Chen")
	}
}

// TestContractorWeek_Recommend 周一上午的新单该给谁
func TestContractorWeek_Recommend(t *testing.T) {
	technicians, jobs, events := buildWeek()
	m := recommend.NewMatcher(nil, nil)

	recs, err := m.Recommend(conflict.Proposal{
		Date: "2026-03-02",
		Slot: model.SlotMorning,
	}, technicians, jobs, events, nil)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	// 陈师傅上午有别墅项目被硬过滤；剩下刘、周两位
	if len(recs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(recs))
	}
	for _, r := range recs {
		if r.TechnicianID == "chen" {
			t.Error("Chen has a conflicting job and must be filtered out")
		}
	}
	// 周师傅整周更闲，应排第一
	if recs[0].TechnicianID != "zhou" {
		t.Errorf("Top recommendation = %s, want zhou", recs[0].TechnicianID)
	}
}
