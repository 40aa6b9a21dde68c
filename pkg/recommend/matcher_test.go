package recommend

import (
	"testing"

	"github.com/lumiplan/lumiplan/pkg/conflict"
	"github.com/lumiplan/lumiplan/pkg/model"
)

// 2026-03-02 是周一
func mondayTech(id, name string, hours float64) *model.Technician {
	return &model.Technician{
		ID:   id,
		Name: name,
		WeeklyAvailableHours: map[string]float64{
			"monday": hours,
		},
	}
}

func jobFor(id, techID, date string, slot model.TimeSlot, duration float64) *model.Job {
	return &model.Job{
		ID:   id,
		Name: "项目 " + id,
		Schedule: &model.JobSchedule{
			Date:          date,
			TimeSlot:      slot,
			DurationHours: duration,
			TechnicianID:  techID,
		},
	}
}

func TestMatcher_RanksByLoad(t *testing.T) {
	m := NewMatcher(nil, nil)

	techs := []*model.Technician{
		mondayTech("t-busy", "忙师傅", 8),
		mondayTech("t-free", "闲师傅", 8),
	}
	// 忙师傅周一下午已有 4 小时
	jobs := []*model.Job{
		jobFor("j1", "t-busy", "2026-03-02", model.SlotAfternoon, 4),
	}

	recs, err := m.Recommend(conflict.Proposal{
		Date: "2026-03-02",
		Slot: model.SlotMorning,
	}, techs, jobs, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].TechnicianID != "t-free" {
		t.Errorf("Top recommendation = %s, want t-free", recs[0].TechnicianID)
	}
	if recs[0].Rank != 1 || recs[1].Rank != 2 {
		t.Errorf("Ranks = [%d, %d], want [1, 2]", recs[0].Rank, recs[1].Rank)
	}
	if recs[0].Score <= recs[1].Score {
		t.Errorf("Scores not descending: %v <= %v", recs[0].Score, recs[1].Score)
	}
}

func TestMatcher_ConflictingTechnicianExcluded(t *testing.T) {
	m := NewMatcher(nil, nil)

	techs := []*model.Technician{
		mondayTech("t1", "陈师傅", 8),
		mondayTech("t2", "刘师傅", 8),
	}
	// 陈师傅上午已有项目，与提议直接冲突
	jobs := []*model.Job{
		jobFor("j1", "t1", "2026-03-02", model.SlotMorning, 2),
	}

	recs, err := m.Recommend(conflict.Proposal{
		Date: "2026-03-02",
		Slot: model.SlotMorning,
	}, techs, jobs, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].TechnicianID != "t2" {
		t.Errorf("Recommendation = %s, want t2", recs[0].TechnicianID)
	}
}

func TestMatcher_EventsDoNotBlock(t *testing.T) {
	m := NewMatcher(nil, nil)

	techs := []*model.Technician{mondayTech("t1", "陈师傅", 8)}
	// 事件不绑定技师，不应阻塞指派
	events := []*model.Event{
		{ID: "e1", Title: "全员例会", Date: "2026-03-02", TimeSlot: model.SlotMorning},
	}

	recs, err := m.Recommend(conflict.Proposal{
		Date: "2026-03-02",
		Slot: model.SlotMorning,
	}, techs, nil, events, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation despite event, got %d", len(recs))
	}
}

func TestMatcher_DayOffExcluded(t *testing.T) {
	m := NewMatcher(nil, nil)

	techs := []*model.Technician{
		mondayTech("t1", "陈师傅", 8),
		// 周一不上班
		{ID: "t2", Name: "刘师傅", WeeklyAvailableHours: map[string]float64{"tuesday": 8}},
	}

	recs, err := m.Recommend(conflict.Proposal{
		Date: "2026-03-02",
		Slot: model.SlotMorning,
	}, techs, nil, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].TechnicianID != "t1" {
		t.Errorf("Recommendation = %s, want t1", recs[0].TechnicianID)
	}
}

func TestMatcher_Options(t *testing.T) {
	m := NewMatcher(nil, nil)

	techs := []*model.Technician{
		mondayTech("t1", "师傅一", 8),
		mondayTech("t2", "师傅二", 8),
		mondayTech("t3", "师傅三", 8),
		mondayTech("t4", "师傅四", 8),
	}

	t.Run("数量上限", func(t *testing.T) {
		recs, err := m.Recommend(conflict.Proposal{
			Date: "2026-03-02", Slot: model.SlotMorning,
		}, techs, nil, nil, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(recs) != 3 {
			t.Errorf("Expected default max of 3, got %d", len(recs))
		}
	})

	t.Run("排除指定技师", func(t *testing.T) {
		recs, err := m.Recommend(conflict.Proposal{
			Date: "2026-03-02", Slot: model.SlotMorning,
		}, techs, nil, nil, &Options{
			MaxRecommendations: 10,
			ExcludeTechnicians: []string{"t1", "t3"},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("Expected 2 recommendations, got %d", len(recs))
		}
		for _, r := range recs {
			if r.TechnicianID == "t1" || r.TechnicianID == "t3" {
				t.Errorf("Excluded technician %s was recommended", r.TechnicianID)
			}
		}
	})
}

func TestScore(t *testing.T) {
	tests := []struct {
		dayUtil    int
		weeklyUtil int
		want       float64
	}{
		{0, 0, 100},
		{50, 50, 50},
		{100, 100, 0},
		{200, 200, 0}, // 不为负
	}

	for _, tt := range tests {
		if got := score(tt.dayUtil, tt.weeklyUtil); got != tt.want {
			t.Errorf("score(%d, %d) = %v, want %v", tt.dayUtil, tt.weeklyUtil, got, tt.want)
		}
	}
}
