// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lumiplan/lumiplan/pkg/model"
)

// SnapshotRepository 排期快照仓储
// 按账户加载项目/事件/技师的一致快照，供排期核心做只读分析
type SnapshotRepository struct {
	db DB
}

// NewSnapshotRepository 创建快照仓储
func NewSnapshotRepository(db DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Snapshot 账户的排期数据快照
type Snapshot struct {
	Jobs        []*model.Job
	Events      []*model.Event
	Technicians []*model.Technician
}

// Load 加载账户的完整快照
func (r *SnapshotRepository) Load(ctx context.Context, accountID uuid.UUID) (*Snapshot, error) {
	jobs, err := r.LoadJobs(ctx, accountID)
	if err != nil {
		return nil, err
	}
	events, err := r.LoadEvents(ctx, accountID)
	if err != nil {
		return nil, err
	}
	technicians, err := r.LoadTechnicians(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Jobs: jobs, Events: events, Technicians: technicians}, nil
}

// LoadJobs 加载账户的全部项目
// schedule 为 JSONB 子对象，未排期的项目该列为 NULL
func (r *SnapshotRepository) LoadJobs(ctx context.Context, accountID uuid.UUID) ([]*model.Job, error) {
	query := `
		SELECT id, name, client_name, status, schedule
		FROM projects
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// LoadEvents 加载账户的全部日历事件
func (r *SnapshotRepository) LoadEvents(ctx context.Context, accountID uuid.UUID) ([]*model.Event, error) {
	query := `
		SELECT id, title, date, time_slot, custom_time, duration_hours
		FROM calendar_events
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY date, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("查询日历事件失败: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// LoadTechnicians 加载账户的技师花名册
// weekly_available_hours 为 JSONB，键为小写英文星期名
func (r *SnapshotRepository) LoadTechnicians(ctx context.Context, accountID uuid.UUID) ([]*model.Technician, error) {
	query := `
		SELECT id, name, weekly_available_hours
		FROM technicians
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("查询技师失败: %w", err)
	}
	defer rows.Close()

	var technicians []*model.Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		technicians = append(technicians, t)
	}
	return technicians, rows.Err()
}

// scanJob 扫描项目行
func scanJob(s Scanner) (*model.Job, error) {
	var job model.Job
	var clientName, status sql.NullString
	var scheduleJSON []byte

	if err := s.Scan(&job.ID, &job.Name, &clientName, &status, &scheduleJSON); err != nil {
		return nil, fmt.Errorf("扫描项目行失败: %w", err)
	}

	job.ClientName = clientName.String
	job.Status = status.String
	if len(scheduleJSON) > 0 {
		var schedule model.JobSchedule
		if err := json.Unmarshal(scheduleJSON, &schedule); err != nil {
			return nil, fmt.Errorf("解析项目排期失败: %w", err)
		}
		job.Schedule = &schedule
	}

	return &job, nil
}

// scanEvent 扫描事件行
func scanEvent(s Scanner) (*model.Event, error) {
	var event model.Event
	var customTime sql.NullString
	var duration sql.NullFloat64

	if err := s.Scan(&event.ID, &event.Title, &event.Date, &event.TimeSlot, &customTime, &duration); err != nil {
		return nil, fmt.Errorf("扫描事件行失败: %w", err)
	}

	event.CustomTime = customTime.String
	event.DurationHours = duration.Float64

	return &event, nil
}

// scanTechnician 扫描技师行
func scanTechnician(s Scanner) (*model.Technician, error) {
	var t model.Technician
	var hoursJSON []byte

	if err := s.Scan(&t.ID, &t.Name, &hoursJSON); err != nil {
		return nil, fmt.Errorf("扫描技师行失败: %w", err)
	}

	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &t.WeeklyAvailableHours); err != nil {
			return nil, fmt.Errorf("解析技师可用工时失败: %w", err)
		}
	}

	return &t, nil
}
