package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Asset statuses.
const (
	AssetStatusOperational = "operational"
	AssetStatusMaintenance = "maintenance"
	AssetStatusRetired     = "retired"
)

// Technician statuses.
const (
	TechnicianStatusActive   = "active"
	TechnicianStatusInactive = "inactive"
	TechnicianStatusOnLeave  = "on-leave"
)

// Plan statuses and frequency kinds.
const (
	PlanStatusActive = "active"
	PlanStatusPaused = "paused"

	FrequencyTypeTime  = "time"
	FrequencyTypeUsage = "usage"

	FrequencyUnitDays   = "days"
	FrequencyUnitMonths = "months"
	FrequencyUnitYears  = "years"
)

// Ticket statuses.
const (
	TicketStatusOpen       = "open"
	TicketStatusAssigned   = "assigned"
	TicketStatusInProgress = "in_progress"
	TicketStatusCompleted  = "completed"
	TicketStatusClosed     = "closed"
)

// Ticket urgency/priority levels.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Ticket origins and activity/checklist categories.
const (
	TicketOriginManual     = "manual"
	TicketOriginPreventive = "preventive"

	ActivityTypeSystem = "system"
	ActivityTypeUser   = "user"

	ChecklistCategoryExecution = "execution"
)

// UnknownAssetID is recorded on generated tickets when a plan has no target asset.
const UnknownAssetID = "unknown"

// Asset 设备资产
type Asset struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Location     string         `json:"location"`
	SerialNumber string         `gorm:"index" json:"serial_number"`
	Category     string         `json:"category"`
	Status       string         `gorm:"default:'operational'" json:"status"` // operational, maintenance, retired
	Notes        string         `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Tickets []MaintenanceTicket `gorm:"foreignKey:AssetID" json:"tickets,omitempty"`
}

// Technician 维护技师
type Technician struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Skills    string         `json:"skills"` // comma separated
	Status    string         `gorm:"default:'active'" json:"status"` // active, inactive, on-leave
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Tickets []MaintenanceTicket `gorm:"foreignKey:TechnicianID" json:"tickets,omitempty"`
}

// IsActive reports whether the technician is eligible for auto-assignment.
func (t *Technician) IsActive() bool {
	return t.Status == TechnicianStatusActive
}

// HasContactInfo reports whether assignment notifications can reach the technician.
func (t *Technician) HasContactInfo() bool {
	return t.Email != "" || t.Phone != ""
}

// PreventivePlan 预防性维护计划
type PreventivePlan struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Status         string         `gorm:"default:'active';index" json:"status"` // active, paused
	AutoGenerate   *bool          `json:"auto_generate"`                        // nil means enabled
	AssetIDs       string         `json:"asset_ids"`                            // comma separated, ordered
	FrequencyType  string         `gorm:"default:'time'" json:"frequency_type"` // time, usage
	FrequencyValue int            `json:"frequency_value"`
	FrequencyUnit  string         `json:"frequency_unit"` // days, months, years
	LastExecution  *time.Time     `json:"last_execution"`
	NextExecution  *time.Time     `gorm:"index" json:"next_execution"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Tasks []PlanTask `gorm:"foreignKey:PlanID" json:"tasks,omitempty"`
}

// AutoGenerateEnabled reports whether the scheduler may generate tickets for the plan.
// An unset flag counts as enabled.
func (p *PreventivePlan) AutoGenerateEnabled() bool {
	return p.AutoGenerate == nil || *p.AutoGenerate
}

// AssetIDList returns the plan's target asset ids in order.
func (p *PreventivePlan) AssetIDList() []string {
	if p.AssetIDs == "" {
		return nil
	}
	ids := []string{}
	for _, id := range strings.Split(p.AssetIDs, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// FirstAssetID returns the first target asset id, or "" if the plan has none.
func (p *PreventivePlan) FirstAssetID() string {
	ids := p.AssetIDList()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// PlanTask 计划任务项（有序）
type PlanTask struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PlanID      string `gorm:"index;size:36" json:"plan_id"`
	Position    int    `gorm:"not null" json:"position"`
	Description string `gorm:"not null" json:"description"`
}

// MaintenanceTicket 维护工单
type MaintenanceTicket struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	AssetID      string         `gorm:"index;size:36" json:"asset_id"`
	TechnicianID *string        `gorm:"index;size:36" json:"technician_id"`
	PlanID       *string        `gorm:"index;size:36" json:"plan_id"`
	Status       string         `gorm:"default:'open';index" json:"status"` // open, assigned, in_progress, completed, closed
	Urgency      string         `gorm:"default:'medium'" json:"urgency"`
	Priority     string         `gorm:"default:'medium'" json:"priority"`
	Origin       string         `gorm:"default:'manual'" json:"origin"` // manual, preventive
	TotalCost    float64        `gorm:"default:0" json:"total_cost"`
	CompletedAt  *time.Time     `json:"completed_at"`
	ClosedAt     *time.Time     `json:"closed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Asset      *Asset          `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	Technician *Technician     `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Checklist  []ChecklistItem `gorm:"foreignKey:TicketID" json:"checklist,omitempty"`
	Activities []TicketActivity `gorm:"foreignKey:TicketID" json:"activities,omitempty"`
	UsedParts  []UsedPart      `gorm:"foreignKey:TicketID" json:"used_parts,omitempty"`
	TimeLogs   []TimeLog       `gorm:"foreignKey:TicketID" json:"time_logs,omitempty"`
}

// ChecklistItem 工单检查项（从计划任务复制，顺序保留）
type ChecklistItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TicketID    string `gorm:"index;size:36" json:"ticket_id"`
	Position    int    `gorm:"not null" json:"position"`
	Description string `gorm:"not null" json:"description"`
	Checked     bool   `gorm:"default:false" json:"checked"`
	Category    string `gorm:"default:'execution'" json:"category"`
}

// TicketActivity 工单活动记录
type TicketActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  string    `gorm:"index;size:36" json:"ticket_id"`
	Type      string    `gorm:"default:'user'" json:"type"` // system, user
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// UsedPart 工单使用的备件
type UsedPart struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	TicketID string  `gorm:"index;size:36" json:"ticket_id"`
	PartName string  `gorm:"not null" json:"part_name"`
	Quantity int     `gorm:"default:1" json:"quantity"`
	UnitCost float64 `gorm:"default:0" json:"unit_cost"`
}

// TimeLog 工单工时记录
type TimeLog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TicketID     string     `gorm:"index;size:36" json:"ticket_id"`
	TechnicianID string     `gorm:"index;size:36" json:"technician_id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	Minutes      int        `gorm:"default:0" json:"minutes"`
}

// PlanExecution is the idempotency lock row: at most one per (plan, calendar day).
// Creating it is the atomic operation that grants the right to generate a ticket
// for that plan on that day.
type PlanExecution struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PlanID        string    `gorm:"uniqueIndex:idx_plan_executions_plan_day;size:36;not null" json:"plan_id"`
	ExecutionDate string    `gorm:"uniqueIndex:idx_plan_executions_plan_day;size:10;not null" json:"execution_date"` // YYYY-MM-DD
	CreatedAt     time.Time `json:"created_at"`
}

// TableName 指定表名
func (PlanExecution) TableName() string {
	return "plan_executions"
}
