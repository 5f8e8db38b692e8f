package activity

import "time"

type Log struct {
	ID          string
	CompanyID   string
	Action      string
	Module      string
	TargetID    string
	ActorID     string
	Description string
	Metadata    map[string]interface{}
	CreatedAt   time.Time
}

const (
	ModuleEmployee = "employee"
	ModuleOvertime = "overtime"
	ModuleAdvance  = "advance"
	ModulePayroll  = "payroll"
)
