package kpi

import "time"

// WeeklyKPIRecord is one person-week of indicators. Autonomy and compliance
// are derived at submission time and stored frozen; they are never
// recomputed when tasks change afterwards. At most one record exists per
// (person, week_start) and a new submission replaces it in full.
type WeeklyKPIRecord struct {
	ID                  string    `json:"id" gorm:"column:id;primaryKey;type:varchar(32)"`
	Person              string    `json:"person" gorm:"column:person;type:varchar(100);not null;uniqueIndex:idx_kpi_person_week"`
	WeekStart           time.Time `json:"weekStart" gorm:"column:week_start;type:date;not null;uniqueIndex:idx_kpi_person_week"`
	Commendations       int       `json:"commendations" gorm:"column:commendations;not null"`
	Complaints          int       `json:"complaints" gorm:"column:complaints;not null"`
	OrderScore          float64   `json:"orderScore" gorm:"column:order_score;not null"`
	ClientResponseScore float64   `json:"clientResponseScore" gorm:"column:client_response_score;not null"`
	AutonomyScore       float64   `json:"autonomyScore" gorm:"column:autonomy_score;not null"`
	ComplianceScore     float64   `json:"complianceScore" gorm:"column:compliance_score;not null"`
	CreatedAt           time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt           time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (WeeklyKPIRecord) TableName() string {
	return "kpi_records"
}
