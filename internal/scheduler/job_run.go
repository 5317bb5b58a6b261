package scheduler

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// JobRun is the persisted record of one scheduler job execution.
type JobRun struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	JobName    string       `gorm:"type:text;not null;index" json:"job_name"`
	StartedAt  time.Time    `gorm:"not null" json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Processed  int64        `gorm:"not null;default:0" json:"processed"`
	Error      string       `gorm:"type:text" json:"error,omitempty"`
}

func (JobRun) TableName() string { return "scheduler_job_runs" }
