package task

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// creationStatuses are the statuses a task may be created with. A task can
// never be created already done.
var creationStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
}

// Comment is immutable once appended; there is no edit or delete.
type Comment struct {
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

type Task struct {
	ID          string         `gorm:"column:id;primaryKey;type:varchar(32)"`
	Description string         `gorm:"column:description;type:text;not null"`
	Client      string         `gorm:"column:client;type:varchar(200);not null"`
	TargetDate  time.Time      `gorm:"column:target_date;type:date;not null"`
	Status      Status         `gorm:"column:status;type:varchar(20);default:'pending'"`
	Author      string         `gorm:"column:author;type:varchar(100);not null"`
	Assignee    string         `gorm:"column:assignee;type:varchar(100);index;not null"`
	Comments    datatypes.JSON `gorm:"column:comments"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Task) TableName() string {
	return "tasks"
}

// CommentList decodes the stored comment sequence in insertion order.
func (t *Task) CommentList() ([]Comment, error) {
	if len(t.Comments) == 0 {
		return nil, nil
	}
	var out []Comment
	if err := json.Unmarshal(t.Comments, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalComments(comments []Comment) (datatypes.JSON, error) {
	raw, err := json.Marshal(comments)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
