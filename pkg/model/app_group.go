package model

import "time"

// AppGroup partitions users by application; exactly one group is flagged default
type AppGroup struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex"`
	Default   bool      `gorm:"column:default_group"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AppGroup) TableName() string {
	return "app_groups"
}

// DefaultAppGroups returns the app groups every installation starts with
func DefaultAppGroups() []AppGroup {
	return []AppGroup{
		{Name: "Unkani", Default: true},
		{Name: "Demo"},
		{Name: "Testing"},
	}
}
