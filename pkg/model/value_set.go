package model

import "time"

// ValueSet is a FHIR ValueSet stored relationally.
// ResourceID is the FHIR logical id used in URLs.
type ValueSet struct {
	ID           uint      `gorm:"column:id;primaryKey"`
	ResourceID   string    `gorm:"column:resource_id;uniqueIndex"`
	URL          string    `gorm:"column:url"`
	Version      string    `gorm:"column:version"`
	Name         string    `gorm:"column:name"`
	Title        string    `gorm:"column:title"`
	Status       string    `gorm:"column:status"`
	Experimental *bool     `gorm:"column:experimental"`
	Publisher    string    `gorm:"column:publisher"`
	Description  string    `gorm:"column:description"`
	Date         string    `gorm:"column:date"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Concepts []ValueSetConcept `gorm:"foreignKey:ValueSetID"`
}

func (ValueSet) TableName() string {
	return "value_sets"
}

// ValueSetConcept is one coded value included in a ValueSet
type ValueSetConcept struct {
	ID         uint   `gorm:"column:id;primaryKey"`
	ValueSetID uint   `gorm:"column:value_set_id;index"`
	System     string `gorm:"column:system"`
	Version    string `gorm:"column:version"`
	Code       string `gorm:"column:code"`
	Display    string `gorm:"column:display"`
	Position   int    `gorm:"column:position"`
}

func (ValueSetConcept) TableName() string {
	return "value_set_concepts"
}
