package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramStatus is the lifecycle of a program.
type ProgramStatus string

const (
	ProgramDraft    ProgramStatus = "draft"
	ProgramActive   ProgramStatus = "active"
	ProgramArchived ProgramStatus = "archived"
)

func (s ProgramStatus) Valid() bool {
	switch s {
	case ProgramDraft, ProgramActive, ProgramArchived:
		return true
	}
	return false
}

// ProgramAttributes carries the setup-wizard inputs and template metadata.
type ProgramAttributes struct {
	GlobalFocus   string     `bson:"globalFocus,omitempty" json:"globalFocus,omitempty"`
	StartDate     *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate       *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	DurationWeeks int        `bson:"durationWeeks,omitempty" json:"durationWeeks,omitempty"`
	DaysPerWeek   int        `bson:"daysPerWeek,omitempty" json:"daysPerWeek,omitempty"`
	Methodology   []string   `bson:"methodology,omitempty" json:"methodology,omitempty"`
	KeyConcepts   []string   `bson:"keyConcepts,omitempty" json:"keyConcepts,omitempty"`
	InspiredBy    string     `bson:"inspiredBy,omitempty" json:"inspiredBy,omitempty"`
}

// Program is the root of the training tree:
// Program -> Mesocycle (week) -> Day -> WorkoutBlock.
type Program struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID  `bson:"coachId" json:"coachId"`
	ClientID    *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Status      ProgramStatus       `bson:"status" json:"status"`
	IsTemplate  bool                `bson:"isTemplate" json:"isTemplate"`
	Attributes  ProgramAttributes   `bson:"attributes" json:"attributes"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
