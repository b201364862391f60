package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MesocycleAttributes describes the load profile of a training week.
type MesocycleAttributes struct {
	Volume    string `bson:"volume,omitempty" json:"volume,omitempty"`       // low, moderate, high
	Intensity string `bson:"intensity,omitempty" json:"intensity,omitempty"` // low, moderate, high
	Deload    bool   `bson:"deload,omitempty" json:"deload,omitempty"`
}

// Mesocycle is one week of a program.
type Mesocycle struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProgramID  primitive.ObjectID  `bson:"programId" json:"programId"`
	WeekNumber int                 `bson:"weekNumber" json:"weekNumber"`
	Focus      string              `bson:"focus,omitempty" json:"focus,omitempty"`
	Attributes MesocycleAttributes `bson:"attributes" json:"attributes"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Day is a single training (or rest) day inside a week. DayNumber runs 1-7.
type Day struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MesocycleID primitive.ObjectID `bson:"mesocycleId" json:"mesocycleId"`
	DayNumber   int                `bson:"dayNumber" json:"dayNumber"`
	Name        string             `bson:"name,omitempty" json:"name,omitempty"`
	Date        *time.Time         `bson:"date,omitempty" json:"date,omitempty"`
	IsRestDay   bool               `bson:"isRestDay" json:"isRestDay"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WeekdayNames maps DayNumber-1 to the label shown in programs and exports.
var WeekdayNames = [7]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// WeekdayName returns the label for a 1-based day number, wrapping past 7.
func WeekdayName(dayNumber int) string {
	if dayNumber < 1 {
		return ""
	}
	return WeekdayNames[(dayNumber-1)%7]
}
