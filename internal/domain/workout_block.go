package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlockType says how a block's config is interpreted.
type BlockType string

const (
	BlockStrengthLinear   BlockType = "strength_linear"
	BlockMetconStructured BlockType = "metcon_structured"
	BlockWarmup           BlockType = "warmup"
	BlockAccessory        BlockType = "accessory"
	BlockSkill            BlockType = "skill"
	BlockFinisher         BlockType = "finisher"
	BlockFreeText         BlockType = "free_text"
)

func (t BlockType) Valid() bool {
	switch t {
	case BlockStrengthLinear, BlockMetconStructured, BlockWarmup, BlockAccessory, BlockSkill, BlockFinisher, BlockFreeText:
		return true
	}
	return false
}

// Structured reports whether the block is format + movements based.
func (t BlockType) Structured() bool {
	switch t {
	case BlockMetconStructured, BlockWarmup, BlockAccessory, BlockSkill, BlockFinisher:
		return true
	}
	return false
}

// Common workout formats. The set is open: methodology codes are accepted too.
const (
	FormatAMRAP      = "AMRAP"
	FormatEMOM       = "EMOM"
	FormatRFT        = "RFT"
	FormatChipper    = "Chipper"
	FormatLadder     = "Ladder"
	FormatTabata     = "Tabata"
	FormatNotForTime = "Not For Time"
	FormatForTime    = "For Time"
	FormatStandard   = "STANDARD"
)

// Block sections.
const (
	SectionWarmup   = "warmup"
	SectionMain     = "main"
	SectionCooldown = "cooldown"
)

// WorkoutBlock is one prescribed unit (lift, metcon, warm-up, note) of a day.
type WorkoutBlock struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DayID      primitive.ObjectID `bson:"dayId" json:"dayId"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
	Type       BlockType          `bson:"type" json:"type"`
	Format     string             `bson:"format,omitempty" json:"format,omitempty"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`
	Section    string             `bson:"section,omitempty" json:"section,omitempty"`
	Config     BlockConfig        `bson:"config" json:"config"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
