package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role distinguishes what a signed-in user may do.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCoach   Role = "coach"
	RoleAthlete Role = "athlete"
	// RoleNone marks a profile that has not finished role selection yet.
	RoleNone Role = ""
)

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RoleAthlete:
		return true
	}
	return false
}

// Profile is the account record of every user: credentials, role and the
// physical attributes collected by onboarding.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	FullName     string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role,omitempty" json:"role,omitempty"`

	BirthDate           *time.Time `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	Height              int        `bson:"height,omitempty" json:"height,omitempty"` // cm
	Weight              float64    `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	MainGoal            string     `bson:"mainGoal,omitempty" json:"mainGoal,omitempty"`
	TrainingPlace       string     `bson:"trainingPlace,omitempty" json:"trainingPlace,omitempty"`
	EquipmentList       []string   `bson:"equipmentList,omitempty" json:"equipmentList,omitempty"`
	DaysPerWeek         int        `bson:"daysPerWeek,omitempty" json:"daysPerWeek,omitempty"`
	MinutesPerSession   int        `bson:"minutesPerSession,omitempty" json:"minutesPerSession,omitempty"`
	ExperienceLevel     string     `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"`
	Injuries            string     `bson:"injuries,omitempty" json:"injuries,omitempty"`
	TrainingPreferences string     `bson:"trainingPreferences,omitempty" json:"trainingPreferences,omitempty"`
	WhatsAppNumber      string     `bson:"whatsappNumber,omitempty" json:"whatsappNumber,omitempty"`
	AvatarKey           string     `bson:"avatarKey,omitempty" json:"-"` // object key in the avatar bucket

	OnboardingStep      int  `bson:"onboardingStep" json:"onboardingStep"`
	OnboardingCompleted bool `bson:"onboardingCompleted" json:"onboardingCompleted"`

	ResetToken     string     `bson:"resetToken,omitempty" json:"-"`
	ResetExpiresAt *time.Time `bson:"resetExpiresAt,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p *Profile) NeedsOnboarding() bool {
	return p.Role == RoleNone
}

// DisplayName falls back to the email, then to a placeholder.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.Email != "" {
		return p.Email
	}
	return "Sin Nombre"
}
