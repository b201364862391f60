package domain

// Onboarding wizard steps. Step 0 is role selection; athletes then walk
// through 1..11. Coaches finish right after step 0.
const (
	StepRole         = 0
	StepBirthDate    = 1
	StepHeight       = 2
	StepWeight       = 3
	StepGoal         = 4
	StepPlace        = 5
	StepEquipment    = 6
	StepAvailability = 7
	StepExperience   = 8
	StepDetails      = 9
	StepWhatsApp     = 10
	StepAvatar       = 11

	LastOnboardingStep = StepAvatar
)

// Allowed answers, keyed the way they are stored.
var (
	MainGoals        = []string{"hypertrophy", "fat_loss", "performance", "maintenance"}
	TrainingPlaces   = []string{"gym", "crossfit", "home"}
	ExperienceLevels = []string{"beginner", "intermediate", "advanced"}
	SessionMinutes   = []int{30, 45, 60, 90, 120}
)

const (
	PlaceHome = "home"

	MinHeightCm = 120
	MaxHeightCm = 220
)

// OnboardingDefaults are the values pre-filled in the athlete form.
type OnboardingDefaults struct {
	Height            int     `json:"height"`
	Weight            float64 `json:"weight"`
	MainGoal          string  `json:"mainGoal"`
	TrainingPlace     string  `json:"trainingPlace"`
	DaysPerWeek       int     `json:"daysPerWeek"`
	MinutesPerSession int     `json:"minutesPerSession"`
	ExperienceLevel   string  `json:"experienceLevel"`
}

var DefaultOnboarding = OnboardingDefaults{
	Height:            170,
	Weight:            70.0,
	MainGoal:          "hypertrophy",
	TrainingPlace:     "gym",
	DaysPerWeek:       3,
	MinutesPerSession: 60,
	ExperienceLevel:   "beginner",
}
