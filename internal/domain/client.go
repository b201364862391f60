package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientType separates individual athletes from gyms.
type ClientType string

const (
	ClientAthlete ClientType = "athlete"
	ClientGym     ClientType = "gym"
)

func (t ClientType) Valid() bool {
	return t == ClientAthlete || t == ClientGym
}

// Well-known keys inside Client.Details.
const (
	DetailOneRmStats = "oneRmStats"
	DetailFranTime   = "franTime"
	DetailRun1km     = "run1km"
	DetailRun5km     = "run5km"
	DetailGymID      = "gym_id"
)

// Client is an athlete or gym managed by a coach. Details is a free-form
// document interpreted by whoever reads it (benchmarks, gym info, ...).
type Client struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID   *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`
	UserID    *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"` // profile of the athlete/gym owner, if any
	Type      ClientType          `bson:"type" json:"type"`
	Name      string              `bson:"name" json:"name"`
	LogoURL   string              `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	Email     string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Details   map[string]any      `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// OneRmStats returns the athlete's one-rep maxes keyed by lift
// (backSquat, deadlift, ...). Missing or non-numeric entries are skipped.
func (c *Client) OneRmStats() map[string]float64 {
	stats := map[string]float64{}
	if c == nil || c.Details == nil {
		return stats
	}
	raw := AsMap(c.Details[DetailOneRmStats])
	for k, v := range raw {
		if f, ok := toFloat(v); ok {
			stats[k] = f
		}
	}
	return stats
}

// GymID returns the gym an athlete trains at, if recorded.
func (c *Client) GymID() (primitive.ObjectID, bool) {
	if c == nil || c.Details == nil {
		return primitive.NilObjectID, false
	}
	s, _ := c.Details[DetailGymID].(string)
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
