// internal/domain/exercise.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise categories used by the library.
const (
	CategoryWeightlifting          = "Weightlifting"
	CategoryGymnastics             = "Gymnastics"
	CategoryMonostructural         = "Monostructural"
	CategoryFunctionalBodybuilding = "Functional Bodybuilding"
)

// Exercise represents a single exercise definition in the shared library.
// Aliases hold alternative (often Spanish) names that resolve to it.
type Exercise struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Category            string             `bson:"category" json:"category"`
	Subcategory         string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	ModalitySuitability []string           `bson:"modalitySuitability,omitempty" json:"modalitySuitability,omitempty"`
	Equipment           []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Aliases             []string           `bson:"aliases,omitempty" json:"aliases,omitempty"`
	Description         string             `bson:"description,omitempty" json:"description,omitempty"`
	VideoURL            string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Matches reports a case-insensitive exact match on the name or any alias.
func (e *Exercise) Matches(name string) bool {
	n := NormalizeName(name)
	if n == "" {
		return false
	}
	if NormalizeName(e.Name) == n {
		return true
	}
	for _, a := range e.Aliases {
		if NormalizeName(a) == n {
			return true
		}
	}
	return false
}

// NormalizeName lowercases and collapses whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
