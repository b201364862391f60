// Package access decides which app sections a user may open, based on
// whether they are signed in and on their role.
package access

import (
	"strings"

	"cvos/coach-app/internal/domain"
)

// Landing pages used as redirect targets.
const (
	PathLogin            = "/login"
	PathHome             = "/"
	PathOnboarding       = "/onboarding"
	PathAthleteDashboard = "/athlete/dashboard"
)

// Decision is the outcome for one path: either allowed, or a redirect target.
type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

func allow() Decision                 { return Decision{Allow: true} }
func redirect(target string) Decision { return Decision{Redirect: target} }

// IsPublic covers API routes and static assets.
func IsPublic(path string) bool {
	return strings.HasPrefix(path, "/api") || strings.Contains(path, ".")
}

func isAuthPage(path string) bool {
	return strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/auth")
}

// HomeFor is where a user with role lands after onboarding.
func HomeFor(role domain.Role) string {
	if role == domain.RoleAthlete {
		return PathAthleteDashboard
	}
	return PathHome
}

// Decide applies the route policy:
//   - public paths are always allowed
//   - anonymous users go to /login, except on auth pages
//   - signed-in users on auth pages go home
//   - users without a role may only see onboarding
//   - users with a role cannot re-enter onboarding
//   - coaches are kept out of /gyms and /admin
//   - athletes are kept out of /, /programs, /athletes and /gyms
func Decide(path string, authenticated bool, role domain.Role) Decision {
	if IsPublic(path) {
		return allow()
	}

	authPage := isAuthPage(path)
	if !authenticated {
		if authPage {
			return allow()
		}
		return redirect(PathLogin)
	}
	if authPage {
		return redirect(PathHome)
	}

	onboarding := strings.HasPrefix(path, PathOnboarding)
	if role == domain.RoleNone {
		if onboarding {
			return allow()
		}
		return redirect(PathOnboarding)
	}
	if onboarding {
		return redirect(HomeFor(role))
	}

	switch role {
	case domain.RoleAdmin:
		return allow()
	case domain.RoleCoach:
		if strings.HasPrefix(path, "/gyms") || strings.HasPrefix(path, "/admin") {
			return redirect(PathHome)
		}
	case domain.RoleAthlete:
		if path == "/" || strings.HasPrefix(path, "/programs") || strings.HasPrefix(path, "/athletes") || strings.HasPrefix(path, "/gyms") {
			return redirect(PathAthleteDashboard)
		}
	}
	return allow()
}
