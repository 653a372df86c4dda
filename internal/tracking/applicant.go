package tracking

import (
	"strings"

	"github.com/adanyl0v/taskboard/internal/models"
)

// NoTeamLabel is the applicant of a task without team members.
const NoTeamLabel = "No team"

// ApplicantLabel names who a task row is attributed to.
func ApplicantLabel(team []models.UserRef, actor string) string {
	if len(team) == 0 {
		return NoTeamLabel
	}

	if actor != "" {
		for _, u := range team {
			if u.ID == actor {
				return u.Name
			}
		}
		return team[0].Name
	}

	names := make([]string, len(team))
	for i, u := range team {
		names[i] = u.Name
	}
	return strings.Join(names, ", ")
}
