// Package student contains the student profile domain model used by the
// teacher-facing insight views. Profiles are read-only within a session.
package student

import "strings"

// Profile is the analyzable shape of a student for teacher views.
type Profile struct {
	ID              string
	Name            string
	Email           string
	Avatar          string // initials
	GPA             float64
	Attendance      int // percentage
	MissedDeadlines int
	StrongestSkill  string
	WeakestSkill    string
	RecentGrades    []int
}

// NameFromEmail derives a display name from the local part of an email
// address: dots become spaces and each word is capitalized.
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	words := strings.Split(strings.ReplaceAll(local, ".", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// AvatarFromEmail derives two-letter avatar initials from an email address.
func AvatarFromEmail(email string) string {
	if len(email) < 2 {
		return strings.ToUpper(email)
	}
	return strings.ToUpper(email[:2])
}
