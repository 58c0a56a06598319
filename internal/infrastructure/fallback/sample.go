// Package fallback holds the predefined static sample data substituted when
// the record store is unreachable or unconfigured. The data mirrors a small
// demo campus so the dashboard stays usable offline.
//
// Accessors return fresh copies: callers mutate their own snapshots, never
// the canonical samples.
package fallback

import (
	"time"

	"github.com/snapx-edu/academy-hub/internal/domain/assessment"
	"github.com/snapx-edu/academy-hub/internal/domain/calendar"
	"github.com/snapx-edu/academy-hub/internal/domain/course"
	"github.com/snapx-edu/academy-hub/internal/domain/nudge"
	"github.com/snapx-edu/academy-hub/internal/domain/student"
	"github.com/snapx-edu/academy-hub/internal/domain/user"
	"github.com/snapx-edu/academy-hub/pkg/timeutil"
)

// StudentUser returns the demo student persona.
func StudentUser() user.User {
	return user.User{
		ID:     "u1",
		Name:   "Alex Rivera",
		Email:  "alex.rivera@snapx.edu",
		Role:   user.RoleStudent,
		Avatar: "AR",
	}
}

// AdminUser returns the demo teacher persona. The role is admin: it passes
// every teacher-gated check plus the student-gated ones.
func AdminUser() user.User {
	return user.User{
		ID:     "t1",
		Name:   "Dr. Sarah Chen",
		Email:  "sarah.chen@snapx.edu",
		Role:   user.RoleAdmin,
		Avatar: "SC",
	}
}

// relativeDate keeps the sample calendar anchored around "now".
func relativeDate(daysOffset int) time.Time {
	return timeutil.RelativeDate(daysOffset)
}

// Courses returns the sample course catalog.
func Courses() []course.Course {
	return []course.Course{
		{
			ID: "c1", Title: "Advanced Data Structures", Instructor: "Dr. Sarah Chen",
			Progress: 65, TotalModules: 12, CompletedModules: 8,
			Thumbnail:  "https://images.unsplash.com/photo-1555066931-4365d14bab8c?w=800&q=80",
			Category:   "Computer Science", NextLesson: "Graph Traversal Algorithms", Enrolled: true,
			Description: "Master trees, graphs, and hash tables with advanced algorithmic analysis and optimization techniques.",
			Skills:      []string{"Algorithms", "C++", "Graph Theory"},
			Rating:      4.9, StudentsEnrolled: 1240,
		},
		{
			ID: "c2", Title: "UX/UI Design Systems", Instructor: "Prof. Marcus O",
			Progress: 10, TotalModules: 8, CompletedModules: 1,
			Thumbnail:  "https://images.unsplash.com/photo-1586717791821-3f44a5638d48?w=800&q=80",
			Category:   "Design", NextLesson: "Atomic Design Principles", Enrolled: true,
			Description: "Learn to build scalable design systems, manage component libraries, and ensure consistency across digital products.",
			Skills:      []string{"Figma", "Design Tokens", "Accessibility"},
			Rating:      4.7, StudentsEnrolled: 850,
		},
		{
			ID: "c3", Title: "AI Ethics & Compliance", Instructor: "Dr. A. Turing",
			Progress: 0, TotalModules: 5, CompletedModules: 0,
			Thumbnail:  "https://images.unsplash.com/photo-1507146426996-ef05306b995a?w=800&q=80",
			Category:   "Humanities", NextLesson: "Introduction to Bias", Enrolled: true,
			Description: "Explore the moral implications of Artificial Intelligence, focusing on bias, fairness, and regulatory compliance.",
			Skills:      []string{"Ethics", "Policy", "Critical Thinking"},
			Rating:      4.8, StudentsEnrolled: 2100,
		},
		{
			ID: "c4", Title: "Modern React Patterns", Instructor: "Dan A.",
			Progress: 0, TotalModules: 10, CompletedModules: 0,
			Thumbnail:  "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=800&q=80",
			Category:   "Computer Science", NextLesson: "Hooks Deep Dive", Enrolled: false, Recommended: true,
			Description: "A comprehensive guide to modern React development, including Hooks, Context, and performance optimization.",
			Skills:      []string{"React", "TypeScript", "State Management"},
			Rating:      4.9, StudentsEnrolled: 3400,
		},
		{
			ID: "c5", Title: "Digital Marketing 101", Instructor: "Sarah J.",
			Progress: 0, TotalModules: 6, CompletedModules: 0,
			Thumbnail:  "https://images.unsplash.com/photo-1557804506-669a67965ba0?w=800&q=80",
			Category:   "Business", NextLesson: "SEO Fundamentals", Enrolled: false, Recommended: true,
			Description: "Understand the core pillars of digital marketing: SEO, SEM, Content Strategy, and Social Media Analytics.",
			Skills:      []string{"SEO", "Analytics", "Content Strategy"},
			Rating:      4.6, StudentsEnrolled: 1500,
		},
		{
			ID: "c6", Title: "Cloud Architecture Basics", Instructor: "Jeff B.",
			Progress: 0, TotalModules: 8, CompletedModules: 0,
			Thumbnail:  "https://images.unsplash.com/photo-1451187580459-43490279c0fa?w=800&q=80",
			Category:   "Computer Science", NextLesson: "AWS Core Services", Enrolled: false, Recommended: true,
			Description: "Learn the fundamentals of designing scalable and reliable systems on major cloud platforms.",
			Skills:      []string{"AWS", "System Design", "DevOps"},
			Rating:      4.8, StudentsEnrolled: 980,
		},
		{
			ID: "c7", Title: "Financial Literacy", Instructor: "Warren B.",
			Progress: 0, TotalModules: 4, CompletedModules: 0,
			Thumbnail:  "https://images.unsplash.com/photo-1579621970563-ebec7560ff3e?w=800&q=80",
			Category:   "Business", NextLesson: "Budgeting 101", Enrolled: false,
			Description: "Essential personal finance skills for students, covering budgeting, saving, and basic investing.",
			Skills:      []string{"Budgeting", "Investing", "Planning"},
			Rating:      4.9, StudentsEnrolled: 5200,
		},
	}
}

// Events returns the sample calendar, anchored around the current date.
func Events() []calendar.Event {
	return []calendar.Event{
		{
			ID: "e1", Title: "Advanced Data Structures Midterm", Date: relativeDate(2),
			Category: calendar.CategoryExam, CourseID: "c1", Duration: "2h",
			Description: "Covers trees, graphs, and hashmaps.",
		},
		{
			ID: "e2", Title: "UX Case Study Submission", Date: relativeDate(5),
			Category: calendar.CategoryDeadline, CourseID: "c2",
			Description: "Final PDF submission via portal.",
		},
		{
			ID: "e3", Title: "Group Study: React Hooks", Date: relativeDate(-1),
			Category: calendar.CategoryStudy, CourseID: "c4", Duration: "1.5h",
		},
		{
			ID: "e4", Title: "Hackathon Kickoff", Date: relativeDate(8),
			Category: calendar.CategorySocial, Duration: "4h",
		},
		{
			ID: "e5", Title: "Marketing Plan Draft", Date: relativeDate(12),
			Category: calendar.CategoryDeadline, CourseID: "c5",
		},
		{
			ID: "e6", Title: "Cloud Systems Quiz", Date: relativeDate(15),
			Category: calendar.CategoryExam, CourseID: "c6",
		},
	}
}

// Nudges returns the sample nudge feed.
func Nudges() []nudge.Nudge {
	return []nudge.Nudge{
		{
			ID: "n1", Category: nudge.CategoryRisk, Severity: nudge.SeverityHigh,
			Message:     "We noticed a drop in your attendance for CS301. Early intervention is key to passing.",
			Timestamp:   "2 hours ago", ActionLabel: "Contact Tutor", ActionLink: "/engagement",
		},
		{
			ID: "n2", Category: nudge.CategoryCompliance, Severity: nudge.SeverityMedium,
			Message:     "Your study-from-home environment audit is pending renewal.",
			Timestamp:   "1 day ago", ActionLabel: "Upload Photo", ActionLink: "/compliance",
		},
		{
			ID: "n3", Category: nudge.CategoryOpportunity, Severity: nudge.SeverityLow,
			Message:     "New internship matched: Frontend Dev at Google based on your React grades.",
			Timestamp:   "3 days ago", ActionLabel: "View Career Path", ActionLink: "/career",
		},
	}
}

// Assessments returns the sample assessment list.
func Assessments() []assessment.Assessment {
	return []assessment.Assessment{
		{
			ID: "a1", CourseID: "c1", Title: "Midterm Algorithm Analysis",
			DueDate: "2025-05-15", TotalPoints: 100, AvgScore: 78,
			Status: assessment.StatusPublished, Questions: 20,
		},
		{
			ID: "a2", CourseID: "c1", Title: "Graph Theory Quiz",
			DueDate: "2025-05-20", TotalPoints: 50, AvgScore: 0,
			Status: assessment.StatusDraft, Questions: 10,
		},
		{
			ID: "a3", CourseID: "c2", Title: "Figma Component Systems",
			DueDate: "2025-05-18", TotalPoints: 100, AvgScore: 92,
			Status: assessment.StatusGraded, Questions: 5,
		},
	}
}

// Students returns the sample student profiles for the teacher views.
func Students() []student.Profile {
	return []student.Profile{
		{
			ID: "s1", Name: "Alex Rivera", Email: "alex.rivera@snapx.edu", Avatar: "AR",
			GPA: 3.2, Attendance: 82, MissedDeadlines: 2,
			StrongestSkill: "React", WeakestSkill: "Database",
			RecentGrades:   []int{85, 90, 72, 65},
		},
		{
			ID: "s2", Name: "Jordan Lee", Email: "jordan.lee@snapx.edu", Avatar: "JL",
			GPA: 3.9, Attendance: 98, MissedDeadlines: 0,
			StrongestSkill: "Algorithms", WeakestSkill: "UI Design",
			RecentGrades:   []int{98, 95, 92, 100},
		},
		{
			ID: "s3", Name: "Casey Smith", Email: "casey.smith@snapx.edu", Avatar: "CS",
			GPA: 2.1, Attendance: 60, MissedDeadlines: 5,
			StrongestSkill: "Communication", WeakestSkill: "Coding",
			RecentGrades:   []int{50, 45, 60, 55},
		},
	}
}
