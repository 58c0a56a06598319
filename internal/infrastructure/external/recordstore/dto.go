package recordstore

// Table names in the remote record store. All tables follow the vendor's
// u_edu_* naming convention.
const (
	TableCourse         = "u_edu_course"
	TableEnrollment     = "u_edu_enrollment"
	TableEvent          = "u_edu_event"
	TableStudentProfile = "u_edu_student_profile"
	TableAssessment     = "u_edu_assessment"
	TableNudge          = "u_edu_nudge"
	TableCompliance     = "u_edu_compliance"
	TableExamReview     = "u_edu_exam_review"
)

// Vendor field names, one explicit mapping per entity. These are static
// configuration: the wire names are never inferred.
const (
	fieldSysID = "sys_id"

	// course
	fieldTitle        = "u_title"
	fieldInstructor   = "u_instructor"
	fieldCategory     = "u_category"
	fieldDescription  = "u_description"
	fieldThumbnailURL = "u_thumbnail_url"
	fieldTotalModules = "u_total_modules"
	fieldRecommended  = "u_recommended"
	fieldSkills       = "u_skills"
	fieldRating       = "u_rating"

	// enrollment
	fieldStudentEmail     = "u_student_email"
	fieldCourseRef        = "u_course"
	fieldProgress         = "u_progress"
	fieldCompletedModules = "u_completed_modules"
	fieldActive           = "u_active"

	// event
	fieldDate = "u_date"
	fieldType = "u_type"

	// student profile
	fieldGPA             = "u_gpa"
	fieldAttendanceScore = "u_attendance_score"
	fieldStrongestSkill  = "u_strongest_skill"
	fieldWeakestSkill    = "u_weakest_skill"

	// assessment
	fieldDueDate     = "u_due_date"
	fieldTotalPoints = "u_total_points"
	fieldAvgScore    = "u_avg_score"
	fieldStatus      = "u_status"

	// nudge
	fieldSeverity    = "u_severity"
	fieldMessage     = "u_message"
	fieldActionLabel = "u_action_label"
)

// listEnvelope is the response shape for list reads: { "result": [...] }.
type listEnvelope[T any] struct {
	Result []T `json:"result"`
}

// recordEnvelope is the response shape for creates and single-record reads:
// { "result": {...} }.
type recordEnvelope[T any] struct {
	Result T `json:"result"`
}

// createdRecord carries the identifier of a freshly created record. Create
// responses return the full record; only the id matters to callers.
type createdRecord struct {
	SysID Field `json:"sys_id"`
}

// CourseRecord is the wire shape of a course row.
type CourseRecord struct {
	SysID        Field `json:"sys_id"`
	Title        Field `json:"u_title"`
	Instructor   Field `json:"u_instructor"`
	Category     Field `json:"u_category"`
	Description  Field `json:"u_description"`
	ThumbnailURL Field `json:"u_thumbnail_url"`
	TotalModules Field `json:"u_total_modules"`
	Recommended  Field `json:"u_recommended"`
	Skills       Field `json:"u_skills"`
	Rating       Field `json:"u_rating"`
}

// EnrollmentRecord is the wire shape of an enrollment row. Course is a
// reference field, so it usually arrives as a wrapper object whose raw value
// is the referenced course sys_id.
type EnrollmentRecord struct {
	SysID            Field `json:"sys_id"`
	StudentEmail     Field `json:"u_student_email"`
	Course           Field `json:"u_course"`
	Progress         Field `json:"u_progress"`
	CompletedModules Field `json:"u_completed_modules"`
	Active           Field `json:"u_active"`
}

// EventRecord is the wire shape of a calendar event row.
type EventRecord struct {
	SysID        Field `json:"sys_id"`
	Title        Field `json:"u_title"`
	Date         Field `json:"u_date"`
	Type         Field `json:"u_type"`
	Course       Field `json:"u_course"`
	Description  Field `json:"u_description"`
	StudentEmail Field `json:"u_student_email"`
}

// StudentProfileRecord is the wire shape of a student profile row.
type StudentProfileRecord struct {
	SysID           Field `json:"sys_id"`
	StudentEmail    Field `json:"u_student_email"`
	GPA             Field `json:"u_gpa"`
	AttendanceScore Field `json:"u_attendance_score"`
	StrongestSkill  Field `json:"u_strongest_skill"`
	WeakestSkill    Field `json:"u_weakest_skill"`
}

// AssessmentRecord is the wire shape of an assessment row.
type AssessmentRecord struct {
	SysID       Field `json:"sys_id"`
	Course      Field `json:"u_course"`
	Title       Field `json:"u_title"`
	DueDate     Field `json:"u_due_date"`
	TotalPoints Field `json:"u_total_points"`
	AvgScore    Field `json:"u_avg_score"`
	Status      Field `json:"u_status"`
}

// NudgeRecord is the wire shape of a nudge row.
type NudgeRecord struct {
	SysID       Field `json:"sys_id"`
	Type        Field `json:"u_type"`
	Severity    Field `json:"u_severity"`
	Message     Field `json:"u_message"`
	ActionLabel Field `json:"u_action_label"`
}
