package domain

import "time"

// StudentProfile holds the extended attributes of a student account.
// Its ID is the owning account's ID.
type StudentProfile struct {
	AccountID       string       `json:"account_id"`
	FullName        string       `json:"full_name"`
	Phone           string       `json:"phone"`
	DOB             *time.Time   `json:"dob,omitempty"`
	Gender          string       `json:"gender"`
	Address         string       `json:"address"`
	College         string       `json:"college"`
	Branch          string       `json:"branch"`
	Degree          string       `json:"degree"`
	CurrentYear     string       `json:"current_year"`
	GraduationYear  int          `json:"graduation_year"`
	CGPA            float64      `json:"cgpa"`
	TenthMarks      *float64     `json:"tenth_marks,omitempty"`
	TwelfthMarks    *float64     `json:"twelfth_marks,omitempty"`
	Backlogs        *int         `json:"backlogs,omitempty"`
	TechnicalSkills string       `json:"technical_skills"`
	SoftSkills      string       `json:"soft_skills"`
	Certifications  string       `json:"certifications"`
	Resume          *ResumeAsset `json:"resume,omitempty"`
	ProfileComplete bool         `json:"profile_complete"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// RecruiterProfile holds the extended attributes of a recruiter account.
type RecruiterProfile struct {
	AccountID               string    `json:"account_id"`
	FullName                string    `json:"full_name"`
	Phone                   string    `json:"phone"`
	CompanyName             string    `json:"company_name"`
	CompanyWebsite          string    `json:"company_website,omitempty"`
	LinkedInURL             string    `json:"linkedin_url,omitempty"`
	Industry                string    `json:"industry"`
	Designation             string    `json:"designation"`
	DefaultMinCGPA          *float64  `json:"default_min_cgpa,omitempty"`
	DefaultEligibleBranches []string  `json:"default_eligible_branches"`
	DefaultSkills           string    `json:"default_skills"`
	DefaultJobRole          string    `json:"default_job_role"`
	DefaultJobType          string    `json:"default_job_type"`
	ProfileComplete         bool      `json:"profile_complete"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// ResumeAsset points at the single live resume file of a student.
type ResumeAsset struct {
	OwnerID      string    `json:"owner_account_id"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Pages        int       `json:"pages,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StudentUpdate is a partial update of a StudentProfile. Nil pointers leave
// the stored field untouched.
type StudentUpdate struct {
	FullName        string
	Phone           string
	DOB             time.Time
	Gender          string
	Address         string
	College         string
	Branch          string
	Degree          string
	CurrentYear     string
	GraduationYear  int
	CGPA            float64
	TenthMarks      *float64
	TwelfthMarks    *float64
	Backlogs        *int
	TechnicalSkills string
	SoftSkills      string
	Certifications  string
	Resume          *ResumeAsset
	UpdatedAt       time.Time
}

// RecruiterUpdate is a full set of recruiter form fields. DefaultMinCGPA is
// written as null when absent.
type RecruiterUpdate struct {
	FullName                string
	Phone                   string
	CompanyName             string
	CompanyWebsite          string
	LinkedInURL             string
	Industry                string
	Designation             string
	DefaultMinCGPA          *float64
	DefaultEligibleBranches []string
	DefaultSkills           string
	DefaultJobRole          string
	DefaultJobType          string
	UpdatedAt               time.Time
}
