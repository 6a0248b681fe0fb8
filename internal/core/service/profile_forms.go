package service

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

const dobLayout = "2006-01-02"

// studentForm lists the student fields in the order they are validated.
// Required fields come first, then the phone format, then the
// student-specific required fields.
type studentForm struct {
	FullName       string `label:"Full name" validate:"required"`
	Phone          string `label:"Phone number" validate:"required,phone10"`
	DOB            string `label:"Date of birth" validate:"required"`
	Gender         string `label:"Gender" validate:"required"`
	Address        string `label:"Address" validate:"required"`
	College        string `label:"College name" validate:"required"`
	Branch         string `label:"Branch" validate:"required"`
	Degree         string `label:"Degree" validate:"required"`
	CurrentYear    string `label:"Current year" validate:"required"`
	GraduationYear string `label:"Graduation year" validate:"required"`
	CGPA           string `label:"CGPA" validate:"required"`

	TenthMarks      string
	TwelfthMarks    string
	Backlogs        string
	TechnicalSkills string
	SoftSkills      string
	Certifications  string
}

func newStudentForm(v url.Values) studentForm {
	return studentForm{
		FullName:        field(v, "full_name"),
		Phone:           field(v, "phone"),
		DOB:             field(v, "dob"),
		Gender:          field(v, "gender"),
		Address:         field(v, "address"),
		College:         field(v, "college"),
		Branch:          field(v, "branch"),
		Degree:          field(v, "degree"),
		CurrentYear:     field(v, "current_year"),
		GraduationYear:  field(v, "graduation_year"),
		CGPA:            field(v, "cgpa"),
		TenthMarks:      field(v, "tenth_marks"),
		TwelfthMarks:    field(v, "twelfth_marks"),
		Backlogs:        field(v, "backlogs"),
		TechnicalSkills: field(v, "technical_skills"),
		SoftSkills:      field(v, "soft_skills"),
		Certifications:  field(v, "certifications"),
	}
}

// update parses the typed fields. Any parse failure is a validation error.
func (f studentForm) update(phone string, now time.Time) (domain.StudentUpdate, error) {
	dob, err := time.Parse(dobLayout, f.DOB)
	if err != nil {
		return domain.StudentUpdate{}, domain.Validation("Date of birth must be in YYYY-MM-DD format.")
	}
	gradYear, err := strconv.Atoi(f.GraduationYear)
	if err != nil {
		return domain.StudentUpdate{}, domain.Validation("Graduation year must be a whole number.")
	}
	cgpa, err := strconv.ParseFloat(f.CGPA, 64)
	if err != nil {
		return domain.StudentUpdate{}, domain.Validation("CGPA must be a number.")
	}

	u := domain.StudentUpdate{
		FullName:        f.FullName,
		Phone:           phone,
		DOB:             dob,
		Gender:          f.Gender,
		Address:         f.Address,
		College:         f.College,
		Branch:          f.Branch,
		Degree:          f.Degree,
		CurrentYear:     f.CurrentYear,
		GraduationYear:  gradYear,
		CGPA:            cgpa,
		TechnicalSkills: f.TechnicalSkills,
		SoftSkills:      f.SoftSkills,
		Certifications:  f.Certifications,
		UpdatedAt:       now,
	}

	if f.TenthMarks != "" {
		v, err := strconv.ParseFloat(f.TenthMarks, 64)
		if err != nil {
			return domain.StudentUpdate{}, domain.Validation("10th marks must be a number.")
		}
		u.TenthMarks = &v
	}
	if f.TwelfthMarks != "" {
		v, err := strconv.ParseFloat(f.TwelfthMarks, 64)
		if err != nil {
			return domain.StudentUpdate{}, domain.Validation("12th marks must be a number.")
		}
		u.TwelfthMarks = &v
	}
	backlogs := 0
	if f.Backlogs != "" {
		v, err := strconv.Atoi(f.Backlogs)
		if err != nil {
			return domain.StudentUpdate{}, domain.Validation("Backlogs must be a whole number.")
		}
		backlogs = v
	}
	u.Backlogs = &backlogs
	return u, nil
}

// recruiterForm lists the recruiter fields in the order they are validated.
type recruiterForm struct {
	FullName    string `label:"Full name" validate:"required"`
	Phone       string `label:"Phone number" validate:"required,phone10"`
	CompanyName string `label:"Company name" validate:"required"`
	Industry    string `label:"Industry" validate:"required"`
	Designation string `label:"Your designation" validate:"required"`

	CompanyWebsite string
	LinkedInURL    string
	DefaultMinCGPA string
	DefaultSkills  string
	DefaultJobRole string
	DefaultJobType string
	Branches       []string
}

func newRecruiterForm(v url.Values) recruiterForm {
	var branches []string
	for _, b := range v["default_eligible_branches"] {
		if b = strings.TrimSpace(b); b != "" {
			branches = append(branches, b)
		}
	}
	return recruiterForm{
		FullName:       field(v, "full_name"),
		Phone:          field(v, "phone"),
		CompanyName:    field(v, "company_name"),
		Industry:       field(v, "industry"),
		Designation:    field(v, "designation"),
		CompanyWebsite: field(v, "company_website"),
		LinkedInURL:    field(v, "linkedin_url"),
		DefaultMinCGPA: field(v, "default_min_cgpa"),
		DefaultSkills:  field(v, "default_skills"),
		DefaultJobRole: field(v, "default_job_role"),
		DefaultJobType: field(v, "default_job_type"),
		Branches:       branches,
	}
}

// update never fails: an unparseable default_min_cgpa is stored as null.
func (f recruiterForm) update(phone string, now time.Time) domain.RecruiterUpdate {
	u := domain.RecruiterUpdate{
		FullName:                f.FullName,
		Phone:                   phone,
		CompanyName:             f.CompanyName,
		CompanyWebsite:          f.CompanyWebsite,
		LinkedInURL:             f.LinkedInURL,
		Industry:                f.Industry,
		Designation:             f.Designation,
		DefaultEligibleBranches: f.Branches,
		DefaultSkills:           f.DefaultSkills,
		DefaultJobRole:          f.DefaultJobRole,
		DefaultJobType:          f.DefaultJobType,
		UpdatedAt:               now,
	}
	if u.DefaultEligibleBranches == nil {
		u.DefaultEligibleBranches = []string{}
	}
	if v, err := strconv.ParseFloat(f.DefaultMinCGPA, 64); err == nil {
		u.DefaultMinCGPA = &v
	}
	return u
}

func field(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}

// applyStudent returns the profile as it reads after u has been written.
func applyStudent(accountID string, existing *domain.StudentProfile, u domain.StudentUpdate) *domain.StudentProfile {
	p := &domain.StudentProfile{AccountID: accountID}
	if existing != nil {
		cp := *existing
		p = &cp
	}
	dob := u.DOB
	p.FullName = u.FullName
	p.Phone = u.Phone
	p.DOB = &dob
	p.Gender = u.Gender
	p.Address = u.Address
	p.College = u.College
	p.Branch = u.Branch
	p.Degree = u.Degree
	p.CurrentYear = u.CurrentYear
	p.GraduationYear = u.GraduationYear
	p.CGPA = u.CGPA
	if u.TenthMarks != nil {
		p.TenthMarks = u.TenthMarks
	}
	if u.TwelfthMarks != nil {
		p.TwelfthMarks = u.TwelfthMarks
	}
	if u.Backlogs != nil {
		p.Backlogs = u.Backlogs
	}
	p.TechnicalSkills = u.TechnicalSkills
	p.SoftSkills = u.SoftSkills
	p.Certifications = u.Certifications
	if u.Resume != nil {
		p.Resume = u.Resume
	}
	p.ProfileComplete = true
	p.UpdatedAt = u.UpdatedAt
	return p
}

func applyRecruiter(accountID string, u domain.RecruiterUpdate) *domain.RecruiterProfile {
	return &domain.RecruiterProfile{
		AccountID:               accountID,
		FullName:                u.FullName,
		Phone:                   u.Phone,
		CompanyName:             u.CompanyName,
		CompanyWebsite:          u.CompanyWebsite,
		LinkedInURL:             u.LinkedInURL,
		Industry:                u.Industry,
		Designation:             u.Designation,
		DefaultMinCGPA:          u.DefaultMinCGPA,
		DefaultEligibleBranches: u.DefaultEligibleBranches,
		DefaultSkills:           u.DefaultSkills,
		DefaultJobRole:          u.DefaultJobRole,
		DefaultJobType:          u.DefaultJobType,
		ProfileComplete:         true,
		UpdatedAt:               u.UpdatedAt,
	}
}
