package ports

import (
	"context"
	"io"
	"net/url"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// Upload is a file received with a form submission.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProfileSubmission carries a raw profile form for the role being updated.
type ProfileSubmission struct {
	Identity *domain.Identity
	Role     domain.Role
	Form     url.Values
	Resume   *Upload // optional
	ClientIP string
}

// ProfileResult holds the refreshed profile of the submitting role.
type ProfileResult struct {
	Student   *domain.StudentProfile
	Recruiter *domain.RecruiterProfile
}

// ResumeFile is an open resume ready to stream. Callers close Body.
type ResumeFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

type ProfileService interface {
	Submit(ctx context.Context, in ProfileSubmission) (*ProfileResult, error)

	// Student returns the profile of studentID, or the caller's own when
	// studentID is empty.
	Student(ctx context.Context, caller *domain.Identity, studentID string) (*domain.StudentProfile, error)
	Recruiter(ctx context.Context, caller *domain.Identity) (*domain.RecruiterProfile, error)
	// OpenResume audits refused reads with clientIP.
	OpenResume(ctx context.Context, caller *domain.Identity, studentID, clientIP string) (*ResumeFile, error)
}
