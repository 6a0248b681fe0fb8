package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/placementcell/recruit-portal/internal/core/access"
	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
	"github.com/placementcell/recruit-portal/internal/pkg/metrics"
	"github.com/placementcell/recruit-portal/internal/pkg/validation"
)

// DefaultCountryCode is prefixed to the 10 submitted phone digits.
const DefaultCountryCode = "+91"

const (
	msgPhoneTaken          = "This phone number is already registered with another account."
	msgRecruiterPhoneTaken = "This phone number is already registered by another recruiter."
	msgResumeRequired      = "Please upload your resume (PDF)."
	msgSaveFailed          = "Could not save your profile. Please try again."
)

type profileService struct {
	profiles    ports.ProfileRepository
	resumes     *ResumeManager
	audit       ports.AuditSink
	validate    *validation.Validator
	countryCode string
	log         zerolog.Logger
	now         func() time.Time
}

// NewProfileService returns a ProfileService implementation.
func NewProfileService(
	profiles ports.ProfileRepository,
	resumes *ResumeManager,
	audit ports.AuditSink,
	countryCode string,
	log zerolog.Logger,
) ports.ProfileService {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return &profileService{
		profiles:    profiles,
		resumes:     resumes,
		audit:       audit,
		validate:    validation.New(),
		countryCode: countryCode,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and persists a profile form for in.Role. Exactly one audit
// event is emitted per call.
func (s *profileService) Submit(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
	start := time.Now()
	role := string(in.Role)

	// 1. Access gate, before any validation or storage access.
	if err := access.Authorize(in.Identity, in.Role); err != nil {
		metrics.ProfileUpdatesTotal.WithLabelValues(role, "forbidden").Inc()
		return nil, err
	}

	var (
		res *ports.ProfileResult
		err error
	)
	switch in.Role {
	case domain.RoleStudent:
		res, err = s.submitStudent(ctx, in)
	case domain.RoleRecruiter:
		res, err = s.submitRecruiter(ctx, in)
	default:
		err = domain.ErrForbidden
	}

	outcome := s.record(in, err)
	metrics.ProfileUpdatesTotal.WithLabelValues(role, outcome).Inc()
	metrics.ProfileUpdateDuration.WithLabelValues(role).Observe(time.Since(start).Seconds())
	return res, err
}

func (s *profileService) submitStudent(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
	id := in.Identity.AccountID

	// 1. Presence and format checks, in field order.
	form := newStudentForm(in.Form)
	if err := s.validate.First(&form); err != nil {
		return nil, err
	}
	phone := s.countryCode + form.Phone
	update, err := form.update(phone, s.now())
	if err != nil {
		return nil, err
	}
	if in.Resume != nil {
		if err := s.resumes.Check(*in.Resume); err != nil {
			return nil, err
		}
	}

	// 2. Current profile, needed for the resume rule and the old file.
	existing, err := s.profiles.FindStudent(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Storage(msgSaveFailed, err)
	}
	var oldResume *domain.ResumeAsset
	if existing != nil {
		oldResume = existing.Resume
	}
	if in.Resume == nil {
		ok, err := s.resumes.Exists(ctx, oldResume)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.Validation(msgResumeRequired)
		}
	}

	// 3. Phone uniqueness among students.
	taken, err := s.profiles.PhoneInUse(ctx, domain.RoleStudent, id, phone)
	if err != nil {
		return nil, domain.Storage(msgSaveFailed, err)
	}
	if taken {
		return nil, domain.Conflict(msgPhoneTaken)
	}

	// 4. Write. A new resume is stored first and the old one removed only
	// after the profile points at the new file.
	commit := func(asset *domain.ResumeAsset) error {
		update.Resume = asset
		if err := s.profiles.UpdateStudent(ctx, id, update); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.Conflict(msgPhoneTaken)
			}
			return domain.Storage(msgSaveFailed, err)
		}
		return nil
	}
	if in.Resume != nil {
		_, err = s.resumes.Replace(ctx, id, oldResume, *in.Resume, commit)
	} else {
		err = commit(nil)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", id).Bool("resume_uploaded", in.Resume != nil).Msg("student profile updated")
	return &ports.ProfileResult{Student: applyStudent(id, existing, update)}, nil
}

func (s *profileService) submitRecruiter(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
	id := in.Identity.AccountID

	form := newRecruiterForm(in.Form)
	if err := s.validate.First(&form); err != nil {
		return nil, err
	}
	phone := s.countryCode + form.Phone
	update := form.update(phone, s.now())

	taken, err := s.profiles.PhoneInUse(ctx, domain.RoleRecruiter, id, phone)
	if err != nil {
		return nil, domain.Storage(msgSaveFailed, err)
	}
	if taken {
		return nil, domain.Conflict(msgRecruiterPhoneTaken)
	}

	if err := s.profiles.UpdateRecruiter(ctx, id, update); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict(msgRecruiterPhoneTaken)
		}
		return nil, domain.Storage(msgSaveFailed, err)
	}

	s.log.Info().Str("account_id", id).Msg("recruiter profile updated")
	return &ports.ProfileResult{Recruiter: applyRecruiter(id, update)}, nil
}

// record emits the audit event for a submission and returns its metric outcome.
func (s *profileService) record(in ports.ProfileSubmission, err error) string {
	email := in.Identity.Email
	switch {
	case err == nil:
		s.audit.Log(domain.AuditProfileUpdated, "Profile updated", email, in.ClientIP)
		return "success"
	case errors.Is(err, domain.ErrValidation):
		s.audit.Log(domain.AuditProfileInvalid, domain.Message(err), email, in.ClientIP)
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		s.audit.Log(domain.AuditProfileConflict, domain.Message(err), email, in.ClientIP)
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		s.log.Error().Err(err).Str("account_id", in.Identity.AccountID).Str("role", string(in.Role)).Msg("profile update failed")
		s.audit.Log(domain.AuditProfileError, err.Error(), email, in.ClientIP)
		return "error"
	}
}

// Student returns a student profile. An owner without a stored profile gets
// an empty, incomplete one.
func (s *profileService) Student(ctx context.Context, caller *domain.Identity, studentID string) (*domain.StudentProfile, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if studentID == "" {
		if !caller.IsStudent() {
			return nil, domain.ErrForbidden
		}
		studentID = caller.AccountID
	}
	if !access.CanReadStudent(caller, studentID) {
		return nil, domain.ErrForbidden
	}

	p, err := s.profiles.FindStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if caller.AccountID == studentID {
				return &domain.StudentProfile{AccountID: studentID}, nil
			}
			return nil, domain.NotFound("Student profile not found.")
		}
		return nil, domain.Storage("Could not load the profile.", err)
	}
	return p, nil
}

func (s *profileService) Recruiter(ctx context.Context, caller *domain.Identity) (*domain.RecruiterProfile, error) {
	if err := access.Authorize(caller, domain.RoleRecruiter); err != nil {
		return nil, err
	}
	p, err := s.profiles.FindRecruiter(ctx, caller.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.RecruiterProfile{AccountID: caller.AccountID, DefaultEligibleBranches: []string{}}, nil
		}
		return nil, domain.Storage("Could not load the profile.", err)
	}
	return p, nil
}

// OpenResume returns the resume of studentID for the owner or a recruiter.
func (s *profileService) OpenResume(ctx context.Context, caller *domain.Identity, studentID, clientIP string) (*ports.ResumeFile, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !access.CanReadStudent(caller, studentID) {
		s.audit.Log(domain.AuditResumeDenied, "Resume access denied for student "+studentID, caller.Email, clientIP)
		return nil, domain.ErrForbidden
	}

	p, err := s.profiles.FindStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Resume not found.")
		}
		return nil, domain.Storage("Could not load the profile.", err)
	}
	return s.resumes.Fetch(ctx, p.Resume)
}
