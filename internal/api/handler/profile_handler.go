package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
)

const resumeField = "resume"

type ProfileHandler struct {
	profiles       ports.ProfileService
	maxResumeBytes int64
}

// NewProfileHandler reads at most maxResumeBytes+1 bytes of an uploaded
// resume so the size check downstream can still reject oversized files.
func NewProfileHandler(profiles ports.ProfileService, maxResumeBytes int64) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, maxResumeBytes: maxResumeBytes}
}

type profileResponse struct {
	Message   string                   `json:"message,omitempty"`
	Student   *domain.StudentProfile   `json:"student,omitempty"`
	Recruiter *domain.RecruiterProfile `json:"recruiter,omitempty"`
}

// Home redirects the caller to the profile route of their role.
//
// @Summary      Profile entry point
// @Tags         profile
// @Security     BearerAuth
// @Success      303
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /profile [get]
func (h *ProfileHandler) Home(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	switch id.Role {
	case domain.RoleStudent:
		return c.Redirect(http.StatusSeeOther, "/profile/student")
	case domain.RoleRecruiter:
		return c.Redirect(http.StatusSeeOther, "/profile/recruiter")
	}
	return domain.ErrForbidden
}

// GetStudent returns the caller's own student profile.
//
// @Summary      Current student profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /profile/student [get]
func (h *ProfileHandler) GetStudent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.Student(c.Request().Context(), id, "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Student: p})
}

// UpdateStudent validates and saves the student form, with an optional
// resume upload in the "resume" part.
//
// @Summary      Update student profile
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        full_name        formData  string  true   "Full name"
// @Param        phone            formData  string  true   "10-digit phone number"
// @Param        dob              formData  string  true   "Date of birth (YYYY-MM-DD)"
// @Param        graduation_year  formData  int     true   "Graduation year"
// @Param        cgpa             formData  number  true   "CGPA"
// @Param        resume           formData  file    false  "Resume (PDF)"
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /profile/student [post]
func (h *ProfileHandler) UpdateStudent(c echo.Context) error {
	return h.submit(c, domain.RoleStudent)
}

// GetRecruiter returns the caller's own recruiter profile.
//
// @Summary      Current recruiter profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /profile/recruiter [get]
func (h *ProfileHandler) GetRecruiter(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.Recruiter(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Recruiter: p})
}

// UpdateRecruiter validates and saves the recruiter form.
//
// @Summary      Update recruiter profile
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        full_name                  formData  string  true   "Full name"
// @Param        phone                      formData  string  true   "10-digit phone number"
// @Param        company_name               formData  string  true   "Company name"
// @Param        default_eligible_branches  formData  []string  false  "Eligible branches"  collectionFormat(multi)
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /profile/recruiter [post]
func (h *ProfileHandler) UpdateRecruiter(c echo.Context) error {
	return h.submit(c, domain.RoleRecruiter)
}

func (h *ProfileHandler) submit(c echo.Context, role domain.Role) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	var upload *ports.Upload
	if role == domain.RoleStudent {
		if upload, err = h.readUpload(c); err != nil {
			return err
		}
	}

	res, err := h.profiles.Submit(c.Request().Context(), ports.ProfileSubmission{
		Identity: id,
		Role:     role,
		Form:     form,
		Resume:   upload,
		ClientIP: c.RealIP(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Message:   "Profile updated successfully.",
		Student:   res.Student,
		Recruiter: res.Recruiter,
	})
}

// readUpload returns nil when the request carries no resume part.
func (h *ProfileHandler) readUpload(c echo.Context) (*ports.Upload, error) {
	fh, err := c.FormFile(resumeField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid resume upload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid resume upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxResumeBytes+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid resume upload")
	}

	return &ports.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

// ViewStudent returns a student profile to its owner or to a recruiter.
// Without an id the caller's own profile is shown.
//
// @Summary      View a student profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  false  "Student account ID"
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /profile/student/view/{id} [get]
func (h *ProfileHandler) ViewStudent(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.Student(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Student: p})
}

// ViewRecruiter returns the caller's own recruiter profile.
//
// @Summary      View recruiter profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /profile/recruiter/view [get]
func (h *ProfileHandler) ViewRecruiter(c echo.Context) error {
	return h.GetRecruiter(c)
}

// DownloadResume streams a student's resume as an attachment.
//
// @Summary      Download resume
// @Tags         resume
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Student account ID"
// @Success      200  {file}    binary
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /profile/resume/{id} [get]
func (h *ProfileHandler) DownloadResume(c echo.Context) error {
	return h.streamResume(c, "attachment")
}

// ViewResume streams a student's resume for display in the browser.
//
// @Summary      View resume inline
// @Tags         resume
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Student account ID"
// @Success      200  {file}    binary
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /profile/resume/view/{id} [get]
func (h *ProfileHandler) ViewResume(c echo.Context) error {
	return h.streamResume(c, "inline")
}

func (h *ProfileHandler) streamResume(c echo.Context, disposition string) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	file, err := h.profiles.OpenResume(c.Request().Context(), id, c.Param("id"), c.RealIP())
	if err != nil {
		return err
	}
	defer file.Body.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))
	if file.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(file.Size, 10))
	}
	return c.Stream(http.StatusOK, file.ContentType, file.Body)
}
