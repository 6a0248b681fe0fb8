package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/placementcell/recruit-portal/internal/api/middleware"
	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
)

type stubProfileService struct {
	submitFn     func(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error)
	studentFn    func(ctx context.Context, caller *domain.Identity, studentID string) (*domain.StudentProfile, error)
	recruiterFn  func(ctx context.Context, caller *domain.Identity) (*domain.RecruiterProfile, error)
	openResumeFn func(ctx context.Context, caller *domain.Identity, studentID, clientIP string) (*ports.ResumeFile, error)
}

func (s *stubProfileService) Submit(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
	return s.submitFn(ctx, in)
}

func (s *stubProfileService) Student(ctx context.Context, caller *domain.Identity, studentID string) (*domain.StudentProfile, error) {
	return s.studentFn(ctx, caller, studentID)
}

func (s *stubProfileService) Recruiter(ctx context.Context, caller *domain.Identity) (*domain.RecruiterProfile, error) {
	return s.recruiterFn(ctx, caller)
}

func (s *stubProfileService) OpenResume(ctx context.Context, caller *domain.Identity, studentID, clientIP string) (*ports.ResumeFile, error) {
	return s.openResumeFn(ctx, caller, studentID, clientIP)
}

var (
	student   = &domain.Identity{AccountID: "s1", Email: "s1@example.com", Role: domain.RoleStudent}
	recruiter = &domain.Identity{AccountID: "r1", Email: "r1@example.com", Role: domain.RoleRecruiter}
	admin     = &domain.Identity{AccountID: "a1", Email: "a1@example.com", Role: domain.RoleAdmin}
)

func newContext(req *http.Request, id *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if id != nil {
		c.Set(middleware.IdentityKey, id)
	}
	return c, rec
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields url.Values, file *filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="resume"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(file.data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestProfileHandler_Home_RedirectsByRole(t *testing.T) {
	h := NewProfileHandler(&stubProfileService{}, 1024)

	for id, want := range map[*domain.Identity]string{
		student:   "/profile/student",
		recruiter: "/profile/recruiter",
	} {
		c, rec := newContext(httptest.NewRequest(http.MethodGet, "/profile", nil), id)
		if err := h.Home(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if loc := rec.Header().Get(echo.HeaderLocation); loc != want {
			t.Fatalf("expected redirect to %s, got %s", want, loc)
		}
	}
}

func TestProfileHandler_Home_AdminAndAnonymous(t *testing.T) {
	h := NewProfileHandler(&stubProfileService{}, 1024)

	c, _ := newContext(httptest.NewRequest(http.MethodGet, "/profile", nil), admin)
	if err := h.Home(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for admin, got %v", err)
	}

	c, _ = newContext(httptest.NewRequest(http.MethodGet, "/profile", nil), nil)
	if err := h.Home(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestProfileHandler_UpdateStudent_WithResume(t *testing.T) {
	var got ports.ProfileSubmission
	svc := &stubProfileService{
		submitFn: func(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
			got = in
			return &ports.ProfileResult{Student: &domain.StudentProfile{AccountID: "s1", FullName: "Asha"}}, nil
		},
	}
	h := NewProfileHandler(svc, 1024)

	fields := url.Values{"full_name": {"Asha"}, "phone": {"9876543210"}}
	req := multipartRequest(t, "/profile/student", fields, &filePart{name: "cv.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4 body")})
	c, rec := newContext(req, student)

	if err := h.UpdateStudent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Role != domain.RoleStudent || got.Identity != student {
		t.Fatalf("unexpected submission: %+v", got)
	}
	if got.Form.Get("full_name") != "Asha" || got.Form.Get("phone") != "9876543210" {
		t.Fatalf("form not forwarded: %v", got.Form)
	}
	if got.Resume == nil {
		t.Fatalf("expected resume upload")
	}
	if got.Resume.Filename != "cv.pdf" || got.Resume.ContentType != "application/pdf" || string(got.Resume.Data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected upload: %+v", got.Resume)
	}
	if !strings.Contains(rec.Body.String(), "Profile updated successfully.") {
		t.Fatalf("expected success message, got %s", rec.Body.String())
	}
}

func TestProfileHandler_UpdateStudent_WithoutResume(t *testing.T) {
	var got ports.ProfileSubmission
	svc := &stubProfileService{
		submitFn: func(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
			got = in
			return &ports.ProfileResult{Student: &domain.StudentProfile{}}, nil
		},
	}
	h := NewProfileHandler(svc, 1024)

	req := multipartRequest(t, "/profile/student", url.Values{"full_name": {"Asha"}}, nil)
	c, _ := newContext(req, student)

	if err := h.UpdateStudent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Resume != nil {
		t.Fatalf("expected no upload, got %+v", got.Resume)
	}
}

func TestProfileHandler_UpdateStudent_ReadsOneByteOverLimit(t *testing.T) {
	var got ports.ProfileSubmission
	svc := &stubProfileService{
		submitFn: func(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
			got = in
			return nil, domain.Validation("Resume must be 5 MB or smaller.")
		},
	}
	h := NewProfileHandler(svc, 4)

	req := multipartRequest(t, "/profile/student", nil, &filePart{name: "big.pdf", contentType: "application/pdf", data: []byte("0123456789")})
	c, _ := newContext(req, student)

	if err := h.UpdateStudent(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got.Resume == nil || len(got.Resume.Data) != 5 {
		t.Fatalf("expected 5 bytes read, got %+v", got.Resume)
	}
}

func TestProfileHandler_UpdateRecruiter_KeepsRepeatedFields(t *testing.T) {
	var got ports.ProfileSubmission
	svc := &stubProfileService{
		submitFn: func(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
			got = in
			return &ports.ProfileResult{Recruiter: &domain.RecruiterProfile{AccountID: "r1"}}, nil
		},
	}
	h := NewProfileHandler(svc, 1024)

	fields := url.Values{"company_name": {"Acme"}, "default_eligible_branches": {"CSE", "ECE"}}
	req := multipartRequest(t, "/profile/recruiter", fields, &filePart{name: "cv.pdf", contentType: "application/pdf", data: []byte("%PDF")})
	c, rec := newContext(req, recruiter)

	if err := h.UpdateRecruiter(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Role != domain.RoleRecruiter {
		t.Fatalf("expected recruiter role, got %s", got.Role)
	}
	if branches := got.Form["default_eligible_branches"]; len(branches) != 2 {
		t.Fatalf("expected both branches, got %v", branches)
	}
	if got.Resume != nil {
		t.Fatalf("recruiter submissions never carry a resume")
	}
}

func TestProfileHandler_UpdateStudent_ServiceErrorPassesThrough(t *testing.T) {
	svc := &stubProfileService{
		submitFn: func(ctx context.Context, in ports.ProfileSubmission) (*ports.ProfileResult, error) {
			return nil, domain.Conflict("This phone number is already registered with another account.")
		},
	}
	h := NewProfileHandler(svc, 1024)

	req := multipartRequest(t, "/profile/student", url.Values{"phone": {"9876543210"}}, nil)
	c, _ := newContext(req, student)

	if err := h.UpdateStudent(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestProfileHandler_GetStudent_UsesCallerProfile(t *testing.T) {
	svc := &stubProfileService{
		studentFn: func(ctx context.Context, caller *domain.Identity, studentID string) (*domain.StudentProfile, error) {
			if caller != student || studentID != "" {
				t.Fatalf("unexpected args: %+v %q", caller, studentID)
			}
			return &domain.StudentProfile{AccountID: "s1"}, nil
		},
	}
	h := NewProfileHandler(svc, 1024)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/profile/student", nil), student)
	if err := h.GetStudent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"account_id":"s1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestProfileHandler_ViewStudent_ForwardsID(t *testing.T) {
	svc := &stubProfileService{
		studentFn: func(ctx context.Context, caller *domain.Identity, studentID string) (*domain.StudentProfile, error) {
			if studentID != "s9" {
				t.Fatalf("expected s9, got %q", studentID)
			}
			return &domain.StudentProfile{AccountID: studentID}, nil
		},
	}
	h := NewProfileHandler(svc, 1024)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/profile/student/view/s9", nil), recruiter)
	c.SetParamNames("id")
	c.SetParamValues("s9")

	if err := h.ViewStudent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProfileHandler_ViewRecruiter(t *testing.T) {
	svc := &stubProfileService{
		recruiterFn: func(ctx context.Context, caller *domain.Identity) (*domain.RecruiterProfile, error) {
			return &domain.RecruiterProfile{AccountID: caller.AccountID, CompanyName: "Acme"}, nil
		},
	}
	h := NewProfileHandler(svc, 1024)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/profile/recruiter/view", nil), recruiter)
	if err := h.ViewRecruiter(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"company_name":"Acme"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func TestProfileHandler_Resume_Disposition(t *testing.T) {
	cases := []struct {
		name        string
		call        func(h *ProfileHandler, c echo.Context) error
		disposition string
	}{
		{"download", (*ProfileHandler).DownloadResume, "attachment; filename=cv.pdf"},
		{"view", (*ProfileHandler).ViewResume, "inline; filename=cv.pdf"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := &trackedBody{Reader: strings.NewReader("%PDF-1.4")}
			svc := &stubProfileService{
				openResumeFn: func(ctx context.Context, caller *domain.Identity, studentID, clientIP string) (*ports.ResumeFile, error) {
					if studentID != "s1" {
						t.Fatalf("expected s1, got %q", studentID)
					}
					return &ports.ResumeFile{Name: "cv.pdf", ContentType: "application/pdf", Size: 8, Body: body}, nil
				},
			}
			h := NewProfileHandler(svc, 1024)

			c, rec := newContext(httptest.NewRequest(http.MethodGet, "/profile/resume/s1", nil), student)
			c.SetParamNames("id")
			c.SetParamValues("s1")

			if err := tc.call(h, c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if got := rec.Header().Get(echo.HeaderContentDisposition); got != tc.disposition {
				t.Fatalf("expected %q, got %q", tc.disposition, got)
			}
			if got := rec.Header().Get(echo.HeaderContentType); got != "application/pdf" {
				t.Fatalf("unexpected content type %q", got)
			}
			if rec.Body.String() != "%PDF-1.4" {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
			if !body.closed {
				t.Fatalf("resume body was not closed")
			}
		})
	}
}

func TestProfileHandler_Resume_Denied(t *testing.T) {
	var gotIP string
	svc := &stubProfileService{
		openResumeFn: func(ctx context.Context, caller *domain.Identity, studentID, clientIP string) (*ports.ResumeFile, error) {
			gotIP = clientIP
			return nil, domain.ErrForbidden
		},
	}
	h := NewProfileHandler(svc, 1024)

	req := httptest.NewRequest(http.MethodGet, "/profile/resume/s2", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	c, rec := newContext(req, student)
	c.SetParamNames("id")
	c.SetParamValues("s2")

	if err := h.DownloadResume(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if gotIP != "203.0.113.7" {
		t.Fatalf("client IP not forwarded, got %q", gotIP)
	}
	if rec.Header().Get(echo.HeaderContentDisposition) != "" {
		t.Fatalf("no headers may be written on denial")
	}
}
