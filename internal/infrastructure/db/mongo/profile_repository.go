package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// ProfileRepository stores student and recruiter profiles in their own
// collections. A profile shares its _id with the owning account.
type ProfileRepository struct {
	students   *mongo.Collection
	recruiters *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		students:   db.Collection(collectionStudents),
		recruiters: db.Collection(collectionRecruiters),
	}
}

type resumeDoc struct {
	StoredName   string    `bson:"stored_name"`
	OriginalName string    `bson:"original_name"`
	ContentType  string    `bson:"content_type"`
	SizeBytes    int64     `bson:"size_bytes"`
	Pages        int       `bson:"pages,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

type studentDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	FullName        string             `bson:"full_name"`
	Phone           string             `bson:"phone,omitempty"`
	DOB             *time.Time         `bson:"dob,omitempty"`
	Gender          string             `bson:"gender"`
	Address         string             `bson:"address"`
	College         string             `bson:"college"`
	Branch          string             `bson:"branch"`
	Degree          string             `bson:"degree"`
	CurrentYear     string             `bson:"current_year"`
	GraduationYear  int                `bson:"graduation_year"`
	CGPA            float64            `bson:"cgpa"`
	TenthMarks      *float64           `bson:"tenth_marks,omitempty"`
	TwelfthMarks    *float64           `bson:"twelfth_marks,omitempty"`
	Backlogs        *int               `bson:"backlogs,omitempty"`
	TechnicalSkills string             `bson:"technical_skills"`
	SoftSkills      string             `bson:"soft_skills"`
	Certifications  string             `bson:"certifications"`
	Resume          *resumeDoc         `bson:"resume,omitempty"`
	ProfileComplete bool               `bson:"profile_complete"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

type recruiterDoc struct {
	ID                      primitive.ObjectID `bson:"_id"`
	FullName                string             `bson:"full_name"`
	Phone                   string             `bson:"phone,omitempty"`
	CompanyName             string             `bson:"company_name"`
	CompanyWebsite          string             `bson:"company_website"`
	LinkedInURL             string             `bson:"linkedin_url"`
	Industry                string             `bson:"industry"`
	Designation             string             `bson:"designation"`
	DefaultMinCGPA          *float64           `bson:"default_min_cgpa"`
	DefaultEligibleBranches []string           `bson:"default_eligible_branches"`
	DefaultSkills           string             `bson:"default_skills"`
	DefaultJobRole          string             `bson:"default_job_role"`
	DefaultJobType          string             `bson:"default_job_type"`
	ProfileComplete         bool               `bson:"profile_complete"`
	UpdatedAt               time.Time          `bson:"updated_at"`
}

func (d studentDoc) toDomain() *domain.StudentProfile {
	p := &domain.StudentProfile{
		AccountID:       d.ID.Hex(),
		FullName:        d.FullName,
		Phone:           d.Phone,
		DOB:             d.DOB,
		Gender:          d.Gender,
		Address:         d.Address,
		College:         d.College,
		Branch:          d.Branch,
		Degree:          d.Degree,
		CurrentYear:     d.CurrentYear,
		GraduationYear:  d.GraduationYear,
		CGPA:            d.CGPA,
		TenthMarks:      d.TenthMarks,
		TwelfthMarks:    d.TwelfthMarks,
		Backlogs:        d.Backlogs,
		TechnicalSkills: d.TechnicalSkills,
		SoftSkills:      d.SoftSkills,
		Certifications:  d.Certifications,
		ProfileComplete: d.ProfileComplete,
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
	if d.Resume != nil {
		p.Resume = &domain.ResumeAsset{
			OwnerID:      p.AccountID,
			StoredName:   d.Resume.StoredName,
			OriginalName: d.Resume.OriginalName,
			ContentType:  d.Resume.ContentType,
			SizeBytes:    d.Resume.SizeBytes,
			Pages:        d.Resume.Pages,
			CreatedAt:    d.Resume.CreatedAt.UTC(),
		}
	}
	return p
}

func (d recruiterDoc) toDomain() *domain.RecruiterProfile {
	branches := d.DefaultEligibleBranches
	if branches == nil {
		branches = []string{}
	}
	return &domain.RecruiterProfile{
		AccountID:               d.ID.Hex(),
		FullName:                d.FullName,
		Phone:                   d.Phone,
		CompanyName:             d.CompanyName,
		CompanyWebsite:          d.CompanyWebsite,
		LinkedInURL:             d.LinkedInURL,
		Industry:                d.Industry,
		Designation:             d.Designation,
		DefaultMinCGPA:          d.DefaultMinCGPA,
		DefaultEligibleBranches: branches,
		DefaultSkills:           d.DefaultSkills,
		DefaultJobRole:          d.DefaultJobRole,
		DefaultJobType:          d.DefaultJobType,
		ProfileComplete:         d.ProfileComplete,
		UpdatedAt:               d.UpdatedAt.UTC(),
	}
}

// FindStudent retrieves a student profile by account ID.
func (r *ProfileRepository) FindStudent(ctx context.Context, accountID string) (*domain.StudentProfile, error) {
	oid, err := objectID(accountID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc studentDoc
	if err := r.students.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return doc.toDomain(), nil
}

// FindRecruiter retrieves a recruiter profile by account ID.
func (r *ProfileRepository) FindRecruiter(ctx context.Context, accountID string) (*domain.RecruiterProfile, error) {
	oid, err := objectID(accountID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc recruiterDoc
	if err := r.recruiters.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find recruiter: %w", err)
	}
	return doc.toDomain(), nil
}

// PhoneInUse looks for another profile of the same role holding phone.
func (r *ProfileRepository) PhoneInUse(ctx context.Context, role domain.Role, accountID, phone string) (bool, error) {
	coll, err := r.collection(role)
	if err != nil {
		return false, err
	}
	filter := bson.M{"phone": phone}
	if oid, err := primitive.ObjectIDFromHex(accountID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err = coll.FindOne(ctx, filter, opts).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("phone lookup: %w", err)
	}
}

// UpdateStudent upserts the student profile with $set so fields absent from
// u are left as stored.
func (r *ProfileRepository) UpdateStudent(ctx context.Context, accountID string, u domain.StudentUpdate) error {
	set := bson.M{
		"full_name":        u.FullName,
		"phone":            u.Phone,
		"dob":              u.DOB.UTC(),
		"gender":           u.Gender,
		"address":          u.Address,
		"college":          u.College,
		"branch":           u.Branch,
		"degree":           u.Degree,
		"current_year":     u.CurrentYear,
		"graduation_year":  u.GraduationYear,
		"cgpa":             u.CGPA,
		"technical_skills": u.TechnicalSkills,
		"soft_skills":      u.SoftSkills,
		"certifications":   u.Certifications,
		"profile_complete": true,
		"updated_at":       u.UpdatedAt.UTC(),
	}
	if u.TenthMarks != nil {
		set["tenth_marks"] = *u.TenthMarks
	}
	if u.TwelfthMarks != nil {
		set["twelfth_marks"] = *u.TwelfthMarks
	}
	if u.Backlogs != nil {
		set["backlogs"] = *u.Backlogs
	}
	if u.Resume != nil {
		set["resume"] = resumeDoc{
			StoredName:   u.Resume.StoredName,
			OriginalName: u.Resume.OriginalName,
			ContentType:  u.Resume.ContentType,
			SizeBytes:    u.Resume.SizeBytes,
			Pages:        u.Resume.Pages,
			CreatedAt:    u.Resume.CreatedAt.UTC(),
		}
	}
	return r.upsert(ctx, r.students, accountID, set)
}

// UpdateRecruiter upserts the recruiter profile.
func (r *ProfileRepository) UpdateRecruiter(ctx context.Context, accountID string, u domain.RecruiterUpdate) error {
	set := bson.M{
		"full_name":                 u.FullName,
		"phone":                     u.Phone,
		"company_name":              u.CompanyName,
		"company_website":           u.CompanyWebsite,
		"linkedin_url":              u.LinkedInURL,
		"industry":                  u.Industry,
		"designation":               u.Designation,
		"default_min_cgpa":          u.DefaultMinCGPA,
		"default_eligible_branches": u.DefaultEligibleBranches,
		"default_skills":            u.DefaultSkills,
		"default_job_role":          u.DefaultJobRole,
		"default_job_type":          u.DefaultJobType,
		"profile_complete":          true,
		"updated_at":                u.UpdatedAt.UTC(),
	}
	return r.upsert(ctx, r.recruiters, accountID, set)
}

func (r *ProfileRepository) upsert(ctx context.Context, coll *mongo.Collection, accountID string, set bson.M) error {
	oid, err := objectID(accountID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.DuplicateKeyError{Field: duplicateField(err, "phone")}
		}
		return fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	return nil
}

func (r *ProfileRepository) collection(role domain.Role) (*mongo.Collection, error) {
	switch role {
	case domain.RoleStudent:
		return r.students, nil
	case domain.RoleRecruiter:
		return r.recruiters, nil
	default:
		return nil, fmt.Errorf("no profile collection for role %q", role)
	}
}

// EnsureIndexes creates the sparse unique phone index on both collections.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	phone := mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
	if _, err := r.students.Indexes().CreateOne(ctx, phone); err != nil {
		return fmt.Errorf("students indexes: %w", err)
	}
	if _, err := r.recruiters.Indexes().CreateOne(ctx, phone); err != nil {
		return fmt.Errorf("recruiters indexes: %w", err)
	}
	return nil
}
