package model

import (
	"errors"
	"strings"
	"time"
)

// WorkExperience is a single position on a resume.
type WorkExperience struct {
	Company      string   `json:"company"`
	Title        string   `json:"title"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date,omitempty"` // empty if current
	Location     string   `json:"location,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// Education is a single education entry.
type Education struct {
	Institution    string   `json:"institution"`
	Degree         string   `json:"degree"`
	FieldOfStudy   string   `json:"field_of_study,omitempty"`
	GraduationDate string   `json:"graduation_date,omitempty"`
	Honors         []string `json:"honors,omitempty"`
}

// Resume is a structured resume, either loaded from a JSON pool file or
// produced by parsing a PDF.
type Resume struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`

	ProfessionalSummary string `json:"professional_summary,omitempty"`

	Experience []WorkExperience `json:"experience,omitempty"`
	Education  []Education      `json:"education,omitempty"`

	TechnicalSkills []string `json:"technical_skills,omitempty"`
	SoftSkills      []string `json:"soft_skills,omitempty"`
	Tools           []string `json:"tools,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
}

// Validate checks the minimum shape of a resume payload.
func (r *Resume) Validate() error {
	if r.Name == "" {
		return errors.New("resume missing name")
	}
	return nil
}

// DeclaredSkills returns the lowercase set of every skill the resume
// declares anywhere: skill lists, tools, and per-position technologies.
func (r *Resume) DeclaredSkills() map[string]bool {
	skills := make(map[string]bool)
	add := func(list []string) {
		for _, s := range list {
			skills[strings.ToLower(strings.TrimSpace(s))] = true
		}
	}
	add(r.TechnicalSkills)
	add(r.SoftSkills)
	add(r.Tools)
	for _, exp := range r.Experience {
		add(exp.Technologies)
	}
	return skills
}

// ResumeMetadata records provenance for a tailored resume written to disk.
type ResumeMetadata struct {
	ResumeID       string    `json:"resume_id"`
	CreatedAt      time.Time `json:"created_at"`
	BaseResumeID   string    `json:"base_resume_id,omitempty"`
	JobPostingURL  string    `json:"job_posting_url,omitempty"`
	Company        string    `json:"company,omitempty"`
	JobTitle       string    `json:"job_title,omitempty"`
	TargetRole     string    `json:"target_role,omitempty"`
	TargetIndustry string    `json:"target_industry,omitempty"`
	MatchScore     float64   `json:"match_score,omitempty"`
	FilePath       string    `json:"file_path,omitempty"`
}
