package model

import (
	"errors"
	"time"
)

// JobPosting is the raw posting as supplied by the operator. The pipeline
// fingerprints only Description; the rest is display metadata.
type JobPosting struct {
	URL         string    `json:"url"`
	Company     string    `json:"company"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	SalaryRange string    `json:"salary_range,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

/// JobAnalysis is the job_analysis stage payload: structured requirements
// extracted from a posting.
type JobAnalysis struct {
	RoleType  string `json:"role_type"`
	Seniority string `json:"seniority"`
	Industry  string `json:"industry"`

	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	TechnicalSkills []string `json:"technical_skills,omitempty"`
	SoftSkills      []string `json:"soft_skills,omitempty"`

	CriticalKeywords  []string `json:"critical_keywords,omitempty"`
	SecondaryKeywords []string `json:"secondary_keywords,omitempty"`

	EducationRequirements []string `json:"education_requirements,omitempty"`
	Certifications        []string `json:"certifications,omitempty"`
	YearsExperience       string   `json:"years_experience,omitempty"`

	KeyResponsibilities []string `json:"key_responsibilities,omitempty"`
	CultureKeywords     []string `json:"culture_keywords,omitempty"`

	ConfidenceScore float64 `json:"confidence_score"`
}

// Validate checks the minimum shape required to drive downstream stages.
func (a *JobAnalysis) Validate() error {
	if a.RoleType == "" {
		return errors.New("job analysis missing role_type")
	}
	if len(a.RequiredSkills) == 0 {
		return errors.New("job analysis has no required skills")
	}
	return nil
}
