package model

import (
	"strings"
	"time"

	"agent-promosi/internal/domain"
)

type JobStatus string

const (
	JobStatusHot     JobStatus = "hot"
	JobStatusActive  JobStatus = "active"
	JobStatusClosing JobStatus = "closing"
)

func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case JobStatusHot:
		return JobStatusHot, nil
	case JobStatusActive:
		return JobStatusActive, nil
	case JobStatusClosing:
		return JobStatusClosing, nil
	}
	return "", domain.ErrInvalidArgument
}

// JobListing is a promotion vacancy at a government institution.
type JobListing struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Institution     string    `json:"institution"`
	InstitutionType string    `json:"institution_type"`
	Location        string    `json:"location"`
	Education       string    `json:"education"`
	Experience      string    `json:"experience"`
	Salary          string    `json:"salary"`
	Deadline        time.Time `json:"deadline"`
	Applicants      int       `json:"applicants"`
	Status          JobStatus `json:"status"`
	Description     string    `json:"description"`
	Requirements    []string  `json:"requirements"`
	LogoURL         string    `json:"logo_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewJobListing validates and constructs a listing in the active state.
func NewJobListing(id, title, institution, location string, deadline time.Time) (*JobListing, error) {
	title = strings.TrimSpace(title)
	institution = strings.TrimSpace(institution)
	if id == "" || title == "" || institution == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &JobListing{
		ID:           id,
		Title:        title,
		Institution:  institution,
		Location:     strings.TrimSpace(location),
		Deadline:     deadline,
		Status:       JobStatusActive,
		Requirements: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// StatusAt derives the badge a listing should carry at the given moment.
// Listings close to their deadline are "closing"; popular ones are "hot".
func (j *JobListing) StatusAt(now time.Time, closingWindow time.Duration, hotThreshold int) JobStatus {
	if !j.Deadline.IsZero() && j.Deadline.Sub(now) <= closingWindow {
		return JobStatusClosing
	}
	if hotThreshold > 0 && j.Applicants >= hotThreshold {
		return JobStatusHot
	}
	return JobStatusActive
}

// JobDraft is the admin input for a new listing.
type JobDraft struct {
	Title           string    `json:"title"`
	Institution     string    `json:"institution"`
	InstitutionType string    `json:"institution_type"`
	Location        string    `json:"location"`
	Education       string    `json:"education"`
	Experience      string    `json:"experience"`
	Salary          string    `json:"salary"`
	Deadline        time.Time `json:"deadline"`
	Description     string    `json:"description"`
	Requirements    []string  `json:"requirements"`
	LogoURL         string    `json:"logo_url,omitempty"`
}

// Listing builds a validated listing from d.
func (d JobDraft) Listing(id string) (*JobListing, error) {
	j, err := NewJobListing(id, d.Title, d.Institution, d.Location, d.Deadline)
	if err != nil {
		return nil, err
	}
	j.InstitutionType = strings.TrimSpace(d.InstitutionType)
	j.Education = strings.TrimSpace(d.Education)
	j.Experience = strings.TrimSpace(d.Experience)
	j.Salary = strings.TrimSpace(d.Salary)
	j.Description = strings.TrimSpace(d.Description)
	j.LogoURL = strings.TrimSpace(d.LogoURL)
	for _, r := range d.Requirements {
		if r = strings.TrimSpace(r); r != "" {
			j.Requirements = append(j.Requirements, r)
		}
	}
	return j, nil
}
