package model

import (
	"sort"
	"strings"
)

// JobFilter narrows a set of listings. Zero values mean "no constraint".
type JobFilter struct {
	SearchTerm      string    `json:"q,omitempty"`
	Institution     string    `json:"institution,omitempty"`
	Position        string    `json:"position,omitempty"`
	InstitutionType string    `json:"institution_type,omitempty"`
	Status          JobStatus `json:"status,omitempty"`
}

func (f JobFilter) IsEmpty() bool {
	return strings.TrimSpace(f.SearchTerm) == "" && f.Institution == "" && f.Position == "" &&
		f.InstitutionType == "" && f.Status == ""
}

// Matches reports whether j passes f. The search term is a case-insensitive
// substring over title, institution or location; field filters must match exactly.
func (f JobFilter) Matches(j *JobListing) bool {
	if j == nil {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" {
		if !strings.Contains(strings.ToLower(j.Title), term) &&
			!strings.Contains(strings.ToLower(j.Institution), term) &&
			!strings.Contains(strings.ToLower(j.Location), term) {
			return false
		}
	}
	if f.Institution != "" && j.Institution != f.Institution {
		return false
	}
	if f.Position != "" && j.Title != f.Position {
		return false
	}
	if f.InstitutionType != "" && j.InstitutionType != f.InstitutionType {
		return false
	}
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	return true
}

// FilterJobs returns the listings passing f in their original relative order.
func FilterJobs(jobs []*JobListing, f JobFilter) []*JobListing {
	out := make([]*JobListing, 0, len(jobs))
	for _, j := range jobs {
		if f.Matches(j) {
			out = append(out, j)
		}
	}
	return out
}

// JobFacets feeds the filter dropdowns and the sidebar counters of the jobs page.
type JobFacets struct {
	Institutions []string          `json:"institutions"`
	Positions    []string          `json:"positions"`
	ByStatus     map[JobStatus]int `json:"by_status"`
	Total        int               `json:"total"`
}

// BuildFacets collects distinct institutions and positions (sorted) and counts per status.
func BuildFacets(jobs []*JobListing) JobFacets {
	inst := map[string]struct{}{}
	pos := map[string]struct{}{}
	f := JobFacets{ByStatus: map[JobStatus]int{}, Total: len(jobs)}
	for _, j := range jobs {
		inst[j.Institution] = struct{}{}
		pos[j.Title] = struct{}{}
		f.ByStatus[j.Status]++
	}
	f.Institutions = sortedKeys(inst)
	f.Positions = sortedKeys(pos)
	return f
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
