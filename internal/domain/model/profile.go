package model

import (
	"strings"
	"time"

	"agent-promosi/internal/domain"
)

type ProfileRole string

const (
	RoleAdmin   ProfileRole = "admin"
	RolePegawai ProfileRole = "pegawai"
)

// Profile is the employee record shown on the profile page.
type Profile struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	AvatarURL  string      `json:"avatar_url,omitempty"`
	JobTitle   string      `json:"job_title,omitempty"`
	Department string      `json:"department,omitempty"`
	Position   string      `json:"position,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Address    string      `json:"address,omitempty"`
	Role       ProfileRole `json:"role"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ProfileUpdate carries the fields an employee may edit themselves.
type ProfileUpdate struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

// Apply validates u and copies it onto p.
func (p *Profile) Apply(u ProfileUpdate, now time.Time) error {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		return domain.ErrInvalidArgument
	}
	p.FullName = name
	p.Phone = strings.TrimSpace(u.Phone)
	p.Address = strings.TrimSpace(u.Address)
	p.Position = strings.TrimSpace(u.Position)
	p.Department = strings.TrimSpace(u.Department)
	p.UpdatedAt = now
	return nil
}
