package model

import (
	"time"

	"agent-promosi/internal/domain"
)

// JobApplication records that a user applied to a listing. (job_id, user_id) is unique.
type JobApplication struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func NewJobApplication(id, jobID, userID string) (*JobApplication, error) {
	if id == "" || jobID == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &JobApplication{ID: id, JobID: jobID, UserID: userID, CreatedAt: time.Now().UTC()}, nil
}
