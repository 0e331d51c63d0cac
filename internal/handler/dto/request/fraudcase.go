package request

import (
	"github.com/google/uuid"
)

type ClaimCaseRequest struct {
	ReviewerID uuid.UUID `json:"reviewer_id" binding:"required"`
}

type ReviewCaseRequest struct {
	Status     string    `json:"status" binding:"required,oneof=APPROVED REJECTED FALSE_POSITIVE"`
	ReviewerID uuid.UUID `json:"reviewer_id" binding:"required"`
	Notes      string    `json:"notes" binding:"required"`
	Actions    []string  `json:"actions,omitempty"`
}
