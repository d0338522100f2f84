package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectActive is the status assigned to newly created projects.
const ProjectActive = "active"

// Project groups a user's naming sessions and logo generations.
type Project struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
