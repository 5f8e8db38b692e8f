package activity

import "time"

type LogRequest struct {
	Action      string
	Module      string
	TargetID    string
	Description string
	Metadata    map[string]interface{}
}

type ListFilter struct {
	Module   string
	TargetID string
	Limit    int
}

type LogResponse struct {
	ID          string                 `json:"id"`
	Action      string                 `json:"action"`
	Module      string                 `json:"module"`
	TargetID    string                 `json:"target_id"`
	ActorID     string                 `json:"actor_id"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
