package pipeline

import "time"

type MoveRequest struct {
	Stage string `json:"stage" validate:"required,oneof=Contacted Scheduled Closed contacted scheduled closed"`
}

type CloseRequest struct {
	Amount   float64    `json:"amount" validate:"required,finite,gte=0.01"`
	ClosedAt *time.Time `json:"closedAt"`
	Notes    string     `json:"notes" validate:"max=2000"`
}
