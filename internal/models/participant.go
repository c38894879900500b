package models

type Participant struct {
	Name     string `json:"name"`
	LastSeen int64  `json:"lastSeen"` // milliseconds since epoch
}

type JoinRequest struct {
	Name string `json:"name" validate:"required"`
}
