package crm

// CreateLeadRequest adds a lead to the board. Status defaults to RADAR;
// creating directly in RESCUE triggers the full closed-deal side effects.
type CreateLeadRequest struct {
	Name           string  `json:"name" validate:"required"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	PotentialValue float64 `json:"potentialValue"`
	Notes          string  `json:"notes"`
	Status         string  `json:"status"`
}

// UpdateLeadRequest is a partial update; nil fields stay unchanged.
type UpdateLeadRequest struct {
	Name           *string  `json:"name"`
	Phone          *string  `json:"phone"`
	Email          *string  `json:"email"`
	PotentialValue *float64 `json:"potentialValue"`
	Notes          *string  `json:"notes"`
	Status         *string  `json:"status"`
}

// MoveLeadRequest drags a lead to another board column.
type MoveLeadRequest struct {
	Status string `json:"status" validate:"required"`
}

// Board is the kanban view: leads grouped per column.
type Board struct {
	Radar         []Lead `json:"RADAR"`
	Combat        []Lead `json:"COMBAT"`
	Extraction    []Lead `json:"EXTRACTION"`
	Rescue        []Lead `json:"RESCUE"`
	TotalCount    int    `json:"totalCount"`
	FamiliesSaved int    `json:"familiesSaved"`
}
