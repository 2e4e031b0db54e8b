package request

type CreateRequestDTO struct {
	ApplicantName  string `json:"applicant_name" binding:"required"`
	ApplicantEmail string `json:"applicant_email" binding:"required"`
	Entity         string `json:"entity" binding:"required"`
	Place          string `json:"place" binding:"required"`
	DateFrom       string `json:"date_from" binding:"required"`
	DateTo         string `json:"date_to"`
	StartPeriod    string `json:"start_period" binding:"omitempty,oneof=FULL AM PM"`
	EndPeriod      string `json:"end_period" binding:"omitempty,oneof=FULL AM PM"`
	Type           string `json:"type" binding:"required"`
	ManagerEmail   string `json:"manager_email" binding:"required"`
	HREmail        string `json:"hr_email" binding:"required"`
	Comment        string `json:"comment"`
}

type DecisionDTO struct {
	Reason string `json:"reason"`
}

// SubmitResponse is the only payload applicants see.
type SubmitResponse struct {
	ID     string  `json:"id"`
	Days   float64 `json:"days"`
	Status string  `json:"status"`
}

type RequestResponse struct {
	ID             string  `json:"id"`
	ApplicantName  string  `json:"applicant_name"`
	ApplicantEmail string  `json:"applicant_email"`
	Entity         string  `json:"entity"`
	Place          string  `json:"place"`
	DateFrom       string  `json:"date_from"`
	DateTo         string  `json:"date_to"`
	StartPeriod    string  `json:"start_period"`
	EndPeriod      string  `json:"end_period"`
	Days           float64 `json:"days"`
	Type           string  `json:"type"`
	ManagerEmail   string  `json:"manager_email"`
	HREmail        string  `json:"hr_email"`
	Comment        string  `json:"comment,omitempty"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
	ValidatedAt    *string `json:"validated_at,omitempty"`
	DecisionAt     *string `json:"decision_at,omitempty"`
	DecisionReason *string `json:"decision_reason,omitempty"`
	DecidedBy      *string `json:"decided_by,omitempty"`
}

// ListFilter narrows admin listings and exports. Empty fields match all.
type ListFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=pending sent refused cancelled"`
	Entity string `form:"entity"`
	Type   string `form:"type"`
}

// Actor identifies the authenticated admin performing a transition.
type Actor struct {
	ID    string
	Name  string
	Email string
}
