package tenants

type ChangeActiveRequest struct {
	Client string `json:"client" validate:"required,notblank,max=200"`
}

type ActiveResponse struct {
	Client string `json:"client"`
}

type ListResponse struct {
	Clients []string `json:"clients"`
	Default string   `json:"default"`
	Active  string   `json:"active"`
}

type AssignmentsRequest struct {
	Clients []string `json:"clients" validate:"max=500,dive,required,notblank,max=200"`
}

type AssignmentsResponse struct {
	UserID  string   `json:"userId"`
	Clients []string `json:"clients"`
}
