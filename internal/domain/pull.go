package domain

// PullRequest asks for a single packet draw
type PullRequest struct {
	UserID         string `json:"user_id"`
	Policy         string `json:"policy"`
	GrantLabel     string `json:"grant,omitempty"`
	CohortOverride string `json:"cohort,omitempty"`
	Source         string `json:"source,omitempty"`
}

// PullResult is the ordered list of drawn cards plus updated balances
type PullResult struct {
	Cards     []Card        `json:"cards"`
	Debit     Debit         `json:"debit"`
	Allowance AllowanceView `json:"allowance"`
}
