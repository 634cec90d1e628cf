package model

import "time"

// ContractState is derived from signature timestamps; the backend never sends
// it directly.
type ContractState string

const (
	ContractStateUnsigned ContractState = "unsigned"
	ContractStateSigned   ContractState = "signed"
)

// Contract is a training agreement attached to a validated order.
type Contract struct {
	ID                   string     `json:"id"`
	OrderID              string     `json:"order_id"`
	StudentSignedOn      *time.Time `json:"student_signed_on"`
	OrganizationSignedOn *time.Time `json:"organization_signed_on"`
}

// State reports the derived signature state. Only the learner's signature
// gates the order lifecycle; the organization countersigns afterwards.
func (c Contract) State() ContractState {
	if c.StudentSignedOn != nil {
		return ContractStateSigned
	}
	return ContractStateUnsigned
}

// FullySigned reports whether both parties have signed.
func (c Contract) FullySigned() bool {
	return c.StudentSignedOn != nil && c.OrganizationSignedOn != nil
}
