package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeEmailRegistrationRequest  = "email:registration_request"
	TypeEmailRegistrationApproved = "email:registration_approved"
	TypeEmailRegistrationRejected = "email:registration_rejected"
	TypeCleanupExpired            = "cleanup:expired"
)

type RegistrationRequestPayload struct {
	AdminEmail string `json:"admin_email"`
	UserEmail  string `json:"user_email"`
	UserName   string `json:"user_name"`
}

type RegistrationDecisionPayload struct {
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
}

func NewRegistrationRequestTask(p RegistrationRequestPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailRegistrationRequest, payload), nil
}

func NewRegistrationApprovedTask(p RegistrationDecisionPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailRegistrationApproved, payload), nil
}

func NewRegistrationRejectedTask(p RegistrationDecisionPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailRegistrationRejected, payload), nil
}

func NewCleanupExpiredTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupExpired, nil)
}
