package dtos

import (
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
)

// ImportRequest carries the multipart form fields of an import upload.
type ImportRequest struct {
	Kind  string `validate:"required,oneof=import update"`
	Model string `validate:"required"`
	Scope string `validate:"required"`
}

// VerifyRequest asks for reconciliation of a cached source sample.
type VerifyRequest struct {
	Scope string `json:"scope" validate:"required"`
	Kind  string `json:"kind" validate:"required,oneof=import update"`
}

// RecoverableResponse is the recovery prompt payload.
type RecoverableResponse struct {
	Recoverable bool                `json:"recoverable"`
	Snapshot    *importjob.Snapshot `json:"snapshot,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
