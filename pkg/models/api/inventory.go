package api

import (
	"github.com/google/uuid"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/services/inventory"
)

// ErrorBody is the JSON error envelope for every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// UploadResponse reports the result of an inventory upload. When the
// file has validation issues the rows are returned for editing and the
// id refers to a pending session.
type UploadResponse struct {
	ID        uuid.UUID                `json:"id"`
	Name      string                   `json:"name"`
	NumPlots  int                      `json:"num_plots"`
	NumTrees  int                      `json:"num_trees"`
	HasErrors bool                     `json:"has_errors"`
	Errors    []domain.ValidationIssue `json:"errors"`
	Trees     []inventory.EditableRow  `json:"trees"`
	Species   []string                 `json:"species"`
}

// ValidateRequest resubmits corrected rows for a pending upload.
type ValidateRequest struct {
	ID   uuid.UUID               `json:"id"`
	Name string                  `json:"name"`
	Rows []inventory.EditableRow `json:"rows"`
}

// GrowthRequest selects a growth model and horizon for a projection.
type GrowthRequest struct {
	Model     string   `json:"model"`
	Years     int      `json:"years"`
	Rate      float64  `json:"rate"`
	Capacity  float64  `json:"capacity"`
	Increment float64  `json:"increment"`
	Mortality *float64 `json:"mortality,omitempty"`
}
