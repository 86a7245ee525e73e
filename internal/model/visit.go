package model

import (
	"time"

	"github.com/google/uuid"
)

type Visit struct {
	Base
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProviderID *uuid.UUID `db:"provider_id" json:"provider_id,omitempty"`
	LocationID *uuid.UUID `db:"location_id" json:"location_id,omitempty"`
	VisitDate  time.Time  `db:"visit_date" json:"visit_date"`
	Reason     *string    `db:"reason" json:"reason,omitempty"`
	Status     string     `db:"status" json:"status"`
	// Joined for display.
	PatientName  *string `db:"patient_name" json:"patient_name,omitempty"`
	ProviderName *string `db:"provider_name" json:"provider_name,omitempty"`
}

type VisitFilters struct {
	PatientID *uuid.UUID `form:"patient_id"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}
