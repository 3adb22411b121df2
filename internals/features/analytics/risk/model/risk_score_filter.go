package model

import "github.com/google/uuid"

// RiskScoreFilter narrows risk score listings. Zero values mean "any".
type RiskScoreFilter struct {
	Level     RiskLevel
	MinScore  *int
	FacultyID *uuid.UUID
	ProgramID *uuid.UUID
	Limit     int
	Offset    int
}
