package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/alerts/model"
	"kampusku_backend/internals/features/analytics/alerts/service"
	riskModel "kampusku_backend/internals/features/analytics/risk/model"
	notifModel "kampusku_backend/internals/features/home/notifications/model"
	"kampusku_backend/internals/helpers/clock"
)

type singleStudentRepo struct {
	student   academicModel.StudentModel
	score     int
	absences  int
	secretary uuid.UUID
	alerts    []model.RiskAlertModel
}

func (r *singleStudentRepo) FindStudent(_ context.Context, id uuid.UUID) (*academicModel.StudentModel, error) {
	if id != r.student.StudentID {
		return nil, gorm.ErrRecordNotFound
	}
	s := r.student
	return &s, nil
}

func (r *singleStudentRepo) FindFaculty(context.Context, uuid.UUID) (*academicModel.FacultyModel, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *singleStudentRepo) FindRiskScore(_ context.Context, id uuid.UUID) (*riskModel.StudentRiskScoreModel, error) {
	return &riskModel.StudentRiskScoreModel{StudentRiskScoreStudentID: id, StudentRiskScoreOverall: r.score}, nil
}

func (r *singleStudentRepo) MaxConsecutiveAbsences(context.Context, uuid.UUID) (int, error) {
	return r.absences, nil
}

func (r *singleStudentRepo) ListFacultyUserIDsByRole(context.Context, uuid.UUID, string) ([]uuid.UUID, error) {
	return []uuid.UUID{r.secretary}, nil
}

func (r *singleStudentRepo) ListProgramProfessorUserIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *singleStudentRepo) ExistsAlertSince(context.Context, uuid.UUID, string, time.Time) (bool, error) {
	return false, nil
}

func (r *singleStudentRepo) CreateAlert(_ context.Context, row *model.RiskAlertModel) error {
	row.RiskAlertID = uuid.New()
	r.alerts = append(r.alerts, *row)
	return nil
}

func (r *singleStudentRepo) FindAlert(context.Context, uuid.UUID) (*model.RiskAlertModel, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *singleStudentRepo) SaveAlert(context.Context, *model.RiskAlertModel) error { return nil }

func (r *singleStudentRepo) ListAlerts(context.Context, model.RiskAlertFilter) ([]model.RiskAlertModel, int64, error) {
	return r.alerts, int64(len(r.alerts)), nil
}

type downSender struct{}

func (downSender) Send(context.Context, uuid.UUID, string, string, notifModel.Severity, *string) error {
	return errors.New("push gateway unavailable")
}

func TestCheck_DeliveryFailureUsesMultiStatusEnvelope(t *testing.T) {
	repo := &singleStudentRepo{
		student: academicModel.StudentModel{
			StudentID:        uuid.New(),
			StudentUserID:    uuid.New(),
			StudentFacultyID: uuid.New(),
			StudentProgramID: uuid.New(),
			StudentFirstName: "Ion",
			StudentLastName:  "Marin",
		},
		score:     90,
		absences:  7,
		secretary: uuid.New(),
	}
	svc := service.NewAlertService(repo, downSender{}, clock.NewFixed(time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)), nil)
	ctrl := NewRiskAlertController(svc, zap.NewNop())

	app := fiber.New()
	app.Post("/risk-alerts/check/:student_id", ctrl.Check)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/risk-alerts/check/"+repo.student.StudentID.String(), nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusMultiStatus, resp.StatusCode)

	var body struct {
		Success   bool   `json:"success"`
		ErrorCode string `json:"error_code"`
		Data      []struct {
			AlertType string `json:"alert_type"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "PARTIAL_FAILURE", body.ErrorCode)
	require.Len(t, body.Data, 2)
	assert.Equal(t, model.AlertTypeRiskScoreCritical, body.Data[0].AlertType)
	assert.Equal(t, model.AlertTypeConsecutiveAbsences, body.Data[1].AlertType)
}
