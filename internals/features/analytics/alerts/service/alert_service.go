// internals/features/analytics/alerts/service/alert_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/alerts/model"
	riskModel "kampusku_backend/internals/features/analytics/risk/model"
	notifModel "kampusku_backend/internals/features/home/notifications/model"
	"kampusku_backend/internals/helpers/clock"
	"kampusku_backend/internals/helpers/logger"
	"kampusku_backend/internals/metrics"
)

const (
	DuplicateWindow = 7 * 24 * time.Hour

	CriticalScoreAbove   = 80
	HighScoreAbove       = 60
	AbsenceRunAlertAbove = 5
)

var (
	ErrAlertNotFound   = errors.New("risk alert not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrDispatchFailed  = errors.New("stakeholder notification failed")
)

// Repository lookups return gorm.ErrRecordNotFound when the row is missing.
type Repository interface {
	FindStudent(ctx context.Context, studentID uuid.UUID) (*academicModel.StudentModel, error)
	FindFaculty(ctx context.Context, facultyID uuid.UUID) (*academicModel.FacultyModel, error)
	FindRiskScore(ctx context.Context, studentID uuid.UUID) (*riskModel.StudentRiskScoreModel, error)
	MaxConsecutiveAbsences(ctx context.Context, studentID uuid.UUID) (int, error)

	ListFacultyUserIDsByRole(ctx context.Context, facultyID uuid.UUID, role string) ([]uuid.UUID, error)
	ListProgramProfessorUserIDs(ctx context.Context, programID uuid.UUID) ([]uuid.UUID, error)

	ExistsAlertSince(ctx context.Context, studentID uuid.UUID, alertType string, since time.Time) (bool, error)
	CreateAlert(ctx context.Context, row *model.RiskAlertModel) error
	FindAlert(ctx context.Context, alertID uuid.UUID) (*model.RiskAlertModel, error)
	SaveAlert(ctx context.Context, row *model.RiskAlertModel) error
	ListAlerts(ctx context.Context, f model.RiskAlertFilter) ([]model.RiskAlertModel, int64, error)
}

// Sender delivers one notification to one user.
type Sender interface {
	Send(ctx context.Context, userID uuid.UUID, title, message string, severity notifModel.Severity, link *string) error
}

type AlertService struct {
	repo   Repository
	sender Sender
	clock  clock.Clock
	log    *zap.Logger
}

func NewAlertService(repo Repository, sender Sender, clk clock.Clock, log *zap.Logger) *AlertService {
	return &AlertService{
		repo:   repo,
		sender: sender,
		clock:  clock.OrSystem(clk),
		log:    logger.OrNop(log).Named("alerts"),
	}
}

type CreateAlertInput struct {
	StudentID uuid.UUID
	Level     riskModel.RiskLevel
	Type      string
	Message   string
}

// CheckAndCreateAlerts raises score and absence alerts for the student.
// An alert type already raised for the student in the last DuplicateWindow
// is skipped. A failed delivery does not stop the remaining rules: every
// stored alert is returned and delivery failures come back joined under
// ErrDispatchFailed.
func (s *AlertService) CheckAndCreateAlerts(ctx context.Context, studentID uuid.UUID) ([]model.RiskAlertModel, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var candidates []CreateAlertInput

	score, err := s.repo.FindRiskScore(ctx, studentID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		score = nil
	case err != nil:
		return nil, fmt.Errorf("load risk score: %w", err)
	}
	if score != nil {
		name := student.FullName()
		if score.StudentRiskScoreOverall > CriticalScoreAbove {
			candidates = append(candidates, CreateAlertInput{
				StudentID: studentID,
				Level:     riskModel.RiskLevelCritical,
				Type:      model.AlertTypeRiskScoreCritical,
				Message: fmt.Sprintf("%s has a critical risk score of %d. Immediate intervention is required.",
					name, score.StudentRiskScoreOverall),
			})
		} else if score.StudentRiskScoreOverall > HighScoreAbove {
			candidates = append(candidates, CreateAlertInput{
				StudentID: studentID,
				Level:     riskModel.RiskLevelHigh,
				Type:      model.AlertTypeRiskScoreHigh,
				Message: fmt.Sprintf("%s has a high risk score of %d. Close monitoring is recommended.",
					name, score.StudentRiskScoreOverall),
			})
		}
	}

	absences, err := s.repo.MaxConsecutiveAbsences(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load absence stats: %w", err)
	}
	if absences > AbsenceRunAlertAbove {
		candidates = append(candidates, CreateAlertInput{
			StudentID: studentID,
			Level:     riskModel.RiskLevelHigh,
			Type:      model.AlertTypeConsecutiveAbsences,
			Message:   fmt.Sprintf("%s has %d consecutive absences.", student.FullName(), absences),
		})
	}

	since := s.clock.Now().Add(-DuplicateWindow)
	var (
		created []model.RiskAlertModel
		errs    []error
	)
	for _, in := range candidates {
		exists, err := s.repo.ExistsAlertSince(ctx, studentID, in.Type, since)
		if err != nil {
			errs = append(errs, fmt.Errorf("check recent %s alert: %w", in.Type, err))
			return created, errors.Join(errs...)
		}
		if exists {
			metrics.AlertsSuppressed.WithLabelValues(in.Type).Inc()
			s.log.Debug("[ALERT] duplicate suppressed",
				zap.String("student_id", studentID.String()),
				zap.String("type", in.Type),
			)
			continue
		}

		alert, err := s.create(ctx, student, in)
		if alert != nil {
			created = append(created, *alert)
		}
		if err != nil {
			errs = append(errs, err)
			// a stored alert whose delivery failed does not stop the other rules
			if alert != nil {
				continue
			}
			return created, errors.Join(errs...)
		}
	}
	return created, errors.Join(errs...)
}

// CreateAlert stores a manually raised alert and notifies its stakeholders.
// On ErrDispatchFailed the stored alert is still returned.
func (s *AlertService) CreateAlert(ctx context.Context, in CreateAlertInput) (*model.RiskAlertModel, error) {
	if !in.Level.Valid() {
		return nil, fmt.Errorf("invalid risk level %q", in.Level)
	}
	student, err := s.findStudent(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, student, in)
}

func (s *AlertService) create(ctx context.Context, student *academicModel.StudentModel, in CreateAlertInput) (*model.RiskAlertModel, error) {
	now := s.clock.Now()
	row := &model.RiskAlertModel{
		RiskAlertStudentID: student.StudentID,
		RiskAlertLevel:     in.Level,
		RiskAlertType:      in.Type,
		RiskAlertMessage:   in.Message,
		RiskAlertCreatedAt: now,
		RiskAlertUpdatedAt: now,
	}
	if err := s.repo.CreateAlert(ctx, row); err != nil {
		return nil, fmt.Errorf("save %s alert: %w", in.Type, err)
	}

	metrics.AlertsCreated.WithLabelValues(row.RiskAlertType, string(row.RiskAlertLevel)).Inc()
	s.log.Info("[ALERT] created",
		zap.String("alert_id", row.RiskAlertID.String()),
		zap.String("student_id", student.StudentID.String()),
		zap.String("type", row.RiskAlertType),
		zap.String("level", string(row.RiskAlertLevel)),
	)

	if err := s.notify(ctx, row, student); err != nil {
		return row, err
	}
	return row, nil
}

// ResolveStakeholders returns the deduplicated user ids to notify for alert.
func (s *AlertService) ResolveStakeholders(ctx context.Context, alert *model.RiskAlertModel, student *academicModel.StudentModel) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	secretariat, err := s.repo.ListFacultyUserIDsByRole(ctx, student.StudentFacultyID, academicModel.ProfessorRoleSecretary)
	if err != nil {
		return nil, fmt.Errorf("load secretariat: %w", err)
	}
	ids = append(ids, secretariat...)

	level := alert.RiskAlertLevel
	if level == riskModel.RiskLevelHigh || level == riskModel.RiskLevelCritical {
		faculty, err := s.repo.FindFaculty(ctx, student.StudentFacultyID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.log.Warn("[ALERT] faculty not found, dean skipped", zap.String("faculty_id", student.StudentFacultyID.String()))
		case err != nil:
			return nil, fmt.Errorf("load faculty: %w", err)
		case faculty.FacultyDeanUserID != nil:
			ids = append(ids, *faculty.FacultyDeanUserID)
		}
	}

	if level == riskModel.RiskLevelCritical {
		ids = append(ids, student.StudentUserID)
	}

	if alert.RiskAlertType == model.AlertTypeConsecutiveAbsences {
		profs, err := s.repo.ListProgramProfessorUserIDs(ctx, student.StudentProgramID)
		if err != nil {
			return nil, fmt.Errorf("load program professors: %w", err)
		}
		ids = append(ids, profs...)
	}

	return dedupe(ids), nil
}

// NotifyStakeholders sends the alert to every stakeholder. Every recipient is
// attempted; failures are returned joined under ErrDispatchFailed.
func (s *AlertService) NotifyStakeholders(ctx context.Context, alertID uuid.UUID) error {
	alert, err := s.findAlert(ctx, alertID)
	if err != nil {
		return err
	}
	student, err := s.findStudent(ctx, alert.RiskAlertStudentID)
	if err != nil {
		return err
	}
	return s.notify(ctx, alert, student)
}

func (s *AlertService) notify(ctx context.Context, alert *model.RiskAlertModel, student *academicModel.StudentModel) error {
	recipients, err := s.ResolveStakeholders(ctx, alert, student)
	if err != nil {
		s.log.Error("[ALERT] stakeholder resolution failed", zap.String("alert_id", alert.RiskAlertID.String()), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	title := "Student risk alert: " + student.FullName()
	severity := notifModel.SeverityWarning
	if alert.RiskAlertLevel == riskModel.RiskLevelCritical {
		severity = notifModel.SeverityError
	}
	link := AlertLink(student.StudentID)

	var errs []error
	for _, uid := range recipients {
		if err := s.sender.Send(ctx, uid, title, alert.RiskAlertMessage, severity, &link); err != nil {
			metrics.NotificationsDispatched.WithLabelValues("failed").Inc()
			s.log.Error("[ALERT] notification failed",
				zap.String("alert_id", alert.RiskAlertID.String()),
				zap.String("user_id", uid.String()),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		metrics.NotificationsDispatched.WithLabelValues("sent").Inc()
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: alert %s: %w", ErrDispatchFailed, alert.RiskAlertID, errors.Join(errs...))
	}
	s.log.Info("[ALERT] stakeholders notified",
		zap.String("alert_id", alert.RiskAlertID.String()),
		zap.Int("recipients", len(recipients)),
	)
	return nil
}

// Acknowledge marks the alert as seen by userID. Acknowledging again
// overwrites who and when.
func (s *AlertService) Acknowledge(ctx context.Context, alertID, userID uuid.UUID) (*model.RiskAlertModel, error) {
	alert, err := s.findAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	alert.RiskAlertIsAcknowledged = true
	alert.RiskAlertAcknowledgedBy = &userID
	alert.RiskAlertAcknowledgedAt = &now
	alert.RiskAlertUpdatedAt = now

	if err := s.repo.SaveAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("save acknowledgement: %w", err)
	}
	return alert, nil
}

func (s *AlertService) TrackIntervention(ctx context.Context, alertID uuid.UUID, notes, status string) (*model.RiskAlertModel, error) {
	alert, err := s.findAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	alert.RiskAlertInterventionNotes = &notes
	alert.RiskAlertInterventionStatus = &status
	alert.RiskAlertUpdatedAt = s.clock.Now()

	if err := s.repo.SaveAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("save intervention: %w", err)
	}
	return alert, nil
}

func (s *AlertService) Get(ctx context.Context, alertID uuid.UUID) (*model.RiskAlertModel, error) {
	return s.findAlert(ctx, alertID)
}

func (s *AlertService) List(ctx context.Context, f model.RiskAlertFilter) ([]model.RiskAlertModel, int64, error) {
	return s.repo.ListAlerts(ctx, f)
}

func AlertLink(studentID uuid.UUID) string {
	return "/students/" + studentID.String() + "/alerts"
}

func (s *AlertService) findAlert(ctx context.Context, alertID uuid.UUID) (*model.RiskAlertModel, error) {
	alert, err := s.repo.FindAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("[ALERT] alert not found", zap.String("alert_id", alertID.String()))
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("load alert: %w", err)
	}
	return alert, nil
}

func (s *AlertService) findStudent(ctx context.Context, studentID uuid.UUID) (*academicModel.StudentModel, error) {
	student, err := s.repo.FindStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("[ALERT] student not found", zap.String("student_id", studentID.String()))
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("load student: %w", err)
	}
	return student, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
