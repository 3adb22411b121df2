package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	academicModel "kampusku_backend/internals/features/academics/model"
	"kampusku_backend/internals/features/analytics/alerts/model"
	riskModel "kampusku_backend/internals/features/analytics/risk/model"
	notifModel "kampusku_backend/internals/features/home/notifications/model"
	"kampusku_backend/internals/helpers/clock"
)

type memRepo struct {
	students     map[uuid.UUID]academicModel.StudentModel
	faculties    map[uuid.UUID]academicModel.FacultyModel
	scores       map[uuid.UUID]int
	absenceRuns  map[uuid.UUID]int
	secretaries  map[uuid.UUID][]uuid.UUID
	programProfs map[uuid.UUID][]uuid.UUID
	alerts       []model.RiskAlertModel
}

func newMemRepo() *memRepo {
	return &memRepo{
		students:     map[uuid.UUID]academicModel.StudentModel{},
		faculties:    map[uuid.UUID]academicModel.FacultyModel{},
		scores:       map[uuid.UUID]int{},
		absenceRuns:  map[uuid.UUID]int{},
		secretaries:  map[uuid.UUID][]uuid.UUID{},
		programProfs: map[uuid.UUID][]uuid.UUID{},
	}
}

func (r *memRepo) FindStudent(_ context.Context, id uuid.UUID) (*academicModel.StudentModel, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *memRepo) FindFaculty(_ context.Context, id uuid.UUID) (*academicModel.FacultyModel, error) {
	f, ok := r.faculties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &f, nil
}

func (r *memRepo) FindRiskScore(_ context.Context, id uuid.UUID) (*riskModel.StudentRiskScoreModel, error) {
	score, ok := r.scores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &riskModel.StudentRiskScoreModel{StudentRiskScoreStudentID: id, StudentRiskScoreOverall: score}, nil
}

func (r *memRepo) MaxConsecutiveAbsences(_ context.Context, id uuid.UUID) (int, error) {
	return r.absenceRuns[id], nil
}

func (r *memRepo) ListFacultyUserIDsByRole(_ context.Context, facultyID uuid.UUID, role string) ([]uuid.UUID, error) {
	if role != academicModel.ProfessorRoleSecretary {
		return nil, nil
	}
	return r.secretaries[facultyID], nil
}

func (r *memRepo) ListProgramProfessorUserIDs(_ context.Context, programID uuid.UUID) ([]uuid.UUID, error) {
	return r.programProfs[programID], nil
}

func (r *memRepo) ExistsAlertSince(_ context.Context, studentID uuid.UUID, alertType string, since time.Time) (bool, error) {
	for _, a := range r.alerts {
		if a.RiskAlertStudentID == studentID && a.RiskAlertType == alertType && !a.RiskAlertCreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) CreateAlert(_ context.Context, row *model.RiskAlertModel) error {
	row.RiskAlertID = uuid.New()
	r.alerts = append(r.alerts, *row)
	return nil
}

func (r *memRepo) FindAlert(_ context.Context, id uuid.UUID) (*model.RiskAlertModel, error) {
	for _, a := range r.alerts {
		if a.RiskAlertID == id {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) SaveAlert(_ context.Context, row *model.RiskAlertModel) error {
	for i := range r.alerts {
		if r.alerts[i].RiskAlertID == row.RiskAlertID {
			r.alerts[i] = *row
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memRepo) ListAlerts(context.Context, model.RiskAlertFilter) ([]model.RiskAlertModel, int64, error) {
	return r.alerts, int64(len(r.alerts)), nil
}

type sent struct {
	userID   uuid.UUID
	title    string
	message  string
	severity notifModel.Severity
	link     string
}

type fakeSender struct {
	sent   []sent
	failOn map[uuid.UUID]bool
}

func (f *fakeSender) Send(_ context.Context, userID uuid.UUID, title, message string, severity notifModel.Severity, link *string) error {
	if f.failOn[userID] {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, sent{userID: userID, title: title, message: message, severity: severity, link: *link})
	return nil
}

func (f *fakeSender) recipients() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.userID)
	}
	return out
}

var now = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *memRepo
	sender    *fakeSender
	clk       *clock.Fixed
	svc       *AlertService
	student   academicModel.StudentModel
	dean      uuid.UUID
	secretary uuid.UUID
	professor uuid.UUID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newMemRepo(),
		sender:    &fakeSender{failOn: map[uuid.UUID]bool{}},
		clk:       clock.NewFixed(now),
		dean:      uuid.New(),
		secretary: uuid.New(),
		professor: uuid.New(),
	}

	facultyID, programID := uuid.New(), uuid.New()
	f.student = academicModel.StudentModel{
		StudentID:        uuid.New(),
		StudentUserID:    uuid.New(),
		StudentFacultyID: facultyID,
		StudentProgramID: programID,
		StudentFirstName: "Ana",
		StudentLastName:  "Pop",
		StudentIsActive:  true,
	}
	f.repo.students[f.student.StudentID] = f.student
	f.repo.faculties[facultyID] = academicModel.FacultyModel{FacultyID: facultyID, FacultyDeanUserID: &f.dean}
	f.repo.secretaries[facultyID] = []uuid.UUID{f.secretary}
	f.repo.programProfs[programID] = []uuid.UUID{f.professor}

	f.svc = NewAlertService(f.repo, f.sender, f.clk, nil)
	return f
}

func alertTypes(rows []model.RiskAlertModel) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.RiskAlertType)
	}
	return out
}

func TestCheckAndCreateAlerts_Rules(t *testing.T) {
	tests := []struct {
		name     string
		score    *int
		absences int
		want     []string
	}{
		{name: "no score no absences", want: []string{}},
		{name: "score exactly 60", score: ptr(60), want: []string{}},
		{name: "score 61 is high", score: ptr(61), want: []string{model.AlertTypeRiskScoreHigh}},
		{name: "score 80 is still high", score: ptr(80), want: []string{model.AlertTypeRiskScoreHigh}},
		{name: "score 81 is critical only", score: ptr(81), want: []string{model.AlertTypeRiskScoreCritical}},
		{name: "five absences is not enough", absences: 5, want: []string{}},
		{name: "six absences without a score", absences: 6, want: []string{model.AlertTypeConsecutiveAbsences}},
		{
			name:     "score and absences together",
			score:    ptr(90),
			absences: 8,
			want:     []string{model.AlertTypeRiskScoreCritical, model.AlertTypeConsecutiveAbsences},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			if tt.score != nil {
				f.repo.scores[f.student.StudentID] = *tt.score
			}
			f.repo.absenceRuns[f.student.StudentID] = tt.absences

			created, err := f.svc.CheckAndCreateAlerts(context.Background(), f.student.StudentID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, alertTypes(created))
			assert.Len(t, f.repo.alerts, len(tt.want))
		})
	}
}

func TestCheckAndCreateAlerts_Levels(t *testing.T) {
	f := setup(t)
	f.repo.scores[f.student.StudentID] = 85
	f.repo.absenceRuns[f.student.StudentID] = 6

	created, err := f.svc.CheckAndCreateAlerts(context.Background(), f.student.StudentID)
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, riskModel.RiskLevelCritical, created[0].RiskAlertLevel)
	assert.Contains(t, created[0].RiskAlertMessage, "85")
	assert.Equal(t, riskModel.RiskLevelHigh, created[1].RiskAlertLevel)
	assert.Contains(t, created[1].RiskAlertMessage, "6 consecutive absences")
	assert.Equal(t, now, created[0].RiskAlertCreatedAt)
}

func TestCheckAndCreateAlerts_SuppressesWithinSevenDays(t *testing.T) {
	f := setup(t)
	f.repo.scores[f.student.StudentID] = 90
	f.repo.absenceRuns[f.student.StudentID] = 7
	ctx := context.Background()

	first, err := f.svc.CheckAndCreateAlerts(ctx, f.student.StudentID)
	require.NoError(t, err)
	require.Len(t, first, 2)

	f.clk.Advance(6 * 24 * time.Hour)
	second, err := f.svc.CheckAndCreateAlerts(ctx, f.student.StudentID)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, f.repo.alerts, 2)

	f.clk.Advance(24*time.Hour + time.Second)
	third, err := f.svc.CheckAndCreateAlerts(ctx, f.student.StudentID)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Len(t, f.repo.alerts, 4)
}

func TestCheckAndCreateAlerts_SuppressionIsPerType(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.repo.scores[f.student.StudentID] = 70

	_, err := f.svc.CheckAndCreateAlerts(ctx, f.student.StudentID)
	require.NoError(t, err)

	// score worsens the next day: a critical alert is a different type
	f.clk.Advance(24 * time.Hour)
	f.repo.scores[f.student.StudentID] = 95
	created, err := f.svc.CheckAndCreateAlerts(ctx, f.student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.AlertTypeRiskScoreCritical}, alertTypes(created))
}

func TestCheckAndCreateAlerts_UnknownStudent(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CheckAndCreateAlerts(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStakeholders_CriticalIncludesDeanAndStudent(t *testing.T) {
	f := setup(t)
	f.repo.scores[f.student.StudentID] = 95

	_, err := f.svc.CheckAndCreateAlerts(context.Background(), f.student.StudentID)
	require.NoError(t, err)

	got := f.sender.recipients()
	assert.ElementsMatch(t, []uuid.UUID{f.secretary, f.dean, f.student.StudentUserID}, got)
	assert.NotContains(t, got, f.professor)

	for _, s := range f.sender.sent {
		assert.Equal(t, notifModel.SeverityError, s.severity)
		assert.Contains(t, s.title, "Ana Pop")
		assert.Equal(t, "/students/"+f.student.StudentID.String()+"/alerts", s.link)
	}
}

func TestStakeholders_HighIncludesDeanNotStudent(t *testing.T) {
	f := setup(t)
	f.repo.scores[f.student.StudentID] = 65

	_, err := f.svc.CheckAndCreateAlerts(context.Background(), f.student.StudentID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{f.secretary, f.dean}, f.sender.recipients())
	assert.Equal(t, notifModel.SeverityWarning, f.sender.sent[0].severity)
}

func TestStakeholders_AbsencesIncludeProgramProfessors(t *testing.T) {
	f := setup(t)
	f.repo.absenceRuns[f.student.StudentID] = 6

	_, err := f.svc.CheckAndCreateAlerts(context.Background(), f.student.StudentID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{f.secretary, f.dean, f.professor}, f.sender.recipients())
}

func TestStakeholders_MediumOnlySecretariat(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	alert, err := f.svc.CreateAlert(ctx, CreateAlertInput{
		StudentID: f.student.StudentID,
		Level:     riskModel.RiskLevelMedium,
		Type:      model.AlertTypeManual,
		Message:   "Watch this one",
	})
	require.NoError(t, err)

	ids, err := f.svc.ResolveStakeholders(ctx, alert, &f.student)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.secretary}, ids)
}

func TestStakeholders_Deduplicated(t *testing.T) {
	f := setup(t)
	// the dean also teaches in the program and sits in the secretariat
	f.repo.secretaries[f.student.StudentFacultyID] = []uuid.UUID{f.secretary, f.dean}
	f.repo.programProfs[f.student.StudentProgramID] = []uuid.UUID{f.professor, f.dean, f.professor}

	ids, err := f.svc.ResolveStakeholders(context.Background(), &model.RiskAlertModel{
		RiskAlertLevel: riskModel.RiskLevelCritical,
		RiskAlertType:  model.AlertTypeConsecutiveAbsences,
	}, &f.student)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.secretary, f.dean, f.student.StudentUserID, f.professor}, ids)
}

func TestStakeholders_FacultyWithoutDean(t *testing.T) {
	f := setup(t)
	fac := f.repo.faculties[f.student.StudentFacultyID]
	fac.FacultyDeanUserID = nil
	f.repo.faculties[f.student.StudentFacultyID] = fac

	ids, err := f.svc.ResolveStakeholders(context.Background(), &model.RiskAlertModel{
		RiskAlertLevel: riskModel.RiskLevelHigh,
		RiskAlertType:  model.AlertTypeRiskScoreHigh,
	}, &f.student)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.secretary}, ids)
}

func TestNotify_FailureIsReturnedAfterTryingEveryone(t *testing.T) {
	f := setup(t)
	f.repo.scores[f.student.StudentID] = 95
	f.sender.failOn[f.dean] = true

	created, err := f.svc.CheckAndCreateAlerts(context.Background(), f.student.StudentID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDispatchFailed)

	// the alert exists even though the dean was not told
	assert.Len(t, created, 1)
	assert.Len(t, f.repo.alerts, 1)
	assert.ElementsMatch(t, []uuid.UUID{f.secretary, f.student.StudentUserID}, f.sender.recipients())
}

func TestCheckAndCreateAlerts_FailedDeliveryKeepsLaterRules(t *testing.T) {
	f := setup(t)
	f.repo.scores[f.student.StudentID] = 90
	f.repo.absenceRuns[f.student.StudentID] = 7
	f.sender.failOn[f.dean] = true

	created, err := f.svc.CheckAndCreateAlerts(context.Background(), f.student.StudentID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDispatchFailed)

	assert.Equal(t, []string{model.AlertTypeRiskScoreCritical, model.AlertTypeConsecutiveAbsences}, alertTypes(created))
	assert.Len(t, f.repo.alerts, 2)
	// the absence alert still reached the program professor
	assert.Contains(t, f.sender.recipients(), f.professor)

	// nothing is left over for the next run
	again, err := f.svc.CheckAndCreateAlerts(context.Background(), f.student.StudentID)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestCreateAlert_InvalidLevel(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CreateAlert(context.Background(), CreateAlertInput{
		StudentID: f.student.StudentID,
		Level:     riskModel.RiskLevel("severe"),
		Message:   "x",
	})
	assert.Error(t, err)
	assert.Empty(t, f.repo.alerts)
}

func TestAcknowledge_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alert, err := f.svc.CreateAlert(ctx, CreateAlertInput{
		StudentID: f.student.StudentID,
		Level:     riskModel.RiskLevelHigh,
		Type:      model.AlertTypeManual,
		Message:   "Missed midterm",
	})
	require.NoError(t, err)

	first := uuid.New()
	got, err := f.svc.Acknowledge(ctx, alert.RiskAlertID, first)
	require.NoError(t, err)
	assert.True(t, got.RiskAlertIsAcknowledged)
	assert.Equal(t, first, *got.RiskAlertAcknowledgedBy)
	assert.Equal(t, now, *got.RiskAlertAcknowledgedAt)

	f.clk.Advance(time.Hour)
	second := uuid.New()
	got, err = f.svc.Acknowledge(ctx, alert.RiskAlertID, second)
	require.NoError(t, err)
	assert.True(t, got.RiskAlertIsAcknowledged)
	assert.Equal(t, second, *got.RiskAlertAcknowledgedBy)
	assert.Equal(t, now.Add(time.Hour), *got.RiskAlertAcknowledgedAt)
}

func TestAcknowledge_NotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Acknowledge(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestTrackIntervention_KeepsAcknowledgement(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alert, err := f.svc.CreateAlert(ctx, CreateAlertInput{
		StudentID: f.student.StudentID,
		Level:     riskModel.RiskLevelMedium,
		Type:      model.AlertTypeManual,
		Message:   "Low quiz scores",
	})
	require.NoError(t, err)

	got, err := f.svc.TrackIntervention(ctx, alert.RiskAlertID, "Called the student", "in_progress")
	require.NoError(t, err)
	assert.False(t, got.RiskAlertIsAcknowledged)
	assert.Equal(t, "in_progress", *got.RiskAlertInterventionStatus)

	_, err = f.svc.Acknowledge(ctx, alert.RiskAlertID, uuid.New())
	require.NoError(t, err)

	got, err = f.svc.TrackIntervention(ctx, alert.RiskAlertID, "Tutor assigned", "completed")
	require.NoError(t, err)
	assert.True(t, got.RiskAlertIsAcknowledged)
	assert.Equal(t, "Tutor assigned", *got.RiskAlertInterventionNotes)
	assert.Equal(t, "completed", *got.RiskAlertInterventionStatus)
}

func TestNotifyStakeholders_ByID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alert, err := f.svc.CreateAlert(ctx, CreateAlertInput{
		StudentID: f.student.StudentID,
		Level:     riskModel.RiskLevelLow,
		Type:      model.AlertTypeManual,
		Message:   "FYI",
	})
	require.NoError(t, err)
	f.sender.sent = nil

	require.NoError(t, f.svc.NotifyStakeholders(ctx, alert.RiskAlertID))
	assert.Equal(t, []uuid.UUID{f.secretary}, f.sender.recipients())

	assert.ErrorIs(t, f.svc.NotifyStakeholders(ctx, uuid.New()), ErrAlertNotFound)
}

func ptr(v int) *int { return &v }
