package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservly/booking-api/internal/model"
	clinicService "github.com/reservly/booking-api/internal/service/clinic"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/logger"
	"github.com/reservly/booking-api/pkg/validator"
)

type fakeClinicRepo struct {
	clinics map[uuid.UUID]*model.Clinic
}

func (f *fakeClinicRepo) Create(ctx context.Context, c *model.Clinic) error {
	f.clinics[c.ID] = c
	return nil
}

func (f *fakeClinicRepo) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	if c, ok := f.clinics[id]; ok {
		return c, nil
	}
	return nil, errors.NotFound("clinic", nil)
}

func (f *fakeClinicRepo) Update(ctx context.Context, c *model.Clinic) error {
	f.clinics[c.ID] = c
	return nil
}

func (f *fakeClinicRepo) List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	var out []*model.Clinic
	for _, c := range f.clinics {
		out = append(out, c)
	}
	return out, nil
}

type fakeStaffRepo struct{}

func (fakeStaffRepo) Create(ctx context.Context, s *model.Staff) error  { return nil }
func (fakeStaffRepo) Update(ctx context.Context, s *model.Staff) error  { return nil }
func (fakeStaffRepo) Delete(ctx context.Context, c, id uuid.UUID) error { return nil }
func (fakeStaffRepo) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Staff, error) {
	return nil, errors.NotFound("staff", nil)
}
func (fakeStaffRepo) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	return nil, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeClinicRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &fakeClinicRepo{clinics: map[uuid.UUID]*model.Clinic{}}
	svc := clinicService.NewService(repo, fakeStaffRepo{}, logger.Nop())
	h := NewHandler(svc, validator.New())

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine, repo
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestCreateClinicEndpoint(t *testing.T) {
	engine, repo := newTestRouter(t)

	rec, env := doJSON(t, engine, http.MethodPost, "/api/v1/clinics", gin.H{
		"name":     "Harbor Dental",
		"timezone": "America/New_York",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	var clinic model.Clinic
	require.NoError(t, json.Unmarshal(env.Data, &clinic))
	assert.Equal(t, model.ClinicStatusPending, clinic.Status)
	assert.Contains(t, repo.clinics, clinic.ID)
}

func TestCreateClinicValidationFailure(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec, env := doJSON(t, engine, http.MethodPost, "/api/v1/clinics", gin.H{
		"location": "no name given",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusBadRequest, env.Error.Code)
}

func TestGetClinicNotFound(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec, env := doJSON(t, engine, http.MethodGet, "/api/v1/clinics/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestGetClinicBadID(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec, _ := doJSON(t, engine, http.MethodGet, "/api/v1/clinics/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateClinicStatusTransition(t *testing.T) {
	engine, repo := newTestRouter(t)

	id := uuid.New()
	repo.clinics[id] = &model.Clinic{
		Base:   model.Base{ID: id},
		Name:   "Harbor Dental",
		Status: model.ClinicStatusPending,
	}

	rec, env := doJSON(t, engine, http.MethodPut, "/api/v1/clinics/"+id.String(), gin.H{
		"status": "active",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	assert.Equal(t, model.ClinicStatusActive, repo.clinics[id].Status)
}
