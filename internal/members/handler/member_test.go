package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

type mockMemberService struct {
	createFunc  func(ctx context.Context, member *model.Member) error
	getByIDFunc func(ctx context.Context, id string) (*model.Member, error)
	getAllFunc  func(ctx context.Context) ([]*model.Member, error)
	updateFunc  func(ctx context.Context, id string, update *model.MemberUpdate) (*model.Member, error)
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockMemberService) Create(ctx context.Context, member *model.Member) error {
	return m.createFunc(ctx, member)
}

func (m *mockMemberService) GetByID(ctx context.Context, id string) (*model.Member, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockMemberService) GetAll(ctx context.Context) ([]*model.Member, error) {
	return m.getAllFunc(ctx)
}

func (m *mockMemberService) Update(ctx context.Context, id string, update *model.MemberUpdate) (*model.Member, error) {
	return m.updateFunc(ctx, id, update)
}

func (m *mockMemberService) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func do(t *testing.T, svc *mockMemberService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := httprouter.New()
	NewMemberHandler(svc, logger.Discard()).RegisterRoutes(router)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMemberHandler_Create(t *testing.T) {
	svc := &mockMemberService{
		createFunc: func(_ context.Context, member *model.Member) error {
			member.ID = "65f000000000000000000b01"
			return nil
		},
	}

	rec := do(t, svc, http.MethodPost, "/members", `{"name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data model.Member `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "65f000000000000000000b01", body.Data.ID)
}

func TestMemberHandler_CreateBadBody(t *testing.T) {
	rec := do(t, &mockMemberService{}, http.MethodPost, "/members", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemberHandler_GetByID(t *testing.T) {
	svc := &mockMemberService{
		getByIDFunc: func(_ context.Context, id string) (*model.Member, error) {
			if id == "65f000000000000000000b01" {
				return &model.Member{ID: id, Name: "Alice"}, nil
			}
			return nil, apperrors.NotFoundWithID("Member", id)
		},
	}

	rec := do(t, svc, http.MethodGet, "/members/65f000000000000000000b01", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alice")

	rec = do(t, svc, http.MethodGet, "/members/65f000000000000000000b02", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Member not found")
}

func TestMemberHandler_GetAllEmptyIsArray(t *testing.T) {
	svc := &mockMemberService{
		getAllFunc: func(context.Context) ([]*model.Member, error) { return []*model.Member{}, nil },
	}

	rec := do(t, svc, http.MethodGet, "/members", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestMemberHandler_UpdateAndDelete(t *testing.T) {
	svc := &mockMemberService{
		updateFunc: func(_ context.Context, id string, update *model.MemberUpdate) (*model.Member, error) {
			return &model.Member{ID: id, Name: update.Name}, nil
		},
		deleteFunc: func(context.Context, string) error { return nil },
	}

	rec := do(t, svc, http.MethodPut, "/members/65f000000000000000000b01", `{"name":"Alicia"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alicia")

	rec = do(t, svc, http.MethodDelete, "/members/65f000000000000000000b01", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Member deleted")
}
