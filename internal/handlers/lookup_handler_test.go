package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/testutil"
	"jobportal_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type lookupEnv struct {
	router     *gin.Engine
	adminToken string
	userToken  string
}

func newLookupEnv(t *testing.T) *lookupEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	tokens := auth.NewTokenManager("handler-test-secret-handler-test-secret", time.Hour)
	security := services.NewSecurityService(repositories.NewSQLViolationRepository(db))

	base := NewBaseHandler(validator.New(), Guards{
		Auth:      middleware.AuthMiddleware(tokens, security, nil),
		Optional:  middleware.OptionalAuthMiddleware(tokens),
		RateLimit: func(c *gin.Context) { c.Next() },
		Roles: func(roles ...models.UserRole) gin.HandlerFunc {
			return middleware.RequireRoles(security, roles...)
		},
	})

	sectors := services.NewLookupService("sector", repositories.NewLookupRepository[models.Sector](), services.SectorHooks())
	provinces := services.NewLookupService("province", repositories.NewLookupRepository[models.Province]("Country"), services.ProvinceHooks())
	cities := services.NewLookupService("city", repositories.NewLookupRepository[models.City]("Province"), services.CityHooks())

	router := gin.New()
	router.Use(middleware.DBMiddleware(db))
	api := router.Group("/api/v1")
	NewLookupHandler[models.Sector](base, sectors, "sector", "Sector", "Sectors").RegisterRoutes(api)
	NewLookupHandler[models.Province](base, provinces, "province", "Province", "Provinces").RegisterRoutes(api)
	NewLookupHandler[models.City](base, cities, "city", "City", "Cities").
		WithParent("fetchCitiesByProvince", "province_id", func(db *gorm.DB, slug string) (string, error) {
			p, err := provinces.GetBySlug(db, slug)
			if err != nil {
				return "", err
			}
			return p.ID, nil
		}).
		RegisterRoutes(api)

	adminToken, err := tokens.Generate("00000000-0000-0000-0000-000000000001", auth.RoleAdmin)
	require.NoError(t, err)
	userToken, err := tokens.Generate("00000000-0000-0000-0000-000000000002", auth.RoleApplicant)
	require.NoError(t, err)

	return &lookupEnv{router: router, adminToken: adminToken, userToken: userToken}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Items   json.RawMessage `json:"items"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Pages   int             `json:"pages"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (e *lookupEnv) do(t *testing.T, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func decodeLookup(t *testing.T, raw json.RawMessage) models.Lookup {
	t.Helper()
	var l models.Lookup
	require.NoError(t, json.Unmarshal(raw, &l))
	return l
}

func TestLookupHandler_CreateAndSlugConflict(t *testing.T) {
	env := newLookupEnv(t)

	code, resp := env.do(t, http.MethodPost, "/api/v1/sector/addSector", env.adminToken,
		map[string]string{"name": "Information Technology"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "information-technology", decodeLookup(t, resp.Data).Slug)

	code, resp = env.do(t, http.MethodPost, "/api/v1/sector/addSector", env.adminToken,
		map[string]string{"name": "information technology"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "SLUG_TAKEN", resp.Error.Code)
}

func TestLookupHandler_AccessControl(t *testing.T) {
	env := newLookupEnv(t)
	body := map[string]string{"name": "Finance"}

	code, _ := env.do(t, http.MethodPost, "/api/v1/sector/addSector", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(t, http.MethodPost, "/api/v1/sector/addSector", env.userToken, body)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := env.do(t, http.MethodPost, "/api/v1/sector/addSector", env.adminToken, map[string]string{"name": "F"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
}

func TestLookupHandler_FetchUpdateDelete(t *testing.T) {
	env := newLookupEnv(t)

	_, resp := env.do(t, http.MethodPost, "/api/v1/sector/addSector", env.adminToken, map[string]string{"name": "Health Care"})
	created := decodeLookup(t, resp.Data)
	env.do(t, http.MethodPost, "/api/v1/sector/addSector", env.adminToken, map[string]string{"name": "Education"})

	code, resp := env.do(t, http.MethodGet, "/api/v1/sector/fetchSector/health-care", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created.ID, decodeLookup(t, resp.Data).ID)

	code, resp = env.do(t, http.MethodGet, "/api/v1/sector/fetchSector/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	code, resp = env.do(t, http.MethodPut, "/api/v1/sector/updateSector/"+created.ID, env.adminToken,
		map[string]string{"name": "Medicine"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "medicine", decodeLookup(t, resp.Data).Slug)

	code, _ = env.do(t, http.MethodPut, "/api/v1/sector/updateSector/"+created.ID, env.adminToken,
		map[string]string{"name": "Education"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodDelete, "/api/v1/sector/deleteSector/"+created.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodDelete, "/api/v1/sector/deleteSector/"+created.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLookupHandler_PaginationBoundaries(t *testing.T) {
	env := newLookupEnv(t)
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		code, _ := env.do(t, http.MethodPost, "/api/v1/sector/addSector", env.adminToken, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, code)
	}

	cases := []struct {
		query     string
		wantItems int
		wantPage  int
		wantLimit int
		wantPages int
	}{
		{"", 3, 1, 10, 1},
		{"?page=1&limit=2", 2, 1, 2, 2},
		{"?page=2&limit=2", 1, 2, 2, 2},
		{"?page=5&limit=2", 0, 5, 2, 2},
		{"?page=0&limit=0", 3, 1, 10, 1},
		{"?limit=1000", 3, 1, 100, 1},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			code, resp := env.do(t, http.MethodGet, "/api/v1/sector/fetchAllSectors"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, code)

			var items []models.Sector
			require.NoError(t, json.Unmarshal(resp.Items, &items))
			assert.Len(t, items, tc.wantItems)
			assert.EqualValues(t, 3, resp.Total)
			assert.Equal(t, tc.wantPage, resp.Page)
			assert.Equal(t, tc.wantLimit, resp.Limit)
			assert.Equal(t, tc.wantPages, resp.Pages)
		})
	}

	code, _ := env.do(t, http.MethodGet, "/api/v1/sector/fetchAllSectors?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLookupHandler_CitiesByProvince(t *testing.T) {
	env := newLookupEnv(t)

	_, resp := env.do(t, http.MethodPost, "/api/v1/province/addProvince", env.adminToken, map[string]string{"name": "Almaty Region"})
	province := decodeLookup(t, resp.Data)

	code, _ := env.do(t, http.MethodPost, "/api/v1/city/addCity", env.adminToken, map[string]string{"name": "Talgar"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/v1/city/addCity", env.adminToken,
		map[string]string{"name": "Talgar", "provinceId": province.ID})
	require.Equal(t, http.StatusCreated, code)

	code, resp = env.do(t, http.MethodGet, "/api/v1/city/fetchCitiesByProvince/almaty-region", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, resp.Total)

	code, _ = env.do(t, http.MethodGet, "/api/v1/city/fetchCitiesByProvince/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodDelete, "/api/v1/province/deleteProvince/"+province.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusConflict, code)
}
