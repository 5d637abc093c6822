package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ladybird-ops/ladybird-backend/internal/app/repository"
	"github.com/ladybird-ops/ladybird-backend/internal/app/service"
	"github.com/ladybird-ops/ladybird-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStoreControllerTest(t *testing.T) (*StoreController, *gin.Engine) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	storeRepo := repository.NewStoreRepository(testDB)
	storeService := service.NewStoreService(storeRepo)
	storeController := NewStoreController(storeService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	return storeController, router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStoreController_CreateStore_Success(t *testing.T) {
	controller, router := setupStoreControllerTest(t)
	router.POST("/stores", controller.CreateStore)

	w := postJSON(t, router, "/stores", StoreRequest{
		Code:     "st001",
		Name:     "Austin Kitchen",
		Timezone: "America/Chicago",
		Emails:   []string{"ops@example.com"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "ST001", data["code"])
	assert.NotEmpty(t, data["id"])
}

func TestStoreController_CreateStore_MissingCode(t *testing.T) {
	controller, router := setupStoreControllerTest(t)
	router.POST("/stores", controller.CreateStore)

	w := postJSON(t, router, "/stores", StoreRequest{Name: "Austin Kitchen"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, false, response["success"])
	assert.Equal(t, "VALIDATION_REQUIRED", response["error"])
	assert.Equal(t, "code", response["field"])
}

func TestStoreController_CreateStore_DuplicateCode(t *testing.T) {
	controller, router := setupStoreControllerTest(t)
	router.POST("/stores", controller.CreateStore)

	w := postJSON(t, router, "/stores", StoreRequest{Code: "ST001", Name: "Austin Kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/stores", StoreRequest{Code: "ST001", Name: "Another Kitchen"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "STORE_CODE_EXISTS", response["error"])
}

func TestStoreController_GetStoreByID(t *testing.T) {
	controller, router := setupStoreControllerTest(t)
	router.POST("/stores", controller.CreateStore)
	router.GET("/stores/:id", controller.GetStoreByID)

	w := postJSON(t, router, "/stores", StoreRequest{Code: "ST001", Name: "Austin Kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["data"].(map[string]interface{})["id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/stores/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Unknown id
	req = httptest.NewRequest(http.MethodGet, "/stores/00000000-0000-0000-0000-000000000000", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "STORE_NOT_FOUND", response["error"])
}

func TestStoreController_ListStores(t *testing.T) {
	controller, router := setupStoreControllerTest(t)
	router.POST("/stores", controller.CreateStore)
	router.GET("/stores", controller.ListStores)

	require.Equal(t, http.StatusCreated,
		postJSON(t, router, "/stores", StoreRequest{Code: "ST001", Name: "Austin Kitchen"}).Code)
	require.Equal(t, http.StatusCreated,
		postJSON(t, router, "/stores", StoreRequest{Code: "ST002", Name: "Dallas Kitchen"}).Code)

	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])

	// Search filter
	req = httptest.NewRequest(http.MethodGet, "/stores?search=Dallas", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestStoreController_UpdateStore(t *testing.T) {
	controller, router := setupStoreControllerTest(t)
	router.POST("/stores", controller.CreateStore)
	router.PUT("/stores/:id", controller.UpdateStore)

	w := postJSON(t, router, "/stores", StoreRequest{Code: "ST001", Name: "Austin Kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["data"].(map[string]interface{})["id"].(string)

	newName := "Austin Central Kitchen"
	payload, err := json.Marshal(StoreUpdateRequest{Name: &newName})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/stores/"+id, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Austin Central Kitchen", data["name"])
	assert.Equal(t, "ST001", data["code"])
}

func TestStoreController_DeleteStore(t *testing.T) {
	controller, router := setupStoreControllerTest(t)
	router.POST("/stores", controller.CreateStore)
	router.DELETE("/stores/:id", controller.DeleteStore)

	w := postJSON(t, router, "/stores", StoreRequest{Code: "ST001", Name: "Austin Kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["data"].(map[string]interface{})["id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/stores/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/stores/"+id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
