package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/minyan/internal/model"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
	"github.com/Nixie-Tech-LLC/minyan/internal/storage"
)

const secret = "test-secret"

type fakeStorage struct{ saved []string }

func (f *fakeStorage) SaveFile(fh *multipart.FileHeader, filename string) (string, error) {
	if strings.HasSuffix(filename, ".exe") {
		return "", storage.ErrUnsupportedType
	}
	f.saved = append(f.saved, filename)
	return "/uploads/" + filename, nil
}

type fixture struct {
	router  *gin.Engine
	store   *db.MemStore
	storage *fakeStorage
	token   string
}

func setup(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemStore()
	userID, err := store.CreateUser("gabbai@example.com", "hash", nil)
	require.NoError(t, err)
	token, err := middleware.GenerateJWT(userID, secret)
	require.NoError(t, err)

	files := &fakeStorage{}
	svc := prayers.NewService(store, nil, time.UTC)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin", Auth: true, SecretKey: secret, Users: store},
		OverrideModule(store, svc),
		ClassModule(store, files),
	)
	return fixture{router: r, store: store, storage: files, token: token}
}

func (f fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRequiresToken(t *testing.T) {
	f := setup(t)
	f.token = "garbage"

	w := f.do(http.MethodGet, "/api/admin/overrides", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOverrideLifecycle(t *testing.T) {
	f := setup(t)

	note := "simcha"
	w := f.do(http.MethodPut, "/api/admin/overrides", packets.SetOverrideRequest{
		Week: "2030-05-08", Prayer: model.PrayerMincha, Time: "18:40", Note: &note,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved packets.OverrideResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "2030-05-05", saved.WeekStart, "stored against the week's sunday")
	assert.Equal(t, "18:40", saved.Time)

	w = f.do(http.MethodGet, "/api/admin/overrides?week=2030-05-10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []packets.OverrideResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = f.do(http.MethodDelete, "/api/admin/overrides/2030-05-05/mincha", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodDelete, "/api/admin/overrides/2030-05-05/mincha", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOverrideValidation(t *testing.T) {
	f := setup(t)

	cases := []packets.SetOverrideRequest{
		{Week: "2030-05-08", Prayer: "shacharit", Time: "07:00"},
		{Week: "2030-05-08", Prayer: model.PrayerArvit, Time: "7pm"},
		{Week: "next week", Prayer: model.PrayerArvit, Time: "19:30"},
	}
	for _, c := range cases {
		w := f.do(http.MethodPut, "/api/admin/overrides", c)
		assert.Equal(t, http.StatusBadRequest, w.Code, c)
	}

	w := f.do(http.MethodDelete, "/api/admin/overrides/2030-05-05/shacharit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassLifecycle(t *testing.T) {
	f := setup(t)

	weekday := 2
	w := f.do(http.MethodPost, "/api/admin/classes", packets.CreateClassRequest{
		Title: "Gemara", Teacher: "Rabbi Levi", Weekday: &weekday, StartTime: "20:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created packets.ClassResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "20:00", created.StartTime)

	later := "20:30"
	w = f.do(http.MethodPut, "/api/admin/classes/1", packets.UpdateClassRequest{StartTime: &later})
	require.Equal(t, http.StatusOK, w.Code)
	var updated packets.ClassResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "20:30", updated.StartTime)
	assert.Equal(t, "Gemara", updated.Title)

	bad := "late"
	w = f.do(http.MethodPut, "/api/admin/classes/1", packets.UpdateClassRequest{StartTime: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/admin/classes/42", packets.UpdateClassRequest{StartTime: &later})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodDelete, "/api/admin/classes/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodDelete, "/api/admin/classes/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (f fixture) upload(t *testing.T, path, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestUploadFlyer(t *testing.T) {
	f := setup(t)
	_, err := f.store.CreateClass(model.Class{Title: "Parsha", Weekday: 5, StartTime: "09:00"})
	require.NoError(t, err)

	w := f.upload(t, "/api/admin/classes/1/flyer", "parsha.pdf")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var class packets.ClassResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &class))
	require.NotNil(t, class.FlyerURL)
	assert.Equal(t, "/uploads/parsha.pdf", *class.FlyerURL)
	assert.Equal(t, []string{"parsha.pdf"}, f.storage.saved)
}

func TestUploadFlyerRejected(t *testing.T) {
	f := setup(t)
	_, err := f.store.CreateClass(model.Class{Title: "Parsha", Weekday: 5, StartTime: "09:00"})
	require.NoError(t, err)

	w := f.upload(t, "/api/admin/classes/1/flyer", "setup.exe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.storage.saved)

	w = f.upload(t, "/api/admin/classes/7/flyer", "parsha.pdf")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// brokenClasses fails class lookups the way a lost database connection would.
type brokenClasses struct {
	*db.MemStore
}

func (brokenClasses) GetClass(id int) (model.Class, error) {
	return model.Class{}, errors.New("connection reset")
}

func TestUploadFlyerStoreError(t *testing.T) {
	f := setup(t)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin", Auth: true, SecretKey: secret, Users: f.store},
		ClassModule(brokenClasses{f.store}, f.storage),
	)
	f.router = r

	w := f.upload(t, "/api/admin/classes/1/flyer", "parsha.pdf")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
