package notes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readhub/internal/auth"
	"readhub/pkg/models"
)

func newTestServer(t *testing.T) (*Repo, *gin.Engine) {
	t.Helper()

	repo := newTestRepo(t)
	h := NewHandler(repo)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxClaimsKey, &auth.Claims{UserID: "u1", Username: "reader"})
	})
	h.RegisterRoutes(r.Group("/"))
	return repo, r
}

func TestCreate_RecordIDComesFromPath(t *testing.T) {
	repo, r := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, "/records/r1/notes", strings.NewReader(`{"rating":4,"text":"great pacing"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var note models.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &note))
	assert.Equal(t, "r1", note.RecordID)
	assert.Equal(t, "u1", note.UserID)
	require.NotNil(t, note.Rating)
	assert.Equal(t, 4, *note.Rating)

	stored, err := repo.ListByRecord(context.Background(), "u1", "r1", 10, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "great pacing", stored[0].Text)
}

func TestCreate_RejectsEmptyNote(t *testing.T) {
	_, r := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, "/records/r1/notes", strings.NewReader(`{"text":"  "}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
