package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
)

type users map[int]*model.User

func (u users) GetUserByID(id int) (*model.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("no such user")
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("shacharit")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "shacharit"))
	assert.False(t, CheckPassword(hash, "mincha"))
}

func TestJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "supersecret"

	r := gin.New()
	r.Use(JWTMiddleware(secret, users{7: {ID: 7, Email: "gabbai@example.com"}}))
	r.GET("/me", func(c *gin.Context) {
		u, ok := GetCurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": u.Email})
	})

	do := func(header string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w
	}

	token, err := GenerateJWT(7, secret)
	require.NoError(t, err)
	w := do("Bearer " + token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gabbai@example.com")

	assert.Equal(t, http.StatusUnauthorized, do("").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage").Code)

	other, err := GenerateJWT(7, "othersecret")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+other).Code)

	ghost, err := GenerateJWT(99, secret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+ghost).Code)
}

type fakeToken struct {
	done chan struct{}
	err  error
}

func (f *fakeToken) Wait() bool                     { <-f.done; return true }
func (f *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (f *fakeToken) Done() <-chan struct{}          { return f.done }
func (f *fakeToken) Error() error                   { return f.err }

type fakeBroker struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
	err      error
	block    bool
}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b.topic, b.qos, b.retained = topic, qos, retained
	b.payload, _ = payload.([]byte)
	tok := &fakeToken{done: make(chan struct{}), err: b.err}
	if !b.block {
		close(tok.done)
	}
	return tok
}

func TestBoardPublisher(t *testing.T) {
	broker := &fakeBroker{}
	pub := NewBoardPublisher(broker, "")

	board := prayers.Board{Day: prayers.DaySchedule{Date: "2030-05-08"}}
	require.NoError(t, pub.PublishPrayerTimes(context.Background(), board))

	assert.Equal(t, BoardTopic, broker.topic)
	assert.Equal(t, byte(1), broker.qos)
	assert.True(t, broker.retained)

	var msg struct {
		Type  string        `json:"type"`
		Board prayers.Board `json:"board"`
	}
	require.NoError(t, json.Unmarshal(broker.payload, &msg))
	assert.Equal(t, "prayer_times", msg.Type)
	assert.Equal(t, "2030-05-08", msg.Board.Day.Date)

	broker.err = errors.New("broker gone")
	assert.ErrorContains(t, pub.PublishPrayerTimes(context.Background(), board), "broker gone")

	broker.err = nil
	broker.block = true
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pub.PublishPrayerTimes(ctx, board), context.DeadlineExceeded)
}
