package almanac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/minyan/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/zmanim", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "281184", r.URL.Query().Get("geonameid"))
		assert.Equal(t, "2030-05-06", r.URL.Query().Get("date"))
		w.Write([]byte(`{"date":"2030-05-06","times":{
			"alotHaShachar":"2030-05-06T04:21:00+03:00",
			"sunrise":"2030-05-06T05:52:00+03:00",
			"chatzot":"2030-05-06T12:37:00+03:00",
			"minchaGedola":"2030-05-06T13:09:00+03:00",
			"plagHaMincha":"2030-05-06T18:02:00+03:00",
			"sunset":"2030-05-06T19:05:00+03:00",
			"tzeit7083deg":"2030-05-06T19:38:00+03:00"}}`))
	})
	mux.HandleFunc("/shabbat", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("gd"))
		w.Write([]byte(`{"items":[
			{"title":"Candle lighting: 18:52","date":"2030-05-10T18:52:00+03:00","category":"candles"},
			{"title":"Parashat Emor","date":"2030-05-11","category":"parashat","hebrew":"פרשת אמור"},
			{"title":"Havdalah: 20:12","date":"2030-05-11T20:12:00+03:00","category":"havdalah"}]}`))
	})
	mux.HandleFunc("/hebcal", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2030", r.URL.Query().Get("year"))
		w.Write([]byte(`{"items":[
			{"title":"Rosh Chodesh Sivan","date":"2030-06-02","category":"roshchodesh","hebrew":"ראש חודש סיון"},
			{"title":"Shavuot I","date":"2030-06-07","category":"holiday","subcat":"major"},
			{"title":"Tzom Tammuz","date":"2030-07-18","category":"holiday","subcat":"fast"},
			{"title":"Lag BaOmer","date":"2030-05-21","category":"holiday"},
			{"title":"Parashat Nasso","date":"2030-06-08","category":"parashat"},
			{"title":"Broken","date":"soon","category":"holiday"}]}`))
	})
	mux.HandleFunc("/down/hebcal", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDay(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/", "281184", time.Second)

	z, err := c.FetchDay(context.Background(), time.Date(2030, 5, 6, 15, 0, 0, 0, time.Local))
	require.NoError(t, err)

	assert.Equal(t, "2030-05-06", z.Date.Format("2006-01-02"))
	assert.Equal(t, "19:05", z.Sunset)
	assert.Equal(t, "19:38", z.BeinHaShmashos)
	assert.Equal(t, "04:21", z.AlotHaShachar)
	assert.Equal(t, "18:02", z.PlagHaMincha)
}

func TestFetchShabbat(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "281184", time.Second)

	st, err := c.FetchShabbat(context.Background(), time.Date(2030, 5, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "18:52", st.CandleLighting)
	assert.Equal(t, "20:12", st.Havdalah)
	assert.Equal(t, "Emor", st.Parasha)
}

func TestFetchHolidays(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "281184", time.Second)

	hs, err := c.FetchHolidays(context.Background(), 2030)
	require.NoError(t, err)

	require.Len(t, hs, 4)
	assert.Equal(t, model.HolidayRoshChodesh, hs[0].Category)
	assert.Equal(t, model.HolidayMajor, hs[1].Category)
	assert.Equal(t, model.HolidayFast, hs[2].Category)
	assert.Equal(t, model.HolidayMinor, hs[3].Category)
}

func TestFetchErrors(t *testing.T) {
	srv := newTestServer(t)

	c := NewClient(srv.URL+"/down", "281184", time.Second)
	_, err := c.FetchHolidays(context.Background(), 2030)
	assert.Error(t, err)

	c = NewClient("http://127.0.0.1:1", "281184", 200*time.Millisecond)
	_, err = c.FetchDay(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestClockOf(t *testing.T) {
	assert.Equal(t, "19:05", clockOf("2030-05-06T19:05:42+03:00"))
	assert.Equal(t, "", clockOf(""))
	assert.Equal(t, "", clockOf("19:05"))
}
