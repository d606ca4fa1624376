package outreach

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

type fakeTrackStore struct {
	latest map[string]string // enrollment id -> latest send id
	opens  map[string]int
	clicks map[string]int
	err    error
}

func newFakeTrackStore() *fakeTrackStore {
	return &fakeTrackStore{
		latest: make(map[string]string),
		opens:  make(map[string]int),
		clicks: make(map[string]int),
	}
}

func (f *fakeTrackStore) LatestSend(_ context.Context, enrollmentID string) (*model.EmailSend, error) {
	if f.err != nil {
		return nil, f.err
	}
	sendID, ok := f.latest[enrollmentID]
	if !ok {
		return nil, nil
	}
	return &model.EmailSend{ID: sendID, EnrollmentID: enrollmentID}, nil
}

func (f *fakeTrackStore) IncrementOpen(_ context.Context, sendID string) error {
	if f.err != nil {
		return f.err
	}
	f.opens[sendID]++
	return nil
}

func (f *fakeTrackStore) IncrementClick(_ context.Context, sendID string) error {
	if f.err != nil {
		return f.err
	}
	f.clicks[sendID]++
	return nil
}

func TestTrackOpenBumpsLatestSend(t *testing.T) {
	store := newFakeTrackStore()
	store.latest["enr-1"] = "send-2"
	h := NewTrackHandler(store, "https://introalignment.example")

	req := httptest.NewRequest(http.MethodGet, "/track/open?eid=enr-1", nil)
	rec := httptest.NewRecorder()
	h.Open(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
	assert.Equal(t, 1, store.opens["send-2"])
}

func TestTrackOpenAlwaysOKOnError(t *testing.T) {
	store := newFakeTrackStore()
	store.err = assert.AnError
	h := NewTrackHandler(store, "https://introalignment.example")

	req := httptest.NewRequest(http.MethodGet, "/track/open?eid=enr-1", nil)
	rec := httptest.NewRecorder()
	h.Open(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrackOpenUnknownEnrollment(t *testing.T) {
	store := newFakeTrackStore()
	h := NewTrackHandler(store, "https://introalignment.example")

	req := httptest.NewRequest(http.MethodGet, "/track/open?eid=ghost", nil)
	rec := httptest.NewRecorder()
	h.Open(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.opens)
}

func TestTrackClickRedirects(t *testing.T) {
	store := newFakeTrackStore()
	store.latest["enr-1"] = "send-1"
	h := NewTrackHandler(store, "https://introalignment.example")

	req := httptest.NewRequest(http.MethodGet,
		"/track/click?eid=enr-1&url=https%3A%2F%2Fintroalignment.example%2Freferrals", nil)
	rec := httptest.NewRecorder()
	h.Click(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://introalignment.example/referrals", rec.Header().Get("Location"))
	assert.Equal(t, 1, store.clicks["send-1"])
}

func TestTrackClickFallbackOnBadTarget(t *testing.T) {
	store := newFakeTrackStore()
	store.latest["enr-1"] = "send-1"
	h := NewTrackHandler(store, "https://introalignment.example")

	req := httptest.NewRequest(http.MethodGet, "/track/click?eid=enr-1&url=javascript:alert(1)", nil)
	rec := httptest.NewRecorder()
	h.Click(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://introalignment.example", rec.Header().Get("Location"))
}
