package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// memMatchStore is an in-memory ResponderStore with the same transition
// semantics as the Postgres implementation.
type memMatchStore struct {
	matches  map[string]*model.Match
	connects int
}

func newMemMatchStore(matches ...*model.Match) *memMatchStore {
	s := &memMatchStore{matches: make(map[string]*model.Match)}
	for _, m := range matches {
		s.matches[m.ID] = m
	}
	return s
}

func (s *memMatchStore) GetMatch(_ context.Context, id string) (*model.Match, error) {
	if m, ok := s.matches[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, nil
}

func (s *memMatchStore) SetMatchResponse(_ context.Context, matchID, userID string, resp model.MatchResponse) error {
	m, ok := s.matches[matchID]
	if !ok || !m.Involves(userID) {
		return assert.AnError
	}
	if m.Status == model.MatchConnected || m.Status == model.MatchDeclined {
		return nil
	}
	if m.UserLo == userID {
		m.ResponseLo = resp
	} else {
		m.ResponseHi = resp
	}
	return nil
}

func (s *memMatchStore) DeclineMatch(_ context.Context, matchID string) error {
	m := s.matches[matchID]
	if m.Status != model.MatchConnected && m.Status != model.MatchDeclined {
		m.Status = model.MatchDeclined
	}
	return nil
}

func (s *memMatchStore) ConnectIfMutual(_ context.Context, matchID string) (bool, error) {
	m := s.matches[matchID]
	if m.Status == model.MatchConnected || m.Status == model.MatchDeclined {
		return false, nil
	}
	if m.ResponseLo == model.ResponseInterested && m.ResponseHi == model.ResponseInterested {
		m.Status = model.MatchConnected
		s.connects++
		return true, nil
	}
	return false, nil
}

func pendingMatch(id string) *model.Match {
	return &model.Match{
		ID:     id,
		UserLo: "alice",
		UserHi: "bob",
		Status: model.MatchIntroduced,
	}
}

func TestRespondMutualInterestConnectsOnce(t *testing.T) {
	store := newMemMatchStore(pendingMatch("m1"))
	r := NewResponder(store)
	ctx := context.Background()

	m, err := r.Respond(ctx, "m1", "alice", model.ResponseInterested)
	require.NoError(t, err)
	assert.Equal(t, model.MatchIntroduced, m.Status)

	m, err = r.Respond(ctx, "m1", "bob", model.ResponseInterested)
	require.NoError(t, err)
	assert.Equal(t, model.MatchConnected, m.Status)

	// Repeating the identical call keeps the state and does not
	// transition again.
	m, err = r.Respond(ctx, "m1", "bob", model.ResponseInterested)
	require.NoError(t, err)
	assert.Equal(t, model.MatchConnected, m.Status)
	assert.Equal(t, 1, store.connects)
}

func TestRespondDeclineIsTerminal(t *testing.T) {
	store := newMemMatchStore(pendingMatch("m1"))
	r := NewResponder(store)
	ctx := context.Background()

	m, err := r.Respond(ctx, "m1", "alice", model.ResponseDeclined)
	require.NoError(t, err)
	assert.Equal(t, model.MatchDeclined, m.Status)

	// The other side's later interest cannot resurrect the match, and
	// the declined row stays fully immutable: the late response is not
	// recorded either.
	m, err = r.Respond(ctx, "m1", "bob", model.ResponseInterested)
	require.NoError(t, err)
	assert.Equal(t, model.MatchDeclined, m.Status)
	assert.Empty(t, m.ResponseHi)
	assert.Zero(t, store.connects)
}

func TestRespondValidation(t *testing.T) {
	store := newMemMatchStore(pendingMatch("m1"))
	r := NewResponder(store)
	ctx := context.Background()

	_, err := r.Respond(ctx, "m1", "alice", "maybe")
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = r.Respond(ctx, "missing", "alice", model.ResponseInterested)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = r.Respond(ctx, "m1", "stranger", model.ResponseInterested)
	assert.ErrorIs(t, err, ErrNotParticipant)
}
