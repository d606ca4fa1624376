package match

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// Sentinel errors for HTTP status mapping at the handler layer.
var (
	ErrProfileNotFound = eris.New("profile not found")
	ErrMatchNotFound   = eris.New("match not found")
	ErrInvalidResponse = eris.New("invalid response value")
	ErrNotParticipant  = eris.New("user is not part of this match")
)

// ResponderStore is the subset of the store match responses need.
type ResponderStore interface {
	GetMatch(ctx context.Context, id string) (*model.Match, error)
	SetMatchResponse(ctx context.Context, matchID, userID string, resp model.MatchResponse) error
	DeclineMatch(ctx context.Context, matchID string) error
	ConnectIfMutual(ctx context.Context, matchID string) (bool, error)
}

// Responder records a member's answer to an introduction.
type Responder struct {
	store ResponderStore
}

func NewResponder(store ResponderStore) *Responder {
	return &Responder{store: store}
}

// Respond records userID's response on a match and applies the status
// transition. A decline is terminal. Mutual interest transitions the
// match to connected exactly once; repeating an identical call is a
// no-op and returns the same final state.
func (r *Responder) Respond(ctx context.Context, matchID, userID string, resp model.MatchResponse) (*model.Match, error) {
	if resp != model.ResponseInterested && resp != model.ResponseDeclined {
		return nil, eris.Wrapf(ErrInvalidResponse, "match: response %q", resp)
	}

	m, err := r.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, eris.Wrapf(ErrMatchNotFound, "match: %s", matchID)
	}
	if !m.Involves(userID) {
		return nil, eris.Wrapf(ErrNotParticipant, "match: %s user %s", matchID, userID)
	}

	if err := r.store.SetMatchResponse(ctx, matchID, userID, resp); err != nil {
		return nil, err
	}

	if resp == model.ResponseDeclined {
		if err := r.store.DeclineMatch(ctx, matchID); err != nil {
			return nil, err
		}
	} else {
		connected, err := r.store.ConnectIfMutual(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if connected {
			zap.L().Info("match: mutual interest, connected",
				zap.String("match_id", matchID),
			)
		}
	}

	updated, err := r.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, eris.Wrapf(ErrMatchNotFound, "match: %s", matchID)
	}
	return updated, nil
}
