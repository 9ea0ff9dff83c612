// Package session persists the layout state of a grid between calls.
//
// A [Session] is the serialized form of a [masonry.State] keyed by item id:
// the grid configuration, the column heights and every placed item in
// placement order. Measurements are not stored; once an item is placed its
// cached position is all the engine needs.
//
// Sessions live in any [cache.Cache]. The CLI keeps them in a [cache.FileCache]
// under the user cache directory, the server in Redis:
//
//	store := session.NewStore(c, cache.NewDefaultKeyer(), session.DefaultTTL)
//	sess, err := session.New(cfg)
//	...
//	err = store.Update(ctx, sess.ID, func(s *session.Session) error {
//	    st := s.State()
//	    // lay out with st
//	    s.Capture(st)
//	    return nil
//	})
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/masonry"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "session not found")

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 24 * time.Hour

// Session is the persisted layout state of one grid.
type Session struct {
	ID        string         `json:"id"`
	Grid      masonry.Config `json:"grid"`
	Heights   []float64      `json:"heights"`
	Placed    []Placement    `json:"placed"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Placement is a placed item, in the order the engine placed it. Left is
// relative to the grid's left edge, without the justification inset.
type Placement struct {
	ID string `json:"id"`
	masonry.Position
}

// New creates an empty session for cfg with a random id.
func New(cfg masonry.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Grid:      cfg,
		Heights:   []float64{},
		Placed:    []Placement{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// State rebuilds the engine state for the session. The returned state has
// no measurements.
func (s *Session) State() *masonry.State[string] {
	st := masonry.NewState[string]()
	for _, p := range s.Placed {
		st.Positions.Set(p.ID, p.Position)
	}
	if len(s.Heights) > 0 {
		st.Heights.Restore(s.Heights)
	}
	return st
}

// Capture records the positions and heights of st.
func (s *Session) Capture(st *masonry.State[string]) {
	keys := st.Positions.Keys()
	s.Placed = make([]Placement, len(keys))
	for i, id := range keys {
		pos, _ := st.Positions.Get(id)
		s.Placed[i] = Placement{ID: id, Position: pos}
	}
	s.Heights = st.Heights.Snapshot()
	s.UpdatedAt = time.Now().UTC()
}

// Reset forgets every placed item and the column heights.
func (s *Session) Reset() {
	s.Placed = []Placement{}
	s.Heights = []float64{}
	s.UpdatedAt = time.Now().UTC()
}

// Height returns the height of the tallest column.
func (s *Session) Height() float64 {
	return masonry.Columns(s.Heights).Tallest()
}
