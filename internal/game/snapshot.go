package game

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/tndm-coder/fate-ardent-bot/internal/storage"
)

// Snapshot is the complete party state: every participant and every actor's
// usage counters. It is loaded, mutated and saved as one unit per request
// and must not be shared across requests.
type Snapshot struct {
	Participants map[storage.Identifier]*Participant `json:"participants"`
	Usage        map[storage.Identifier]*Usage       `json:"usage"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Participants: map[storage.Identifier]*Participant{},
		Usage:        map[storage.Identifier]*Usage{},
	}
}

// UnmarshalJSON accepts the legacy "players" key as an alias for
// "participants" and fills in anything missing.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	type Alias Snapshot
	aux := struct {
		*Alias
		Players map[storage.Identifier]*Participant `json:"players"`
	}{Alias: (*Alias)(s)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	if len(aux.Players) > 0 {
		if s.Participants == nil {
			s.Participants = map[storage.Identifier]*Participant{}
		}
		for id, p := range aux.Players {
			if _, ok := s.Participants[id]; !ok {
				s.Participants[id] = p
			}
		}
	}

	s.Normalize()
	return nil
}

// Normalize initializes nil maps, drops entries that are nil or have no
// identity, and clamps values into their valid ranges. A normalized snapshot
// always passes Validate.
func (s *Snapshot) Normalize() {
	if s.Participants == nil {
		s.Participants = map[storage.Identifier]*Participant{}
	}
	if s.Usage == nil {
		s.Usage = map[storage.Identifier]*Usage{}
	}

	for id, p := range s.Participants {
		if id == "" || p == nil {
			delete(s.Participants, id)
			continue
		}
		p.HP = clampHP(p.HP)
	}
	for id, u := range s.Usage {
		if id == "" || u == nil {
			delete(s.Usage, id)
			continue
		}
		u.normalize()
	}
}

func (s *Snapshot) Validate() error {
	if s == nil {
		return ErrNilSnapshot
	}

	el := errors.NewErrorList()

	for id, p := range s.Participants {
		if id == "" {
			el.Add(fmt.Errorf("participant identity must be set"))
		}
		if p == nil {
			el.Add(fmt.Errorf("participant %q is nil", id))
			continue
		}
		if err := p.Validate(); err != nil {
			el.Add(fmt.Errorf("participant %q: %w", id, err))
		}
	}

	for id, u := range s.Usage {
		if id == "" {
			el.Add(fmt.Errorf("usage identity must be set"))
		}
		if u == nil {
			el.Add(fmt.Errorf("usage %q is nil", id))
			continue
		}
		if err := u.Validate(); err != nil {
			el.Add(fmt.Errorf("usage %q: %w", id, err))
		}
	}

	return el.Err()
}

// Ensure registers the participant if it is new, otherwise refreshes its
// display name. HP of an existing participant is left untouched. The
// returned pointer lives inside the snapshot.
func (s *Snapshot) Ensure(id storage.Identifier, name string) *Participant {
	if s.Participants == nil {
		s.Participants = map[storage.Identifier]*Participant{}
	}

	p, ok := s.Participants[id]
	if !ok || p == nil {
		p = NewParticipant(name)
		s.Participants[id] = p
		return p
	}

	p.Name = name
	return p
}

// Participant returns the participant for id, or nil.
func (s *Snapshot) Participant(id storage.Identifier) *Participant {
	return s.Participants[id]
}

// FindByName returns the first participant whose name matches token. With
// duplicate names the winner follows map iteration order.
func (s *Snapshot) FindByName(token string) (storage.Identifier, *Participant, bool) {
	for id, p := range s.Participants {
		if p != nil && p.MatchName(token) {
			return id, p, true
		}
	}
	return "", nil, false
}

// UsageFor returns the usage record for id, creating an empty one if needed.
// Windows are not normalized here.
func (s *Snapshot) UsageFor(id storage.Identifier) *Usage {
	if s.Usage == nil {
		s.Usage = map[storage.Identifier]*Usage{}
	}

	u, ok := s.Usage[id]
	if !ok || u == nil {
		u = &Usage{}
		s.Usage[id] = u
	}
	return u
}
