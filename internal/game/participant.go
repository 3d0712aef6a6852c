package game

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

const MaxHP = 100

// Participant is a chat member tracked by the party state.
type Participant struct {
	// Name is the latest known display name
	Name string `json:"name"`

	// HP is always kept within [0, MaxHP]
	HP int `json:"hp"`
}

func NewParticipant(name string) *Participant {
	return &Participant{
		Name: name,
		HP:   MaxHP,
	}
}

// UnmarshalJSON defaults a missing hp to MaxHP.
func (p *Participant) UnmarshalJSON(b []byte) error {
	type Alias Participant
	aux := struct {
		*Alias
		HP *int `json:"hp"`
	}{Alias: (*Alias)(p)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	p.HP = MaxHP
	if aux.HP != nil {
		p.HP = clampHP(*aux.HP)
	}
	return nil
}

// ApplyDamage lowers HP by amount, never below zero.
func (p *Participant) ApplyDamage(amount int) {
	p.HP = clampHP(p.HP - amount)
}

// ApplyHeal raises HP by amount, never above MaxHP.
func (p *Participant) ApplyHeal(amount int) {
	p.HP = clampHP(p.HP + amount)
}

// Restore sets HP back to MaxHP and returns how much was restored.
func (p *Participant) Restore() int {
	restored := MaxHP - p.HP
	p.HP = MaxHP
	return restored
}

// IsDefeated reports whether HP has reached zero.
func (p *Participant) IsDefeated() bool {
	return p.HP == 0
}

// MatchName returns true if token names this participant. Comparison is
// case-insensitive and ignores a leading '@' on either side.
func (p *Participant) MatchName(token string) bool {
	needle := foldName(token)
	if needle == "" {
		return false
	}
	return foldName(p.Name) == needle
}

func (p *Participant) Validate() error {
	if p.HP < 0 || p.HP > MaxHP {
		return fmt.Errorf("%w: %d", ErrInvalidHP, p.HP)
	}
	return nil
}

func foldName(s string) string {
	s = strings.TrimLeft(strings.TrimSpace(s), "@")
	// A Caser keeps state, so each call gets its own.
	return cases.Fold().String(s)
}

func clampHP(hp int) int {
	return max(0, min(MaxHP, hp))
}
