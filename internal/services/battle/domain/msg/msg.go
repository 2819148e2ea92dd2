// Package msg holds the battle log message formats.
//
// Formats double as catalog keys: the base locale renders them with fmt
// semantics and translated catalogs map each format to a localized one.
package msg

import "fmt"

// Printer renders a format with arguments. *message.Printer from
// golang.org/x/text satisfies it.
type Printer interface {
	Sprintf(format string, args ...any) string
}

// Message is a format plus its arguments, rendered late so callers can
// pick a locale.
type Message struct {
	Format string
	Args   []any
}

// New builds a Message.
func New(format string, args ...any) Message {
	return Message{Format: format, Args: args}
}

// Empty reports whether the message carries no format.
func (m Message) Empty() bool {
	return m.Format == ""
}

// Render formats the message with p, or fmt when p is nil.
func (m Message) Render(p Printer) string {
	if m.Empty() {
		return ""
	}
	if p == nil {
		return fmt.Sprintf(m.Format, m.Args...)
	}
	return p.Sprintf(m.Format, m.Args...)
}

// String renders the message in the base locale.
func (m Message) String() string {
	return m.Render(nil)
}

// Battle flow.
const (
	BattleStart   = "%s sent out %s!"
	TurnStart     = "Turn %d"
	MoveUsed      = "%s used %s!"
	MoveMissed    = "%s's attack missed!"
	DamageDealt   = "%s took %d damage! (%d/%d HP)"
	SuperEffect   = "It's super effective!"
	NotVeryEffect = "It's not very effective..."
	NoEffect      = "It doesn't affect %s..."
	Fainted       = "%s fainted!"
	SwitchIn      = "%s sent out %s!"
	Winner        = "%s wins the battle!"
	TurnLimit     = "The battle ended in a draw after %d turns."
	BothFainted   = "Both sides are out of creatures. The battle ends in a draw!"
)

// Stat stages.
const (
	StatRose         = "%s's %s rose!"
	StatRoseSharply  = "%s's %s rose sharply!"
	StatFell         = "%s's %s fell!"
	StatFellHarshly  = "%s's %s harshly fell!"
	StatWontGoHigher = "%s's %s won't go any higher!"
	StatWontGoLower  = "%s's %s won't go any lower!"
)

// Status application.
const (
	StatusParalyzed     = "%s is paralyzed! It may be unable to move!"
	StatusAsleep        = "%s fell asleep!"
	StatusPoisoned      = "%s was poisoned!"
	StatusBurned        = "%s was burned!"
	StatusFrozen        = "%s was frozen solid!"
	StatusBadlyPoisoned = "%s was badly poisoned!"
	StatusImmune        = "It doesn't affect %s..."
	StatusAlready       = "%s is already afflicted by %s!"
)

// Status gating and ticks.
const (
	FullyParalyzed = "%s is paralyzed! It can't move!"
	FastAsleep     = "%s is fast asleep."
	WokeUp         = "%s woke up!"
	FrozenSolid    = "%s is frozen solid!"
	Thawed         = "%s thawed out!"
	HurtByPoison   = "%s is hurt by poison! (-%d HP)"
	HurtByBurn     = "%s is hurt by its burn! (-%d HP)"
)

// Healing.
const (
	Healed = "%s regained %d HP!"
	HPFull = "%s's HP is full!"
)

// Formats lists every message format in the base locale.
func Formats() []string {
	return []string{
		BattleStart, TurnStart, MoveUsed, MoveMissed, DamageDealt, SuperEffect,
		NotVeryEffect, NoEffect, Fainted, Winner, TurnLimit, BothFainted,
		StatRose, StatRoseSharply, StatFell, StatFellHarshly, StatWontGoHigher, StatWontGoLower,
		StatusParalyzed, StatusAsleep, StatusPoisoned, StatusBurned, StatusFrozen,
		StatusBadlyPoisoned, StatusAlready,
		FullyParalyzed, FastAsleep, WokeUp, FrozenSolid, Thawed, HurtByPoison, HurtByBurn,
		Healed, HPFull,
	}
}
