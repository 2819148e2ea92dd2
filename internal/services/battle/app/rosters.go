package app

import "github.com/louisbranch/pocketduel/internal/services/battle/content"

// LoadRosters reads both sides of a match from p against one move set.
func LoadRosters(p *content.Provider, player, opponent string) (content.Roster, content.Roster, error) {
	moves, err := p.Moves()
	if err != nil {
		return content.Roster{}, content.Roster{}, toAppError(err)
	}
	left, err := p.RosterWith(player, moves)
	if err != nil {
		return content.Roster{}, content.Roster{}, toAppError(err)
	}
	right, err := p.RosterWith(opponent, moves)
	if err != nil {
		return content.Roster{}, content.Roster{}, toAppError(err)
	}
	return left, right, nil
}
