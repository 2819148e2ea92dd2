package app

import (
	"context"
	"errors"

	apperrors "github.com/louisbranch/pocketduel/internal/platform/errors"
	"github.com/louisbranch/pocketduel/internal/services/battle/content"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/ai"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/battle"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/storage"
)

// toAppError maps domain and storage failures onto coded errors.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, battle.ErrEmptyRoster),
		errors.Is(err, battle.ErrRosterTooLarge),
		errors.Is(err, battle.ErrInvalidRoster),
		errors.Is(err, battle.ErrLeadHasNoMoves),
		errors.Is(err, creature.ErrInvalidCreature):
		return apperrors.WrapWithMetadata(apperrors.CodeBattleRosterInvalid, err.Error(),
			map[string]string{"reason": err.Error()}, err)
	case errors.Is(err, battle.ErrMoveNotFound), errors.Is(err, ErrChoicesExhausted):
		return apperrors.WrapWithMetadata(apperrors.CodeBattleMoveNotFound, err.Error(),
			map[string]string{"reason": err.Error()}, err)
	case errors.Is(err, battle.ErrNotAcceptingMoves):
		return apperrors.Wrap(apperrors.CodeBattleNotAccepting, err.Error(), err)
	case errors.Is(err, battle.ErrBattleEnded):
		return apperrors.Wrap(apperrors.CodeBattleEnded, err.Error(), err)
	case errors.Is(err, ai.ErrUnknownStrategy), errors.Is(err, ai.ErrScript), errors.Is(err, ai.ErrForeignMove):
		return apperrors.WrapWithMetadata(apperrors.CodeBattleStrategyInvalid, err.Error(),
			map[string]string{"reason": err.Error()}, err)
	case errors.Is(err, content.ErrUnknownRoster):
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound, err.Error(),
			map[string]string{"resource": "Roster"}, err)
	case errors.Is(err, content.ErrInvalidContent):
		return apperrors.Wrap(apperrors.CodeContentInvalid, err.Error(), err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound, err.Error(),
			map[string]string{"resource": "Battle"}, err)
	case errors.Is(err, storage.ErrInvalidFilter), errors.Is(err, storage.ErrInvalidPageToken):
		return apperrors.WrapWithMetadata(apperrors.CodeInvalidArgument, err.Error(),
			map[string]string{"reason": err.Error()}, err)
	default:
		return apperrors.Wrap(apperrors.CodeInternal, err.Error(), err)
	}
}
