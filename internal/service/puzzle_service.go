package service

import (
	"context"

	"eduverse_backend/internal/badge"
	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/puzzle"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/logger"

	"go.uber.org/zap"
)

type PuzzleService struct {
	Store     repository.Store
	Puzzles   *puzzle.Registry
	Badges    *BadgeService
	Validator *validator.Validator
	Events    events.Publisher
}

func NewPuzzleService(store repository.Store, reg *puzzle.Registry, badges *BadgeService, v *validator.Validator, pub events.Publisher) *PuzzleService {
	return &PuzzleService{Store: store, Puzzles: reg, Badges: badges, Validator: v, Events: pub}
}

// SubmitResult 作答结果，首次解出时附带新获得的徽章
type SubmitResult struct {
	puzzle.Result
	AwardedBadge model.BadgeID `json:"awardedBadge,omitempty"`
}

func (s *PuzzleService) Get(ctx context.Context, id string) (*puzzle.View, error) {
	p, err := s.Puzzles.Get(id)
	if err != nil {
		return nil, err
	}
	v := p.View()
	return &v, nil
}

// Submit 全部答对时触发 PuzzleSolved
func (s *PuzzleService) Submit(ctx context.Context, id string, req *validator.PuzzleSubmitRequest) (*SubmitResult, error) {
	if errs := s.Validator.Struct(req); len(errs) > 0 {
		return nil, errs
	}
	p, err := s.Puzzles.Get(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Store.Users().FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	out := &SubmitResult{Result: p.Check(req.Cells)}
	if !out.Solved {
		return out, nil
	}

	logger.Log.Info("Puzzle solved", zap.String("user_id", req.UserID), zap.String("puzzle_id", id))
	publishEvent(ctx, s.Events, events.PuzzleSolved, req.UserID, map[string]interface{}{"puzzleId": id})

	badgeID, awarded, err := s.Badges.HandleEvent(ctx, req.UserID, badge.PuzzleSolved)
	if err != nil {
		return nil, err
	}
	if awarded {
		out.AwardedBadge = badgeID
	}
	return out, nil
}
