package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"eduverse_backend/internal/badge"
	"eduverse_backend/internal/events"
	"eduverse_backend/internal/model"
	"eduverse_backend/internal/puzzle"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
)

func solvedCells(p *puzzle.Puzzle) map[string]string {
	cells := map[string]string{}
	for _, c := range p.Clues {
		for i, ch := range c.Answer {
			r, col := c.Row, c.Col+i
			if c.Direction == puzzle.Down {
				r, col = c.Row+i, c.Col
			}
			cells[fmt.Sprintf("%d-%d", r, col)] = string(ch)
		}
	}
	return cells
}

func TestPuzzleSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg, err := puzzle.LoadBuiltin()
	if err != nil {
		t.Fatalf("load puzzles: %v", err)
	}
	svc := NewPuzzleService(env.store, reg, env.badges, env.validator, env.events)
	student := env.user(t, model.Student)

	view, err := svc.Get(ctx, "bible-1")
	if err != nil || view.Size != 7 {
		t.Fatalf("get: %v", err)
	}

	p, _ := reg.Get("bible-1")
	cells := solvedCells(p)
	cells["0-0"] = "X"
	res, err := svc.Submit(ctx, "bible-1", &validator.PuzzleSubmitRequest{UserID: student.ID, Cells: cells})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Solved || len(res.Incorrect) != 1 || res.Incorrect[0].Number != 1 {
		t.Fatalf("expected 1-across to be wrong, got %+v", res.Result)
	}

	cells = solvedCells(p)
	for k, v := range cells {
		cells[k] = " " + strings.ToLower(v) + " "
	}
	res, err = svc.Submit(ctx, "bible-1", &validator.PuzzleSubmitRequest{UserID: student.ID, Cells: cells})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Solved || res.AwardedBadge != badge.PuzzleMaster {
		t.Fatalf("expected solved with b7, got %+v", res)
	}

	res, err = svc.Submit(ctx, "bible-1", &validator.PuzzleSubmitRequest{UserID: student.ID, Cells: cells})
	if err != nil || !res.Solved || res.AwardedBadge != "" {
		t.Fatalf("second solve should not award again: %+v %v", res, err)
	}
	if n := len(env.events.EventsOfType(events.PuzzleSolved)); n != 2 {
		t.Fatalf("expected two puzzle.solved events, got %d", n)
	}

	if _, err := svc.Submit(ctx, "nope", &validator.PuzzleSubmitRequest{UserID: student.ID, Cells: cells}); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("unknown puzzle: %v", err)
	}
	if _, err := svc.Submit(ctx, "bible-1", &validator.PuzzleSubmitRequest{UserID: student.ID}); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("missing cells: %v", err)
	}
}
