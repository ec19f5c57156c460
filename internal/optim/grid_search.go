package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/chainsim/internal/sim"
)

var ErrNoCandidate = errors.New("no parameter combination completed")

// Trial builds a fresh simulator and run config for one combination.
type Trial func(params map[string]float64) (*sim.Simulator, sim.Config, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs every combination and returns the one with the lowest value
// of metricName. Combinations that fail to build or stop early with step
// errors are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	build Trial,
	script sim.Script,
	metricName string,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, script, metricName, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Trial,
	script sim.Script,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		s, cfg, err := build(current)
		if err != nil {
			return nil
		}

		result, err := s.Run(ctx, script, cfg)
		if err != nil || len(result.Errors) > 0 {
			return nil
		}

		val, ok := result.Metrics[metricName]
		if ok && val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, script, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
