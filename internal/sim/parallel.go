package sim

import (
	"context"
	"sync"
)

// Factory builds an independent simulator. Each sweep run gets its own.
type Factory func() (*Simulator, error)

// Sweep runs one simulator per config concurrently and returns results in
// config order. Simulators are never shared between goroutines.
func Sweep(ctx context.Context, factory Factory, script Script, cfgs []Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i := range cfgs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := factory()
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, script, cfgs[idx])
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
