package downloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	pkgerrors "github.com/agentstation/pagecast/pkg/errors"
	"github.com/agentstation/pagecast/pkg/registration"
)

// candidate is a freshly instantiated repository.
type candidate[R any] struct {
	name string
	repo R
}

// outcome is what one candidate settled with.
type outcome[T any] struct {
	name    string
	value   T
	err     error
	elapsed time.Duration
}

// instantiateAll builds one repository per registration. Constructor
// failures are isolated: they are logged and the remaining candidates still
// race. Only when every constructor fails is an InstantiationError returned.
func instantiateAll[R any](
	ctx context.Context,
	o *options,
	log *zerolog.Logger,
	data, shape string,
	types []registration.RepositoryType[R],
) ([]candidate[R], error) {
	cands := make([]candidate[R], 0, len(types))
	var errs []error
	for _, rt := range types {
		repo, err := build(ctx, o, rt)
		if err != nil {
			log.Warn().Err(err).Str("repository", rt.Name).Msg("repository instantiation failed")
			errs = append(errs, fmt.Errorf("%s: %w", rt.Name, err))
			continue
		}
		cands = append(cands, candidate[R]{name: rt.Name, repo: repo})
	}
	if len(cands) == 0 {
		return nil, &pkgerrors.InstantiationError{DataType: data, Shape: shape, Errs: errs}
	}
	return cands, nil
}

func build[R any](ctx context.Context, o *options, rt registration.RepositoryType[R]) (repo R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("constructor panicked: %v", r)
		}
	}()

	if rt.New == nil {
		return repo, errors.New("no constructor")
	}
	v, err := o.instantiate(ctx, rt.Name, func() (any, error) {
		r, err := rt.New()
		return r, err
	})
	if err != nil {
		return repo, err
	}
	repo, ok := v.(R)
	if !ok {
		return repo, fmt.Errorf("instantiator returned %T", v)
	}
	return repo, nil
}

// race calls every candidate concurrently and settles according to the
// policy. Losers are never cancelled; the results channel is buffered so
// their goroutines always complete and are discarded.
//
// On failure the returned error is a RepositoryError (FirstSettled), the
// joined RepositoryErrors of every candidate (FirstSuccess), or the
// wrapped context error when ctx ends before settlement.
func race[R, T any](
	ctx context.Context,
	o *options,
	log *zerolog.Logger,
	data, op string,
	cands []candidate[R],
	call func(context.Context, R) (T, error),
) (outcome[T], error) {
	results := make(chan outcome[T], len(cands))
	start := time.Now()
	for _, c := range cands {
		go func() {
			v, err := invoke(ctx, c.repo, call)
			results <- outcome[T]{name: c.name, value: v, err: err, elapsed: time.Since(start)}
		}()
	}

	return collect(ctx, o, log, data, op, len(cands), results)
}

// collect settles n candidate results. When ctx ends, results that already
// arrived still count: a buffered success wins over the context error.
func collect[T any](
	ctx context.Context,
	o *options,
	log *zerolog.Logger,
	data, op string,
	n int,
	results <-chan outcome[T],
) (outcome[T], error) {
	var failures []error
	settle := func(r outcome[T]) (bool, error) {
		if r.err == nil {
			log.Debug().Str("winner", r.name).Dur("elapsed", r.elapsed).Int("candidates", n).Msg("download settled")
			return true, nil
		}
		rerr := pkgerrors.NewRepositoryError(r.name, data, op, r.err)
		if o.policy == FirstSettled {
			log.Debug().Err(r.err).Str("winner", r.name).Dur("elapsed", r.elapsed).Msg("download settled with failure")
			return true, rerr
		}
		log.Debug().Err(r.err).Str("repository", r.name).Msg("candidate failed")
		failures = append(failures, rerr)
		return false, nil
	}

	for seen := 0; seen < n; seen++ {
		select {
		case r := <-results:
			if done, err := settle(r); done {
				return r, err
			}
		case <-ctx.Done():
			for ; seen < n; seen++ {
				select {
				case r := <-results:
					if done, err := settle(r); done {
						return r, err
					}
				default:
					return outcome[T]{}, pkgerrors.WrapContext("download "+data, ctx.Err())
				}
			}
			return outcome[T]{}, errors.Join(failures...)
		}
	}
	return outcome[T]{}, errors.Join(failures...)
}

func invoke[R, T any](ctx context.Context, repo R, call func(context.Context, R) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("repository panicked: %v", r)
		}
	}()
	return call(ctx, repo)
}
