package pipeline

import (
	"context"

	"github.com/couchcryptid/navdata-etl/internal/domain"
)

type fanOut []ProcedureLoader

// FanOut returns a loader that hands each procedure to every loader in
// order, stopping at the first error. Nil loaders are skipped.
func FanOut(loaders ...ProcedureLoader) ProcedureLoader {
	var f fanOut
	for _, l := range loaders {
		if l != nil {
			f = append(f, l)
		}
	}
	return f
}

func (f fanOut) LoadProcedure(ctx context.Context, proc domain.Procedure) error {
	for _, l := range f {
		if err := l.LoadProcedure(ctx, proc); err != nil {
			return err
		}
	}
	return nil
}
