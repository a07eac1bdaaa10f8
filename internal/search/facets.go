package search

import (
	"go.uber.org/zap"
)

// DistinctValues returns every distinct term of field, in dictionary order.
func (e *Engine) DistinctValues(field string) ([]string, error) {
	snap, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.pool.Release(snap)

	dict, err := snap.Index().FieldDict(field)
	if err != nil {
		e.log.Warn("opening field dictionary", zap.String("field", field), zap.Error(err))
		return []string{}, nil
	}
	defer func() {
		if err := dict.Close(); err != nil {
			e.log.Warn("closing field dictionary", zap.String("field", field), zap.Error(err))
		}
	}()

	seen := make(map[string]struct{})
	var values []string
	for {
		entry, err := dict.Next()
		if err != nil {
			e.log.Warn("reading field dictionary", zap.String("field", field), zap.Error(err))
			return []string{}, nil
		}
		if entry == nil {
			break
		}
		if _, ok := seen[entry.Term]; ok {
			continue
		}
		seen[entry.Term] = struct{}{}
		values = append(values, entry.Term)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
