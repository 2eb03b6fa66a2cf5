package neopersist

import (
	"context"
	"iter"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapper"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

// streamEntities reads the roots of a load statement one record at a time. It runs
// in the transaction of ctx or in its own read-only transaction, which is committed
// when the sequence is read to the end and rolled back when the consumer stops
// early, the context is cancelled or a record fails to map. Without a
// TransactionManager the statement runs eagerly and the sequence replays its records.
func streamEntities[T any](ctx context.Context, pm *PersistenceManager, e *mapping.PersistentEntity, cypher string, params map[string]any, opts ...mapper.PassOption) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		tx, owned, err := pm.streamTransaction(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		pass := pm.reader.NewPass(opts...)

		if tx == nil {
			res, err := pm.run(ctx, cypher, params)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, rec := range res.Records {
				v, first, err := pass.Read(e, rec)
				if err != nil {
					yield(nil, err)
					return
				}
				if first && !yield(v.Interface().(*T), nil) {
					return
				}
			}
			return
		}

		complete := false
		if owned {
			defer func() {
				// endStream only fails after a complete read, when yield may still be called.
				if err := pm.endStream(ctx, tx, complete); err != nil {
					yield(nil, err)
				}
			}()
		}

		pm.logStatement(cypher, params)
		records, err := tx.Stream(ctx, cypher, params)
		if err != nil {
			yield(nil, err)
			return
		}
		for records.Next(ctx) {
			v, first, err := pass.Read(e, records.Record())
			if err != nil {
				yield(nil, err)
				return
			}
			if first && !yield(v.Interface().(*T), nil) {
				return
			}
		}
		if err := records.Err(); err != nil {
			yield(nil, err)
			return
		}
		complete = true
	}
}
