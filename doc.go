// Package xgboost provides the callback orchestration layer for an iterative
// gradient-boosting training loop.
//
// Independent pieces of training behavior (progress printing, metric
// logging, early stopping, checkpointing, parameter scheduling,
// cross-validation prediction aggregation, linear-coefficient history)
// plug into the loop as callbacks without modifying the loop itself. The
// boosting engine and the loop driver stay external; they are consumed
// through the narrow contracts in the booster package.
//
// # Packages
//
//   - callback: the callback registry, execution-ordering contract, shared
//     training environment, and all concrete callbacks
//   - booster: the interfaces the callbacks consume from the boosting
//     engine (prediction, attribute persistence, model dump/save) plus the
//     cross-validation fold and result types
//   - pkg/errors: structured error and warning types on cockroachdb/errors
//   - pkg/log: slog-compatible structured logging
//
// # Quick start
//
//	cbs := callback.NewCallbackList(
//	    callback.NewPrintEvaluation(10),
//	    callback.NewEarlyStopping(5, callback.WithVerbose(true)),
//	    callback.NewRecordEvaluation(),
//	)
//
//	env := &callback.Env{
//	    BeginIteration: 1,
//	    EndIteration:   numRounds,
//	    Booster:        bst,
//	}
//
//	for i := env.BeginIteration; i <= env.EndIteration; i++ {
//	    env.Iteration = i
//	    if err := cbs.RunPreIteration(env); err != nil { ... }
//	    // one boosting step, then refresh env.Scores
//	    if err := cbs.RunPostIteration(env); err != nil { ... }
//	    if env.Stop {
//	        break
//	    }
//	}
//	if err := cbs.RunFinalize(env); err != nil { ... }
package xgboost
