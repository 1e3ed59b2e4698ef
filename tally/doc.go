// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally turns recorded votes into per-question, per-option counts.

# Aggregation

ComputeTallies is a pure function over the full set of votes:

	votes, err := store.FetchAll(ctx)
	t := tally.ComputeTallies(votes)

The result only depends on the set of votes, never on their order. For every
question q, Total(t, q) equals the number of votes recorded for q.

Votes are not checked against the catalog here. Unknown question ids and
options are counted like any other.

# Helpers

  - Total: sum of counts for one question
  - Equal: deep comparison of two tallies
*/
package tally
