// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime implements the vote pipeline and live leaderboard fan-out.

# Coordinator

Coordinator.Submit walks one vote through its lifecycle:

	Received  -> the vote gets a UUID
	Persist   -> store.Append (bounded by RetryPolicy); failure = Rejected
	Recompute -> store.FetchAll + tally.ComputeTallies (full scan)
	Broadcast -> one encoded updateLeaderboard frame to every session

A rejected vote leaves the snapshot alone and triggers no broadcast.
Recompute and broadcast run under a single lock, so snapshots reach
observers in order and each one covers every vote persisted before it.

If the recompute after a stored vote fails, the snapshot is marked stale.
A background loop retries Refresh with doubling delays until it succeeds,
and Join scans the store again while the snapshot is stale. Call Close to
stop the loop.

# Sessions

Registry holds one Session per connection:

	session, err := coord.Join(ctx, remoteAddr) // registered + current snapshot
	go session.Run(writeFrame)
	defer coord.Leave(session)

A Session keeps only the newest leaderboard frame pending, so a slow
observer never blocks a broadcast. Delivering to a closed session fails with
ErrSessionClosed and the broadcast carries on with the others.

# Store Calls

Every store call goes through RetryPolicy: a per-attempt timeout, a bounded
number of retries and doubling backoff. Failures surface as
store.ErrStoreUnavailable. Retrying Append is safe because votes carry their
ID and stores ignore duplicates.
*/
package realtime
