// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP and websocket handlers for the live poll.

# Handler Types

  - PollHandler: serves the static question catalog
  - LeaderboardHandler: computes tallies on demand
  - SocketHandler: the realtime channel (votes in, leaderboards out)

	pollHandler := handlers.NewPollHandler(cat)
	leaderboardHandler := handlers.NewLeaderboardHandler(coord)
	socketHandler := handlers.NewSocketHandler(coord, cat, cfg)

# HTTP

	GET /poll        → [{id, question, options}]
	GET /leaderboard → {"<questionId>": {"<option>": count}}

The leaderboard is rebuilt from every stored vote on each request. If the
store cannot be read the response is 500 {"error":"Internal Server Error"}.

# Websocket

GET /ws upgrades to a websocket carrying JSON frames:

	{"event": "submitResponse", "data": {"questionId": 1, "selectedOption": "Java"}}
	{"event": "updateLeaderboard", "data": {"1": {"Java": 4}}}
	{"event": "error", "data": {"error": "Bad Request", "message": "..."}}

A new connection is sent the current leaderboard straight away. Every
recorded vote is followed by an updateLeaderboard to all connections.
Error frames go only to the connection that caused them:

  - malformed or unknown frames (Bad Request, nothing stored)
  - votes the store did not accept (message "vote not recorded")

The upgrade is refused unless the Origin header matches the configured
origin. Each connection runs one reader goroutine and one writer goroutine.

# Validation

DecodeSubmission rejects payloads with a missing questionId or a missing or
blank selectedOption. With -strict-catalog the pair must also exist in the
catalog. All rejections wrap ErrMalformedPayload.
*/
package handlers
