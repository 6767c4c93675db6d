// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package suggest drives the @mention suggestion list.

It has two halves. List is a pure state machine over the lifecycle
Closed -> Loading -> Open/Empty -> Closed, owning the candidate set and
the highlighted index. Source is the async boundary: it issues
rate-limited member searches off the event loop and delivers tagged
ResultMsg values back into it.

Staleness is the load-bearing rule here. Every fetch is tagged with the
query it was issued for; List.Resolve and List.Fail apply a result only
while that query is still the live one and the list has not been
dismissed. A response for a superseded query is a no-op, so a fast typist
never sees candidates for text they already changed, and a dismissed list
never reopens on its own. Fetch failures degrade to the empty state and
are logged, never surfaced; a user mid-keystroke cannot act on a network
error anyway.
*/
package suggest
