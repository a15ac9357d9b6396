// Package subscription tracks which CoCon models the client is subscribed to.
//
// The registry is the single source of truth for what must be resubscribed
// after a reconnect: the server holds no durable memory of subscriptions
// across a session change. Membership is only mutated by explicit subscribe
// and unsubscribe calls; a reconnect replays the full set but never changes
// it.
package subscription
