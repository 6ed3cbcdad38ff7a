// Package notifier turns a parking snapshot into a short availability summary
// and delivers it.
//
// Summarize builds the message; a Notifier delivers it. DryRunNotifier prints
// to a writer, TwitterNotifier posts a status update over OAuth1, and Throttled
// wraps any Notifier so that at most one message goes out per cooldown.
package notifier
