// Package store is the single owner of client-side application state: the
// session, the credit balance and the model, history and payment collections.
//
// State is changed only by unexported mutations, which are synchronous and run
// under the store mutex. Actions (Login, GenerateCode, FetchCredits, ...) are
// the exported, context-aware operations; they perform HTTP calls through the
// store's current API client and apply mutations once each call resolves.
//
// The store owns exactly one API client view at a time. Binding a token swaps
// the authenticated view in the same critical section as the session change,
// so no protected request can observe a stale or missing token.
//
// The store never prints. Callers route outcomes to a notifier.
package store
