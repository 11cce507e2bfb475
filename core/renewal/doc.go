// Package renewal decides whether a stored certificate must be created,
// renewed soon, or left alone.
//
// The decision is derived from the timestamp of the secret's current value
// and a fixed validity window:
//
//	days_left = floor((written_at + validity) - now)
//
//	days_left < 0          -> ActionCreate (expired, treated like absent)
//	days_left < threshold  -> ActionRenewSoon
//	otherwise              -> ActionNoActionNeeded
//
// A missing secret is ActionCreate. Any other lookup failure is
// ActionLookupFailed and carries the error, so callers can retry instead of
// issuing a duplicate certificate.
package renewal
