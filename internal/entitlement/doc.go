// Package entitlement gates full-asset downloads behind a persisted
// Locked/Unlocked flag.
//
// The gate unlocks on exactly two events: a successful key verification or a
// payment confirmation from the checkout collaborator. Unlocked is terminal;
// the flag is read once when the Gate is built and written on each unlock
// event. Verification is delegated to a Verifier so deployments can replace
// the shared-secret check with a server-side one.
package entitlement
