// Package app wires configuration into the running components shared by the
// CLI and the API server: the catalog library, the entitlement gate and its
// state store, the preview engine and the download dispatcher.
//
// Construction is lazy where it is expensive or has side effects. The catalog
// is fetched on first use and the audio device is opened only when a preview
// engine is requested, so commands such as `tonehub unlock` never touch the
// network or the sound card.
package app
