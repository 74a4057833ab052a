// package server hosts the loopback HTTP endpoint for the Spotify
// authorization-code flow. The CLI starts it, opens the consent page in a
// browser, and waits for exactly one callback before shutting down.
package server
