// package match implements the title matching engine: parsing raw video
// titles into (artist, song) candidates, orchestrating the catalog search
// ladder, scoring candidates against track metadata, ranking the results,
// and classifying each title into a confidence tier.
//
// The engine is a pure transformation layer: external calls happen only
// through [services.TrackSearch], and every score is a deterministic
// function of its inputs.
package match
