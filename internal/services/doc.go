// package services defines the narrow interfaces the matching engine consumes
// and their concrete HTTP implementations.
//
// The engine never issues HTTP requests itself: it sees already-decoded
// [RawTitle] and [TrackResult] values through [VideoSource], [TrackSearch],
// and [PlaylistSink].
package services
