// Package marble parses and prints marble diagrams.
//
// A marble diagram is an ASCII timeline. Each character is one frame of
// FrameTimeFactor virtual time units:
//
//	-      one frame of silence
//	a-z..  a Next notification (value from the value map, or the character)
//	|      Complete
//	#      Error
//	^      subscription point; frames are offset so that ^ is frame 0
//	!      unsubscription point (subscription diagrams only)
//	(ab)   group: every member at the same frame, the group advances one frame
//
// In run mode whitespace is ignored and time progression tokens such as
// "10ms", "1.2s" or "1m" advance the clock by that many time units. Outside
// run mode a space is one frame, like '-'.
//
// All parse errors are *SyntaxError and are reported synchronously.
package marble
