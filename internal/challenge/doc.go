// Package challenge produces captcha answer text.
//
// Expand turns a compact character range expression such as "1,a,[4-9]"
// into the set of characters an answer may contain, and Generator draws
// fixed-length answers from that set using a cryptographically secure
// random source.
package challenge
