// Package answers turns a skysmart task set into correct answers.
//
// Extract applies a fixed list of widget rules to one parsed task. Service
// drives a whole task set: resolve the room, fetch every step, extract, and
// drop the steps that fail along the way.
package answers
