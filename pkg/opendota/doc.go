// Package opendota looks up the patch a match was played on.
package opendota
