// Package filter turns raw Steam matches into dataset records. A match is
// kept only if its lobby type and game mode are in the configured tag sets,
// its human player count matches, its ID is in range, it is not already
// stored, and no human player abandoned it.
package filter
