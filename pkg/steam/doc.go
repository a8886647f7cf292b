// Package steam is a client for the Dota 2 match endpoints of the Steam Web API.
package steam
