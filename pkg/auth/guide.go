package auth

import (
	"fmt"
	"io"
	"strings"
)

// APIKeyURL is where a Steam Web API key is registered
const APIKeyURL = "https://steamcommunity.com/dev/apikey"

// ShowAPIKeyGuide writes instructions for obtaining a Steam Web API key
func ShowAPIKeyGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "STEAM WEB API KEY")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "matchharvest reads match data from the Steam Web API, which needs a key.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Sign in to Steam in your browser")
	fmt.Fprintf(w, "  2. Open %s\n", APIKeyURL)
	fmt.Fprintln(w, "  3. Enter any domain name and accept the terms")
	fmt.Fprintln(w, "  4. Copy the 32 character key shown on the page")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The key is stored in your system keychain when one is available, and in")
	fmt.Fprintln(w, "an encrypted file otherwise. Keep it private: it is tied to your account.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
}
