package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgNoResultsOnPage   = "No results found on this page."
	MsgEmptyPageHint     = "Press k for back, or Esc/q to quit."
	MsgSearching         = "Searching…"
	MsgLoadingStatement  = "Loading statement…"
	MsgLoggingIn         = "Logging in…"
	MsgSubmitting        = "Submitting…"
	MsgEvaluating        = "Waiting for evaluation…"
	MsgCheckingServer    = "Checking kilonova.ro…"
	MsgNoLastProblem     = "No problem viewed yet. Use `kn search` first."
	MsgNotLoggedIn       = "You are not logged in. Use `kn login` first."
	MsgLoggedOut         = "Logged out."
	MsgStatementNotFound = "No statement found for this problem."
	MsgSearchCancelled   = "Search cancelled."
	MsgOfflineCopy       = "Showing the cached copy, the server could not be reached."
	MsgHistoryEmpty      = "No statements viewed yet."
	MsgSessionExtended   = "Session extended for another 30 days."
)

func MsgLoggedInAs(name string) string {
	return fmt.Sprintf("Logged in as %s.", strings.TrimSpace(name))
}

func MsgLanguageSet(kind, lang string) string {
	return fmt.Sprintf("%s language set to %s.", kind, lang)
}

func MsgSubmitted(id int64, file string) string {
	return fmt.Sprintf("Submitted %s as #%d.", truncateMiddle(file, 48), id)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgServerStatus(reachable bool) string {
	if reachable {
		return "kilonova.ro is reachable."
	}
	return "kilonova.ro cannot be reached right now."
}

func MsgSessionNotExtended(err error) string {
	return fmt.Sprintf("Could not extend session: %v", err)
}

func MsgOpened(url string) string {
	return "Opened " + url
}
