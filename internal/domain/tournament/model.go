package tournament

import "strings"

// Result is the tournament outcome stored under the wk_results setting.
type Result struct {
	Winner   string `json:"winner"`
	Finalist string `json:"finalist,omitempty"`
}

func (r Result) HasWinner() bool {
	return strings.TrimSpace(r.Winner) != ""
}
