package ui

import "fmt"

// RenderReply formats one assistant turn for the terminal. Kind is the
// agent action name: respond, react or ignore.
func RenderReply(kind, text string) string {
	switch kind {
	case "ignore":
		return IgnoreStyle.Render(fmt.Sprintf("%s (ignored)", Bug))
	case "react":
		return ReactStyle.Render(fmt.Sprintf("%s [%s]", Bug, text))
	default:
		return ReplyStyle.Render(Bug) + " " + text
	}
}

func RenderError(err error) string {
	return ErrorStyle.Render("error:") + " " + err.Error()
}
