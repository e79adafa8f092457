package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prints a warning box listing warnings and then asks for answer to
// be typed. Anything else, including EOF, declines.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string, answer string) bool {
	look := resultLooks[ResultWarning]
	width := GetTerminalWidth()

	body := []string{"", look.heading(title), ""}
	for _, w := range warnings {
		body = append(body, ResultValueStyle.Render("   • "+w))
	}
	body = append(body, "")

	fmt.Fprintf(out, "%s\n\n", ResultBoxStyle(width, look.color).Render(strings.Join(body, "\n")))
	fmt.Fprint(out, look.title.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", answer)))

	line, _ := bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
	if strings.TrimSpace(line) == answer {
		return true
	}
	fmt.Fprintln(out, TipStyle.Render("  Operation cancelled."))
	return false
}

// ConfirmWrite asks before a command that changes gateway settings is sent
func ConfirmWrite(in io.Reader, out io.Writer, command string) bool {
	return Confirm(in, out, "GATEWAY WRITE "+command, []string{
		"This command changes settings stored on the gateway",
		"The payload is sent exactly as given and is not validated",
		"A wrong payload can reset calibration or upload settings",
	}, "yes")
}
