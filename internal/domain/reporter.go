package domain

import (
	"fmt"
	"strings"

	"ilcheck/internal/engine"
	m "ilcheck/internal/model"
)

// Format renders one verification diagnostic as a single report line.
// Optional fields are present only when the diagnostic carries them;
// the trailing text comes from the message lookup, falling back to the
// code's symbolic name.
func Format(diag m.Diagnostic, id m.MethodIdentity, modulePath m.Path) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[IL]: Error: [%s : %s::%s]", modulePath, id.OwningType, id.Method)
	fmt.Fprintf(&b, "[offset 0x%08X]", diag.Offset)

	if diag.Found != "" {
		fmt.Fprintf(&b, "[found %s]", diag.Found)
	}

	if diag.Expected != "" {
		fmt.Fprintf(&b, "[expected %s]", diag.Expected)
	}

	if diag.Token != 0 {
		fmt.Fprintf(&b, "[token  0x%08X]", diag.Token)
	}

	text, ok := engine.Text(diag.Code)
	if !ok {
		text = diag.Code.String()
	}

	b.WriteString(" ")
	b.WriteString(text)

	return b.String()
}

// FormatTokenFailure renders the generic line for a metadata token the
// engine could not resolve.
func FormatTokenFailure(id m.MethodIdentity, modulePath m.Path, token uint32) string {
	return fmt.Sprintf("[IL]: Error: [%s : %s::%s] Unable to resolve token 0x%08X",
		modulePath, id.OwningType, id.Method, token)
}
