// Package errmsg provides enhanced error message formatting with actionable suggestions.
package errmsg

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"strings"

	"github.com/coffeeauras/coffeeupdate/internal/install"
	"github.com/coffeeauras/coffeeupdate/internal/registry"
	"github.com/coffeeauras/coffeeupdate/internal/update"
)

// ErrorContext provides additional context for error formatting
type ErrorContext struct {
	AddOnsPath string // The configured add-ons root, if known
}

// Fprint writes "Error: " and the formatted message for err to w.
func Fprint(w io.Writer, err error, ctx *ErrorContext) {
	if err == nil {
		return
	}
	msg := strings.TrimRight(Format(err, ctx), "\n")
	fmt.Fprintf(w, "Error: %s\n", msg)
}

// Format returns a formatted error message with possible causes and suggestions.
// The context parameter is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	var rootErr *install.BundleRootError
	if errors.As(err, &rootErr) {
		return withHelp(err.Error(),
			[]string{
				fmt.Sprintf("The published archive for %s was packaged with the wrong folder layout", rootErr.AddOn),
			},
			[]string{
				"Report the broken archive to the add-on maintainers",
				"Other add-ons were still updated; run 'coffeeupdate status' to check",
			})
	}

	var regErr *registry.RegistryError
	if errors.As(err, &regErr) {
		return formatRegistryError(err.Error(), regErr)
	}

	switch {
	case errors.Is(err, update.ErrAddOnsPathNotSet):
		return withHelp(err.Error(),
			[]string{"No World of Warcraft installation was found automatically"},
			[]string{
				"Run 'coffeeupdate path <dir>' with your World of Warcraft folder",
				"Or run 'coffeeupdate config set addons_path <dir>'",
			})
	case errors.Is(err, update.ErrUpdateInProgress):
		return withHelp(err.Error(),
			[]string{"Another coffeeupdate process is updating add-ons"},
			[]string{"Wait for it to finish and try again"})
	case errors.Is(err, fs.ErrPermission):
		return formatPermissionError(err.Error(), ctx)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return formatNetworkError(err.Error(), netErr.Timeout())
	}

	return err.Error()
}

func formatRegistryError(msg string, err *registry.RegistryError) string {
	var causes []string
	switch err.Type {
	case registry.ErrTypeNotFound:
		if err.AddOn != "" {
			causes = []string{"The archive was removed or not yet uploaded"}
		} else {
			causes = []string{"The manifest URL is wrong", "The CDN bucket was moved"}
		}
	case registry.ErrTypeRateLimit:
		causes = []string{"Too many requests to the CDN"}
	case registry.ErrTypeTimeout:
		causes = []string{"Request timed out", "Slow or unstable network connection"}
	case registry.ErrTypeDNS, registry.ErrTypeConnection, registry.ErrTypeNetwork:
		causes = []string{"Network connectivity issue", "Firewall or proxy blocking the connection"}
	case registry.ErrTypeTLS:
		causes = []string{"System clock is wrong", "A proxy is intercepting HTTPS traffic"}
	case registry.ErrTypeParsing, registry.ErrTypeValidation:
		causes = []string{"The published manifest is malformed"}
	case registry.ErrTypeHTTPStatus:
		causes = []string{"The CDN is temporarily unavailable"}
	}

	var suggestions []string
	if s := err.Suggestion(); s != "" {
		suggestions = append(suggestions, s)
	}
	if err.Type == registry.ErrTypeTimeout {
		suggestions = append(suggestions, "Increase COFFEE_API_TIMEOUT (e.g. COFFEE_API_TIMEOUT=2m)")
	}
	if err.Type == registry.ErrTypeHTTPStatus {
		suggestions = append(suggestions, "Try again in a few minutes")
	}

	return withHelp(msg, causes, suggestions)
}

func formatNetworkError(msg string, timeout bool) string {
	causes := []string{"Network connectivity issue", "Firewall or proxy blocking the connection"}
	suggestions := []string{"Check your internet connection", "Try again in a few minutes"}
	if timeout {
		causes = []string{"Request timed out", "Slow or unstable network connection"}
		suggestions = append(suggestions, "Increase COFFEE_API_TIMEOUT")
	}
	return withHelp(msg, causes, suggestions)
}

func formatPermissionError(msg string, ctx *ErrorContext) string {
	suggestions := []string{"Close World of Warcraft before updating add-ons"}
	if ctx != nil && ctx.AddOnsPath != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check that you can write to %s", ctx.AddOnsPath))
	} else {
		suggestions = append(suggestions, "Check that you can write to your AddOns folder")
	}
	return withHelp(msg,
		[]string{"The game or another program has add-on files open", "Insufficient permissions on the AddOns folder"},
		suggestions)
}

// withHelp appends "Possible causes" and "Suggestions" blocks to msg,
// skipping empty ones.
func withHelp(msg string, causes, suggestions []string) string {
	if len(causes) == 0 && len(suggestions) == 0 {
		return msg
	}

	var sb strings.Builder
	sb.WriteString(msg)
	sb.WriteString("\n")

	if len(causes) > 0 {
		sb.WriteString("\nPossible causes:\n")
		for _, c := range causes {
			sb.WriteString("  - " + c + "\n")
		}
	}
	if len(suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, s := range suggestions {
			sb.WriteString("  - " + s + "\n")
		}
	}
	return sb.String()
}
