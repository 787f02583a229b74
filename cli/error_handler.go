package cli

import (
	"fmt"
	"os"

	"github.com/lovenityjade/APTwitchBot/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create an aptwitchbot.yml with an 'archipelago' section.\n")
		return err

	case errors.ErrCodeAlreadyRunning:
		if fetchErr, ok := err.(*errors.FetcherError); ok {
			fmt.Fprintf(os.Stderr, "❌ The fetcher is already running (pid %v)\n", fetchErr.Details["pid"])
			fmt.Fprintf(os.Stderr, "Stop it with 'apfetcher stop' before starting another.\n")
		}
		return err

	case errors.ErrCodeNotRunning:
		fmt.Fprintf(os.Stderr, "❌ The fetcher is not running.\n")
		fmt.Fprintf(os.Stderr, "Start it with 'apfetcher run'.\n")
		return err

	case errors.ErrCodeStateNotFound:
		fmt.Fprintf(os.Stderr, "❌ No state document found. Run 'apfetcher run' to start publishing one.\n")
		return err

	case errors.ErrCodeConnectionRefused:
		if fetchErr, ok := err.(*errors.FetcherError); ok {
			fmt.Fprintf(os.Stderr, "❌ The server refused the connection: %v\n", fetchErr.Details["reasons"])
			fmt.Fprintf(os.Stderr, "Check the slot_name, game, and password in aptwitchbot.yml\n")
		}
		return err

	default:
		// Generic error handling
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if fetchErr, ok := err.(*errors.FetcherError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", fetchErr.ToJSON())
			}
		}
		return err
	}
}
