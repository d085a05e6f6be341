package history

import "fmt"

// validateHistoryArgs checks the arguments of the history command.
func validateHistoryArgs(options *RunOptionsHistory, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("invalid argument(s) received, the history command takes no positional arguments")
	}
	if options.Limit < 0 {
		return fmt.Errorf("the 'limit' flag must be a positive integer")
	}
	return nil
}
