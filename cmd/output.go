package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tranvictor/feedme/config"
)

// printJSON writes v to stdout when --json is set and reports whether it did.
func printJSON(v interface{}) (bool, error) {
	if !config.JSONOutput {
		return false, nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return true, err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return true, err
}
