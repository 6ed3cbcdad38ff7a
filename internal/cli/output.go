package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nutcparking/parkspace/internal/commute"
	"github.com/nutcparking/parkspace/internal/lot"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// LotsResult contains the data printed by lots and by the first watch snapshot
type LotsResult struct {
	CheckedAt time.Time  `json:"checked_at"`
	Lots      []lot.Lot  `json:"lots"`
	Count     int        `json:"count"`
	Missing   []lot.Type `json:"missing,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ChangesResult is one batch of changes printed by watch
type ChangesResult struct {
	CheckedAt time.Time    `json:"checked_at"`
	Changes   []lot.Change `json:"changes"`
}

// WriteLots writes the result in the specified format
func WriteLots(w io.Writer, result *LotsResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result, true)
	case FormatText:
		return writeLotsText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteChanges writes one batch of changes. JSON output is one object per line.
func WriteChanges(w io.Writer, result *ChangesResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result, false)
	case FormatText:
		return writeChangesText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteUpdate writes one commute update. JSON output is one object per line.
func WriteUpdate(w io.Writer, u commute.Update, name string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, u, false)
	case FormatText:
		return writeUpdateText(w, u, name)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v interface{}, indent bool) error {
	encoder := json.NewEncoder(w)
	if indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

func writeLotsText(w io.Writer, result *LotsResult, verbose bool) error {
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}

	if result.Count == 0 {
		if result.Error != "" {
			fmt.Fprintln(w, result.Error)
		} else {
			fmt.Fprintln(w, "No parking lots found.")
		}
		return nil
	}

	for _, l := range result.Lots {
		fmt.Fprintf(w, "%s  %s\n", l.Type.Label(), l)
		if verbose {
			fmt.Fprintf(w, "      ID: %s\n", l.ID)
			if !l.Consistent() {
				fmt.Fprintln(w, "      Note: more spaces available than capacity")
			}
		}
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d lots, checked %s\n", result.Count, result.CheckedAt.Local().Format("15:04:05"))
	return err
}

func writeChangesText(w io.Writer, result *ChangesResult) error {
	stamp := result.CheckedAt.Local().Format("15:04:05")
	for _, c := range result.Changes {
		var line string
		switch c.ChangeType {
		case lot.ChangeNew:
			line = fmt.Sprintf("NEW %s: %s available", c.Name, c.NewValue)
		case lot.ChangeRemoved:
			line = fmt.Sprintf("REMOVED %s", c.Name)
		case lot.ChangeAvailable:
			line = fmt.Sprintf("%s: %s -> %s available", c.Name, c.OldValue, c.NewValue)
		case lot.ChangeCapacity:
			line = fmt.Sprintf("%s: capacity %s -> %s", c.Name, c.OldValue, c.NewValue)
		}
		if _, err := fmt.Fprintf(w, "[%s] %s  %s\n", stamp, c.Type.Label(), line); err != nil {
			return err
		}
	}
	return nil
}

func writeUpdateText(w io.Writer, u commute.Update, name string) error {
	stamp := u.At.Local().Format("15:04:05")

	var line string
	switch {
	case u.Found:
		line = u.Lot.String()
		if u.Changed {
			line += " *"
		}
	case u.Lot.Name != "":
		line = fmt.Sprintf("%s (not in latest data, last seen %d)", u.Lot.Name, u.Lot.AvailableCount)
	default:
		line = fmt.Sprintf("%s: not found", name)
	}
	if u.Stale && u.Message != "" {
		line += " [" + u.Message + "]"
	}

	_, err := fmt.Fprintf(w, "[%s] %s\n", stamp, line)
	return err
}
