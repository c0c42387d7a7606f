// Package report renders the console summary of discovered endpoints and
// their authentication status.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/railscan/railscan/internal/inflect"
	"github.com/railscan/railscan/internal/models"
)

// Print writes the endpoint table and summary statistics. By default only
// unprotected endpoints are listed; showAll lists everything.
func Print(w io.Writer, endpoints []*models.Endpoint, showAll bool) {
	if len(endpoints) == 0 {
		fmt.Fprintln(w, color.YellowString("No endpoints discovered."))
		return
	}

	display := endpoints
	if !showAll {
		display = nil
		for _, ep := range endpoints {
			if ep.HasAuth == models.AuthNone {
				display = append(display, ep)
			}
		}
	}

	title := "Unprotected Endpoints"
	if showAll {
		title = "Discovered Endpoints"
	}
	fmt.Fprintf(w, "%s\n\n", color.New(color.Bold).Sprint(title))

	sorted := make([]*models.Endpoint, len(display))
	copy(sorted, display)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Method < sorted[j].Method
	})

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tCONTROLLER#ACTION\tAUTH")
	for _, ep := range sorted {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			methodColor(ep.Method).Sprint(ep.Method),
			ep.Path,
			formatControllerAction(ep),
			formatAuth(ep),
		)
	}
	tw.Flush()
	fmt.Fprintln(w)

	printSummary(w, endpoints)
}

// printSummary writes the aggregate statistics
func printSummary(w io.Writer, endpoints []*models.Endpoint) {
	total := len(endpoints)
	var authenticated, unprotected, unknown, conditional, engines, dynamic int
	for _, ep := range endpoints {
		switch ep.HasAuth {
		case models.AuthRequired:
			authenticated++
		case models.AuthNone:
			unprotected++
		default:
			unknown++
		}
		if ep.Condition != "" {
			conditional++
		}
		if ep.IsMountedEngine {
			engines++
		}
		if ep.IsDynamic {
			dynamic++
		}
	}

	fmt.Fprintln(w, color.New(color.Bold).Sprint("Summary:"))
	fmt.Fprintf(w, "  Total endpoints:   %d\n", total)
	if total == 0 {
		return
	}

	fmt.Fprintf(w, "  Authenticated:     %4d  (%d%%)\n", authenticated, authenticated*100/total)
	if unprotected > 0 {
		fmt.Fprintln(w, color.New(color.Bold, color.FgRed).Sprintf(
			"  UNPROTECTED:       %4d  (%d%%)", unprotected, unprotected*100/total))
	} else {
		fmt.Fprintf(w, "  UNPROTECTED:          0  (0%%)\n")
	}
	if unknown > 0 {
		fmt.Fprintf(w, "  Unknown auth:      %4d  (%d%%)\n", unknown, unknown*100/total)
	}
	if conditional > 0 {
		fmt.Fprintf(w, "  Conditional:       %4d  (%d%%)\n", conditional, conditional*100/total)
	}
	if engines > 0 {
		fmt.Fprintf(w, "  Mounted engines:   %4d  (%d%%)\n", engines, engines*100/total)
	}
	if dynamic > 0 {
		fmt.Fprintln(w, color.YellowString(
			"  Dynamic (unresolved): %3d  (%d%%)", dynamic, dynamic*100/total))
	}
	fmt.Fprintln(w)
}

// methodColor matches the color coding used across the pipeline output
func methodColor(method string) *color.Color {
	switch method {
	case "GET":
		return color.New(color.FgGreen)
	case "POST":
		return color.New(color.FgYellow)
	case "PUT", "PATCH":
		return color.New(color.FgBlue)
	case "DELETE":
		return color.New(color.FgRed)
	case "*":
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgWhite)
	}
}

// formatControllerAction renders the Controller#action cell
func formatControllerAction(ep *models.Endpoint) string {
	if ep.IsMountedEngine {
		name := ep.EngineName
		if name == "" {
			name = "Engine"
		}
		return color.MagentaString(name)
	}

	ctrl := "?"
	if ep.Controller != "" {
		ctrl = inflect.Camelize(ep.Controller) + "Controller"
	}
	action := ep.Action
	if action == "" {
		action = "?"
	}

	display := ctrl + "#" + action
	if len(display) > 42 {
		display = display[:39] + "..."
	}
	return display
}

// formatAuth renders the auth status cell
func formatAuth(ep *models.Endpoint) string {
	if ep.IsMountedEngine {
		return color.MagentaString("engine")
	}
	switch ep.HasAuth {
	case models.AuthRequired:
		shown := ep.AuthFilters
		if len(shown) > 2 {
			shown = shown[:2]
		}
		return color.GreenString("✓ %s", strings.Join(shown, ", "))
	case models.AuthNone:
		return color.New(color.Bold, color.FgRed).Sprint("⚠ NONE")
	default:
		return color.YellowString("? unknown")
	}
}
