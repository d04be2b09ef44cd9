package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/studiowebux/gemcli/internal/knownhosts"
)

const timeLayout = "2006-01-02"

// ListHosts prints the pinned certificates as a table.
func ListHosts(w io.Writer, pins []knownhosts.Pin, now time.Time) error {
	if len(pins) == 0 {
		_, err := fmt.Fprintln(w, "No pinned hosts.")
		return err
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "HOST\tPORT\tFINGERPRINT\tEXPIRES\tLAST SEEN")

	for _, pin := range pins {
		expires := "-"
		if !pin.NotAfter.IsZero() {
			expires = pin.NotAfter.Local().Format(timeLayout)
			if pin.Expired(now) {
				expires += " (expired)"
			}
		}
		lastSeen := "-"
		if !pin.LastSeen.IsZero() {
			lastSeen = pin.LastSeen.Local().Format(timeLayout)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", pin.Host, pin.Port, pin.Fingerprint, expires, lastSeen)
	}

	return writer.Flush()
}

// HostNames returns the distinct host names of pins in order.
func HostNames(pins []knownhosts.Pin) []string {
	seen := make(map[string]bool)
	var hosts []string
	for _, pin := range pins {
		if !seen[pin.Host] {
			seen[pin.Host] = true
			hosts = append(hosts, pin.Host)
		}
	}
	return hosts
}
