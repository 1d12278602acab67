package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

// options carries the per-command flags.
type options struct {
	verbose bool

	page  int
	limit int

	session    string
	status     string
	phone      string
	search     string
	webhookURL string

	caption   string
	mediaType string
	name      string
	address   string
	inactive  bool

	pngPath string
}

func newFlagSet(o *options, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("wactl", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.String("api-key", "", "platform API key (WA_API_KEY)")
	fs.String("base-url", "", "platform base URL (WA_BASE_URL)")
	fs.Int("timeout", 0, "request timeout in seconds (WA_TIMEOUT_SECONDS)")
	fs.Int("max-retries", 0, "attempts per call (WA_MAX_RETRIES)")
	fs.String("log-level", "", "log level used with --verbose")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log requests and retries to stdout")

	fs.IntVar(&o.page, "page", 0, "page number for list commands")
	fs.IntVar(&o.limit, "limit", 0, "page size for list commands")
	fs.StringVar(&o.session, "session", "", "filter by session id")
	fs.StringVar(&o.status, "status", "", "filter sessions by status")
	fs.StringVar(&o.phone, "phone", "", "filter messages by phone")
	fs.StringVar(&o.search, "search", "", "search contacts")
	fs.StringVar(&o.webhookURL, "webhook-url", "", "webhook URL for a new session")
	fs.StringVar(&o.caption, "caption", "", "media caption")
	fs.StringVar(&o.mediaType, "type", "", "media type (image, video, audio, document)")
	fs.StringVar(&o.name, "name", "", "location name")
	fs.StringVar(&o.address, "address", "", "location address")
	fs.BoolVar(&o.inactive, "inactive", false, "create the webhook disabled")
	fs.StringVar(&o.pngPath, "png", "", "write the session QR code to this PNG file")
	return fs
}

func printUsage(fs *pflag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: wactl [flags] <resource> <action> [args]")
	fmt.Fprintln(w)
	resources := make([]string, 0, len(commands))
	for r := range commands {
		resources = append(resources, r)
	}
	sort.Strings(resources)
	for _, r := range resources {
		actions := make([]string, 0, len(commands[r]))
		for a := range commands[r] {
			actions = append(actions, a)
		}
		sort.Strings(actions)
		for _, a := range actions {
			fmt.Fprintf(w, "  %-9s %-10s %s\n", r, a, commands[r][a].usage)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fmt.Fprint(w, indent(fs.FlagUsages()))
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return "  " + strings.Join(lines, "\n  ") + "\n"
}
