package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomasbasham/stdlib-upload/internal/release"
)

// consolePrinter formats status lines for the operator. Colour is only used
// when out is a terminal.
type consolePrinter struct {
	out    io.Writer
	header lipgloss.Style
}

func newPrinter(out io.Writer) *consolePrinter {
	renderer := lipgloss.NewRenderer(out)
	return &consolePrinter{
		out:    out,
		header: renderer.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (p *consolePrinter) versions(bucket string, versions []release.Version) {
	fmt.Fprintln(p.out, p.header.Render(fmt.Sprintf("Versions of buildpack standard library available in %q:", bucket)))
	for _, v := range versions {
		fmt.Fprintf(p.out, " - %s\n", v)
	}
}

func (p *consolePrinter) assumingNext(v release.Version) {
	fmt.Fprintf(p.out, "No version provided, assuming %s and updating latest.\n", v)
}

func (p *consolePrinter) uploading(file, bucket string) {
	fmt.Fprintf(p.out, "Uploading %q to bucket %q...\n", file, bucket)
}

func (p *consolePrinter) published(result *release.Result) {
	for _, obj := range result.Objects {
		if obj.Public {
			fmt.Fprintf(p.out, "%s (%s)\n", obj.Key, obj.URL)
			continue
		}
		fmt.Fprintln(p.out, obj.Key)
	}
	fmt.Fprintln(p.out, "Complete!")
}

func (p *consolePrinter) aliasFailed(w io.Writer, v release.Version) {
	fmt.Fprintf(w, "%s was published but latest was not updated; re-run with %s --latest to retry.\n", v, v)
}

func (p *consolePrinter) credentialsHint(w io.Writer, bucketURL string) {
	if strings.HasPrefix(bucketURL, "gs://") {
		fmt.Fprintln(w, "Check that GOOGLE_APPLICATION_CREDENTIALS names a readable key, or run 'gcloud auth application-default login'.")
		return
	}
	fmt.Fprintln(w, "Check that AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are set to valid credentials.")
}
