package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cliflag "github.com/tomasbasham/cli-runtime/flag"
	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/printer"
	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/stdlib-upload/internal/release"
)

var (
	rootLong = templates.LongDesc(`
		Publish the buildpack standard library to object storage.

		The local stdlib.sh is uploaded to <prefix><version>/stdlib.sh and,
		with --latest, copied to <prefix>latest/stdlib.sh as well. Uploaded
		objects are made publicly readable unless --public=false is given.

		S3 credentials are read from AWS_ACCESS_KEY_ID and
		AWS_SECRET_ACCESS_KEY. gs:// buckets use application default
		credentials.`)

	rootExamples = templates.Examples(`
		# List the versions already published
		upload --list

		# Publish v5 and point latest at it
		upload v5 --latest

		# Publish the version after the newest one, updating latest
		upload --next

		# Try it out against a local directory
		upload v1 --bucket file:///tmp/stdlib-bucket`)

	// Injected at build time using ldflags.
	version = ""
	commit  = ""
)

// NewRootCommand creates the `upload` command with default arguments.
func NewRootCommand() *cobra.Command {
	options := NewUploadOptions(iooption.IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	})

	return NewRootCommandWithArgs(options)
}

// NewRootCommandWithArgs creates the `upload` command bound to o.
func NewRootCommandWithArgs(o *UploadOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "upload [version] [--latest] | --list | --next",
		Version:               versionInfo(),
		DisableFlagsInUseLine: true,
		Short:                 "Publish the buildpack standard library to object storage",
		Long:                  rootLong,
		Example:               rootExamples,
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return o.usage(cmd, err)
			}
			if err := o.Validate(); err != nil {
				return o.usage(cmd, err)
			}
			return o.Run(cmd.Context())
		},
	}

	cmd.SetOut(o.Out)
	cmd.SetErr(o.ErrOut)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return o.usage(c, &usageError{err: err})
	})

	flags := cmd.Flags()

	flags.BoolVarP(&o.List, "list", "l", false, "List versions already uploaded")
	flags.BoolVar(&o.Latest, "latest", false, "Upload the version to 'latest' as well")
	flags.BoolVar(&o.Next, "next", false, "Upload as the version after the newest published one, updating 'latest'")
	flags.BoolVarP(&o.Yes, "yes", "y", false, "Do not ask for confirmation when using --next")
	flags.StringVar(&o.Bucket, "bucket", defaultBucket, "Bucket URL (s3://, gs:// or file://)")
	flags.StringVar(&o.Prefix, "prefix", release.DefaultPrefix, "Key prefix of published versions")
	flags.StringVarP(&o.File, "file", "f", release.DefaultFilename, "Local file to upload")
	flags.BoolVar(&o.Public, "public", true, "Make uploaded objects publicly readable")
	flags.StringVar(&o.ContentType, "content-type", release.DefaultContentType, "Content type of uploaded objects")
	flags.StringVar(&o.Region, "region", "", "S3 region (default: $AWS_REGION or us-east-1)")
	flags.StringVar(&o.Endpoint, "endpoint", "", "Storage API endpoint for S3- or GCS-compatible stores")
	flags.StringVar(&o.ConfigPath, "config", "", "YAML file providing defaults for the flags above")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "Log storage operations to stderr")

	// The global normalisation function ensures that all flags specified meet
	// the desired format, changing users' input if necessary.
	warnings := printer.NewWarningPrinter(o.ErrOut, printer.WarningPrinterOptions{Color: true})
	cmd.SetGlobalNormalizationFunc(cliflag.WarnWordSepNormalizeFunc(warnings))

	return cmd
}

func versionInfo() string {
	if version == "" {
		return "dev"
	}
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}
