package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/iooption"

	"github.com/tomasbasham/stdlib-upload/internal/release"
	"github.com/tomasbasham/stdlib-upload/internal/storage"
)

const defaultBucket = "s3://lang-common"

// UploadOptions defines the options for the `upload` command.
type UploadOptions struct {
	version release.Version
	content []byte
	open    func(ctx context.Context, rawURL string, opts storage.Options) (storage.Bucket, error)

	List       bool
	Latest     bool
	Next       bool
	Yes        bool
	Public     bool
	Verbose    bool
	Version     string
	Bucket      string
	Prefix      string
	File        string
	ContentType string
	Region      string
	Endpoint    string
	ConfigPath  string

	iooption.IOStreams
}

// usageError marks malformed command line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// NewUploadOptions provides an initialised UploadOptions instance.
func NewUploadOptions(streams iooption.IOStreams) *UploadOptions {
	return &UploadOptions{
		open:        storage.Open,
		Public:      true,
		Bucket:      defaultBucket,
		Prefix:      release.DefaultPrefix,
		File:        release.DefaultFilename,
		ContentType: release.DefaultContentType,
		IOStreams:   streams,
	}
}

func (o *UploadOptions) Complete(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usageErrorf("expected at most one version, got %d arguments", len(args))
	}
	if len(args) == 1 {
		o.Version = args[0]
	}

	if o.ConfigPath != "" {
		cfg, err := loadConfig(o.ConfigPath)
		if err != nil {
			return err
		}
		cfg.apply(cmd, o)
	}
	return nil
}

func (o *UploadOptions) Validate() error {
	switch {
	case o.List && (o.Version != "" || o.Next || o.Latest):
		return usageErrorf("--list cannot be combined with a version, --next or --latest")
	case o.Version != "" && o.Next:
		return usageErrorf("a version and --next are mutually exclusive")
	case !o.List && o.Version == "" && !o.Next:
		return usageErrorf("a version (e.g. 'v2'), --next or --list is required")
	}

	if o.Version != "" {
		v, err := release.ParseVersion(o.Version)
		if err != nil {
			return &usageError{err: err}
		}
		o.version = v
	}

	if !o.List {
		// Read in full before anything touches the network, including the
		// --next listing.
		content, err := release.ReadSource(o.File)
		if err != nil {
			return err
		}
		o.content = content
	}
	return nil
}

func (o *UploadOptions) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := newPrinter(o.Out)
	err := o.run(ctx, p)
	if storage.IsUnauthenticated(err) {
		p.credentialsHint(o.ErrOut, o.Bucket)
	}
	return err
}

func (o *UploadOptions) run(ctx context.Context, p *consolePrinter) error {
	logger := o.newLogger()

	bucket, err := o.open(ctx, o.Bucket, storage.Options{
		Region:   o.Region,
		Endpoint: o.Endpoint,
	})
	if err != nil {
		return err
	}

	// The object name is fixed whatever the local file is called.
	layout := release.NewLayout(o.Prefix, release.DefaultFilename)

	if o.List {
		return o.runList(ctx, p, bucket, layout)
	}

	v, latest := o.version, o.Latest
	if o.Next {
		v, err = release.NextVersion(ctx, bucket, layout)
		if err != nil {
			if errors.Is(err, release.ErrEmptyVersionSet) {
				return fmt.Errorf("cannot derive the next version: %w; publish an explicit version first", err)
			}
			return err
		}
		p.assumingNext(v)
		if err := o.confirm(v, bucket.Name()); err != nil {
			return err
		}
		latest = true
	}

	publisher := release.NewPublisher(bucket, layout,
		release.WithPublic(o.Public),
		release.WithLogger(logger),
		release.WithContentType(o.ContentType),
	)

	p.uploading(o.File, bucket.Name())
	result, err := publisher.Publish(ctx, release.Request{
		Version: v,
		Latest:  latest,
		Content: o.content,
	})
	if err != nil {
		var werr *release.StorageWriteError
		if errors.As(err, &werr) && werr.Alias {
			p.aliasFailed(o.ErrOut, v)
		}
		return err
	}

	p.published(result)
	return nil
}

func (o *UploadOptions) runList(ctx context.Context, p *consolePrinter, bucket storage.Bucket, layout release.Layout) error {
	versions, err := release.Published(ctx, bucket, layout)
	if err != nil {
		return err
	}
	p.versions(bucket.Name(), versions)
	return nil
}

// confirm asks the operator to approve publishing v. Without --yes an
// interactive answer is required; a non-terminal stdin is refused outright.
func (o *UploadOptions) confirm(v release.Version, bucket string) error {
	if o.Yes {
		return nil
	}
	if f, ok := o.In.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return fmt.Errorf("refusing to publish %s without confirmation; pass --yes", v)
	}

	fmt.Fprintf(o.Out, "Publish %s and update latest in %q? [y/N]: ", v, bucket)
	answer, err := bufio.NewReader(o.In).ReadString('\n')
	if err != nil && answer == "" {
		return fmt.Errorf("no confirmation received: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("publish of %s aborted", v)
}

// usage prints the command usage for malformed input. Other errors pass
// through untouched.
func (o *UploadOptions) usage(cmd *cobra.Command, err error) error {
	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintln(o.ErrOut, cmd.UsageString())
	}
	return err
}

func (o *UploadOptions) newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(o.ErrOut)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if o.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
