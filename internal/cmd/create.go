package cmd

import (
	"bytes"
	"context"
	_ "crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipblob"
	"github.com/nguyengg/zipblob/codec"
	"github.com/nguyengg/zipblob/crc"
	"github.com/nguyengg/zipblob/dostime"
	"github.com/nguyengg/zipblob/internal"
	"github.com/nguyengg/zipblob/internal/config"
	"github.com/nguyengg/zipblob/internal/upload"
	"github.com/nguyengg/zipblob/mapping"
	"github.com/opencontainers/go-digest"
)

// Create builds one archive per directory.
type Create struct {
	Profile   string         `long:"profile" description:"the AWS profile to use; takes precedence over .zipblob setting"`
	CRC       string         `long:"crc" choice:"ieee" choice:"castagnoli" description:"the checksum algorithm; takes precedence over .zipblob setting"`
	Time      string         `long:"time" description:"fixed modification time in RFC 3339 format for reproducible archives; takes precedence over .zipblob setting" value-name:"TIME"`
	JunkRoot  bool           `short:"j" long:"junk-root" description:"do not prefix entry names with the directory's own name"`
	MaxBytes  string         `long:"max-bytes" description:"limits the total size of files read into memory (e.g. 512MiB); takes precedence over .zipblob setting"`
	Codec     string         `short:"c" long:"codec" choice:"none" choice:"xz" choice:"zstd" description:"compress the finished archive; takes precedence over .zipblob setting"`
	OutputDir flags.Filename `short:"o" long:"output-dir" description:"the directory to write archives to" default:"."`
	Upload    bool           `long:"upload" description:"upload archives to the [upload] location in .zipblob"`
	UploadTo  string         `short:"u" long:"upload-to" description:"upload archives to the S3 bucket and prefix in format s3://bucket/prefix; takes precedence over .zipblob setting" value-name:"S3_LOCATION"`
	Progress  bool           `long:"progress" description:"show a progress bar instead of logging progress"`
	Args      struct {
		Dirs []flags.Filename `positional-arg-name:"dir" description:"the directories to be archived" required:"yes"`
	} `positional-args:"yes"`

	cfg         config.CreateConfig
	factoryOpts []func(*zipblob.Options)
	codec       codec.Codec
	uploader    *upload.Uploader
}

func (c *Create) Execute(args []string) (err error) {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err = config.LoadProfile(ctx, c.Profile); err != nil {
		return err
	}

	if err = c.init(ctx); err != nil {
		return err
	}

	success := 0
	n := len(c.Args.Dirs)
	for i, dir := range c.Args.Dirs {
		ctx := internal.WithPrefixLogger(ctx, internal.Prefix(i+1, n, dir))
		logger := internal.MustLogger(ctx)

		if err = c.create(ctx, string(dir)); err == nil {
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			logger.Printf("interrupted")
			break
		}

		logger.Printf("create archive error: %v", err)
	}

	log.Printf("successfully created %d/%d archives", success, n)
	if success != n {
		return fmt.Errorf("failed to create %d/%d archives", n-success, n)
	}

	return nil
}

// init merges command-line flags over .zipblob settings.
func (c *Create) init(ctx context.Context) (err error) {
	if c.cfg, err = config.ForCreate(); err != nil {
		return err
	}

	if c.CRC != "" {
		c.cfg.CRC = c.CRC
	}
	if c.Time != "" {
		if c.cfg.Time, err = time.Parse(time.RFC3339, c.Time); err != nil {
			return fmt.Errorf("invalid --time: %w", err)
		}
	}
	if c.JunkRoot {
		c.cfg.JunkRoot = true
	}
	if c.MaxBytes != "" {
		v, err := humanize.ParseBytes(c.MaxBytes)
		if err != nil {
			return fmt.Errorf("invalid --max-bytes: %w", err)
		}
		c.cfg.MaxBytes = int64(v)
	}
	if c.Codec != "" {
		c.cfg.Codec = c.Codec
	}

	p, err := crc.FromName(c.cfg.CRC)
	if err != nil {
		return err
	}

	var clock dostime.Clock = dostime.SystemClock{Location: time.Local}
	if !c.cfg.Time.IsZero() {
		clock = dostime.FixedTime(c.cfg.Time)
	}

	c.factoryOpts = []func(*zipblob.Options){zipblob.WithCRC(p), zipblob.WithClock(clock)}

	if c.codec, err = codec.FromName(c.cfg.Codec); err != nil {
		return err
	}

	if c.Upload || c.UploadTo != "" {
		if c.uploader, err = c.newUploader(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (c *Create) newUploader(ctx context.Context) (u *upload.Uploader, err error) {
	uCfg := config.ForUpload()
	u = &upload.Uploader{
		Bucket:              uCfg.Bucket,
		Prefix:              uCfg.Prefix,
		ExpectedBucketOwner: uCfg.ExpectedBucketOwner,
		StorageClass:        uCfg.StorageClass,
	}

	if c.UploadTo != "" {
		if u.Bucket, u.Prefix, err = internal.ParseS3URI(c.UploadTo); err != nil {
			return nil, fmt.Errorf("invalid --upload-to: %w", err)
		}
	}

	if u.Bucket == "" {
		return nil, fmt.Errorf("no bucket configuration in .zipblob")
	}

	if u.Client, err = config.NewS3Client(ctx); err != nil {
		return nil, fmt.Errorf("create s3 client error: %w", err)
	}

	return u, nil
}

func (c *Create) create(ctx context.Context, dir string) error {
	logger := internal.Logger(ctx)

	switch fi, err := os.Stat(dir); {
	case err != nil:
		return fmt.Errorf(`stat directory "%s" error: %w`, dir, err)
	case !fi.IsDir():
		return fmt.Errorf(`"%s" is not a directory`, dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf(`resolve directory "%s" error: %w`, dir, err)
	}

	logger.Printf("start reading files")

	progress := internal.NewProgress(c.Progress, logger, "read", -1)
	files, err := mapping.FromDir(ctx, abs, func(opts *mapping.Options) {
		opts.JunkRoot = c.cfg.JunkRoot
		opts.MaxBytes = c.cfg.MaxBytes
		opts.Progress = progress
	})
	_ = progress.Close()
	if err != nil {
		return err
	}

	data, err := zipblob.New(append(slices.Clip(c.factoryOpts), zipblob.WithLogger(logger))...).Build(files)
	if err != nil {
		return fmt.Errorf("build archive error: %w", err)
	}

	logger.Printf("archive digest is %s", digest.FromBytes(data))

	name, err := c.write(filepath.Join(string(c.OutputDir), filepath.Base(abs)), data)
	if err != nil {
		return err
	}

	logger.Printf(`wrote to "%s"`, name)

	if c.uploader == nil {
		return nil
	}

	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf(`open archive "%s" error: %w`, name, err)
	}
	defer f.Close()

	c.uploader.Logger = logger
	uri, err := c.uploader.Upload(ctx, name, f, c.codec.ContentType())
	if err != nil {
		return err
	}

	logger.Printf(`uploaded to "%s"`, uri)
	return nil
}

// write encodes data with the configured codec to a new file, returning the name of that file.
//
// The file is removed if any error happens.
func (c *Create) write(basename string, data []byte) (string, error) {
	dst, err := internal.OpenExclFile(basename, ".zip"+c.codec.Ext())
	if err != nil {
		return "", fmt.Errorf("create archive error: %w", err)
	}

	enc, err := c.codec.NewEncoder(dst)
	if err != nil {
		_, _ = dst.Close(), os.Remove(dst.Name())
		return "", fmt.Errorf("create encoder error: %w", err)
	}

	if _, err = io.Copy(enc, bytes.NewReader(data)); err == nil {
		err = enc.Close()
	}
	if err != nil {
		_, _ = dst.Close(), os.Remove(dst.Name())
		return "", fmt.Errorf("write archive error: %w", err)
	}

	if err = dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("complete writing archive error: %w", err)
	}

	return dst.Name(), nil
}
