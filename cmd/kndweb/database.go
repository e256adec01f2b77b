package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/backup"
)

type adminFlags struct {
	username string
	password string
}

func (f *adminFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", os.Getenv("KND_ADMIN_USERNAME"), "admin username (or KND_ADMIN_USERNAME)")
	cmd.Flags().StringVarP(&f.password, "password", "p", os.Getenv("KND_ADMIN_PASSWORD"), "admin password (or KND_ADMIN_PASSWORD)")
}

// login returns a backend client and a fresh admin token.
func (f *adminFlags) login(cmd *cobra.Command, opts *rootOptions) (*api.Client, api.Credentials, *zap.Logger, error) {
	if f.username == "" || f.password == "" {
		return nil, api.Credentials{}, nil, errors.New("admin username and password are required")
	}
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return nil, api.Credentials{}, nil, err
	}
	logger, err := newLogger(opts.debug)
	if err != nil {
		return nil, api.Credentials{}, nil, err
	}
	client := api.New(cfg.APIBaseURL, api.WithLogger(logger))
	creds, err := client.Login(cmd.Context(), f.username, f.password)
	if err != nil {
		return nil, api.Credentials{}, nil, fmt.Errorf("login: %w", err)
	}
	return client, creds, logger, nil
}

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var (
		admin   adminFlags
		outDir  string
		archive bool
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Download a database backup, or archive it to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, creds, logger, err := admin.login(cmd, opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			b, err := client.Backup(cmd.Context(), creds)
			if err != nil {
				return err
			}
			defer b.Body.Close()

			if archive {
				cfg, err := loadConfig(opts.configFile)
				if err != nil {
					return err
				}
				bucket, err := backup.NewBucket(cmd.Context(), cfg.S3, logger)
				if err != nil {
					return err
				}
				key, err := bucket.Archive(cmd.Context(), b.Filename, b.Body)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "archived s3://%s/%s\n", bucket.Name(), key)
				return nil
			}

			path := filepath.Join(outDir, b.Filename)
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			n, err := io.Copy(f, b.Body)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(path)
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, n)
			return nil
		},
	}
	admin.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the backup to")
	cmd.Flags().BoolVar(&archive, "s3", false, "archive to the configured S3 bucket instead")
	return cmd
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	var admin adminFlags
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Verify a backup and restore it to the backend",
		Long:  "Accepts a .db, .gz, .zip, .tar or .tar.gz file. The database is extracted and integrity-checked before upload.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prepared, err := backup.Prepare(cmd.Context(), args[0], filepath.Base(args[0]), "")
			if err != nil {
				return err
			}
			defer prepared.Cleanup()
			printReport(cmd.OutOrStdout(), args[0], prepared.Report)

			client, creds, logger, err := admin.login(cmd, opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			f, err := os.Open(prepared.Path)
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := client.Restore(cmd.Context(), creds, "restore.db", f)
			if err != nil {
				return err
			}
			msg := res.Message
			if msg == "" {
				msg = "database restored"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	admin.register(cmd)
	return cmd
}

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check that a backup holds an intact SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prepared, err := backup.Prepare(cmd.Context(), args[0], filepath.Base(args[0]), "")
			if err != nil {
				return err
			}
			defer prepared.Cleanup()
			printReport(cmd.OutOrStdout(), args[0], prepared.Report)
			return nil
		},
	}
}

func printReport(w io.Writer, name string, rep backup.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file\t%s\n", name)
	fmt.Fprintf(tw, "size\t%d bytes\n", rep.Size)
	fmt.Fprintf(tw, "integrity\t%s\n", rep.Integrity)
	fmt.Fprintf(tw, "tables\t%s\n", strings.Join(rep.Tables, ", "))
	tw.Flush()
}
