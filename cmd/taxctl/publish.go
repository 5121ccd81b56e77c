package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/infrastructure/storage"
)

func newPublishCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the site data directory to S3-compatible storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var store storage.ObjectStorage
			if dryRun {
				store = storage.NewMemoryObjectStorage()
			} else {
				if !a.cfg.Storage.IsConfigured() {
					return errors.New("storage.bucket, storage.access_key and storage.secret_key are required to publish")
				}
				s3, err := storage.NewS3ObjectStorage(&a.cfg.Storage, storage.WithLogger(a.log))
				if err != nil {
					return err
				}
				store = s3
			}

			publisher := storage.NewPublisher(store, a.cfg.Storage.Prefix, a.log)
			objects, err := publisher.Publish(cmd.Context(), a.cfg.Web.OutputDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, obj := range objects {
				fmt.Fprintf(out, "%-60s %-32s %12d\n", obj.Key, obj.ContentType, obj.Size)
			}
			a.log.Info("Publish finished",
				zap.Bool("dry_run", dryRun),
				zap.Int("objects", len(objects)),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be uploaded without contacting the bucket")
	return cmd
}
