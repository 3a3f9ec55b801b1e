package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/artifacts"
	"github.com/groblegark/loom/internal/events"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <invocation-id>",
	Short: "Upload a recorded run's artifacts to object storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.S3Bucket == "" {
			return fmt.Errorf("LOOM_S3_BUCKET is not set")
		}

		registry, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		ctx := context.Background()
		run, err := registry.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		dst, err := artifacts.NewS3Destination(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return err
		}

		keys, err := artifacts.WriteAll(ctx, dst, run)
		if err != nil {
			return err
		}
		for _, key := range keys {
			mgr.Fire(events.ArtifactUploaded{
				Bucket: dst.Bucket(),
				Key:    dst.Key(key),
			})
		}
		if jsonOutput {
			printJSON(keys)
		}
		return nil
	},
}
