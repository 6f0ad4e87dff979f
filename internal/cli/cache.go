package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hypertile/pkg/cache"
	"github.com/matzehuels/hypertile/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the tiling and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached tiling and artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := c.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "the %T backend cannot be cleared", cc)
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}

			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			if fc, ok := cc.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config().Cache
			switch cfg.Backend {
			case cache.BackendRedis:
				fmt.Fprintln(cmd.OutOrStdout(), "redis://"+cfg.RedisAddr)
				return nil
			case cache.BackendMongo:
				fmt.Fprintln(cmd.OutOrStdout(), cfg.MongoURI)
				return nil
			case cache.BackendNone:
				return errors.New(errors.ErrCodeInvalidConfig, "caching is disabled in %s", c.config().Path())
			}

			dir := cfg.Dir
			if dir == "" {
				var err error
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
