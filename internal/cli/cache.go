package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/cache"
)

// cacheCommand groups the local file cache subcommands. The redis cache is
// shared between servers and is not managed from here.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}
	cmd.AddCommand(
		c.cacheInfoCommand(),
		c.cachePruneCommand(),
		c.cacheClearCommand(),
		c.cachePathCommand(),
	)
	return cmd
}

// localCacheDir is cache.dir from the config, or the XDG cache directory.
func (c *CLI) localCacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

// openLocalCache returns nil without error when the directory does not
// exist yet, so read-only subcommands do not create it.
func (c *CLI) openLocalCache() (*cache.FileCache, string, error) {
	dir, err := c.localCacheDir()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, dir, nil
	}
	fc, err := cache.NewFileCache(dir)
	return fc, dir, err
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location, entry count and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, dir, err := c.openLocalCache()
			if err != nil {
				return err
			}
			var st cache.FileStats
			if fc != nil {
				if st, err = fc.Stats(); err != nil {
					return fmt.Errorf("read cache: %w", err)
				}
			}
			printKeyValue("Directory", dir)
			printKeyValue("Entries", strconv.Itoa(st.Entries))
			printKeyValue("Expired", strconv.Itoa(st.Expired))
			printKeyValue("Size", humanize.Bytes(uint64(st.Bytes)))
			return nil
		},
	}
}

func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, _, err := c.openLocalCache()
			if err != nil {
				return err
			}
			if fc == nil {
				printInfo("Cache is empty")
				return nil
			}
			n, err := fc.Prune()
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			printSuccess("Pruned %d expired entries", n)
			return nil
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, dir, err := c.openLocalCache()
			if err != nil {
				return err
			}
			if fc == nil {
				printInfo("Cache is empty")
				return nil
			}
			st, _ := fc.Stats()
			n, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached entries (%s)", n, humanize.Bytes(uint64(st.Bytes)))
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.localCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
