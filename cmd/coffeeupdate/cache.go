package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coffeeauras/coffeeupdate/internal/config"
	"github.com/coffeeauras/coffeeupdate/internal/log"
	"github.com/coffeeauras/coffeeupdate/internal/registry"
)

var cacheInfoJSON bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the manifest cache",
	Long: `Manage the copy of the add-on manifest kept between runs.

update and status reuse the cached manifest until it is older than
COFFEE_MANIFEST_TTL (5 minutes by default) or --force is given.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the manifest cache",
	Long: `Remove the cached manifest, forcing a fresh download on the next
update or status.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifests, err := openManifestCache()
		if err != nil {
			return err
		}
		if err := manifests.Invalidate(); err != nil {
			return err
		}
		printInfo("Manifest cache cleared")
		return nil
	},
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show manifest cache information",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifests, err := openManifestCache()
		if err != nil {
			return err
		}
		info := describeCache(manifests, config.GetManifestTTL(), time.Now())

		if cacheInfoJSON {
			printJSON(info)
			return nil
		}

		fmt.Println("Manifest cache")
		fmt.Printf("  Path:    %s\n", info.Path)
		if !info.Cached {
			fmt.Println("  Status:  empty")
			return nil
		}
		status := "fresh"
		if info.Expired {
			status = "expired"
		}
		fmt.Printf("  Status:  %s\n", status)
		fmt.Printf("  Fetched: %s (%s ago)\n", info.FetchedAt.Local().Format(time.DateTime), info.Age)
		fmt.Printf("  Add-ons: %d\n", info.AddOns)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInfoCmd)

	cacheInfoCmd.Flags().BoolVar(&cacheInfoJSON, "json", false, "Output in JSON format")
}

// openManifestCache opens the on-disk manifest cache without a network
// source; only Cached and Invalidate are used on it.
func openManifestCache() (*registry.ManifestCache, error) {
	home, err := homeConfig()
	if err != nil {
		return nil, err
	}
	return newManifestCache(home, registry.New(""), log.Default()), nil
}

// cacheInfo is the JSON form of cache info.
type cacheInfo struct {
	Path      string    `json:"path"`
	Cached    bool      `json:"cached"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
	Age       string    `json:"age,omitempty"`
	Expired   bool      `json:"expired"`
	AddOns    int       `json:"addons"`
}

func describeCache(c *registry.ManifestCache, ttl time.Duration, now time.Time) cacheInfo {
	info := cacheInfo{Path: c.Path()}
	manifest, fetchedAt := c.Cached()
	if manifest == nil {
		return info
	}

	age := now.Sub(fetchedAt)
	info.Cached = true
	info.FetchedAt = fetchedAt
	info.Age = age.Truncate(time.Second).String()
	info.Expired = age < 0 || age >= ttl
	info.AddOns = len(manifest.AddOns)
	return info
}
