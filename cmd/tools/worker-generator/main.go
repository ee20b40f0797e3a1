// cmd/tools/worker-generator/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"readiness-workers/pkg/registry"

	"github.com/spf13/cobra"
)

var (
	activityID   string
	outputDir    string
	registryPath string
	force        bool
)

var rootCmd = &cobra.Command{
	Use:   "worker-generator",
	Short: "Scaffold a job worker package from its registry entry",
	Long: `Reads an activity from the registry and writes config.go, models.go,
handler.go and handler_test.go under <output>/<category>/<task type>.
Input and output structs follow the activity's JSON schemas.`,
	Example:       "  worker-generator --activity investor.match.list",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.Flags().StringVar(&activityID, "activity", "", "Activity ID or task type from the registry")
	rootCmd.Flags().StringVar(&outputDir, "output", "internal/workers", "Root directory for worker packages")
	rootCmd.Flags().StringVar(&registryPath, "registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	rootCmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	_ = rootCmd.MarkFlagRequired("activity")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return err
	}

	activity, ok := findActivity(reg, activityID)
	if !ok {
		return fmt.Errorf("activity %q not found in %s", activityID, registryPath)
	}

	data := newWorkerData(activity)
	dir := filepath.Join(outputDir, data.Category, data.TaskType)
	written, err := generate(dir, data, force)
	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "generated %s\n", path)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nregister %s.TaskType in cmd/worker-manager/main.go and add a workers.%s block to configs/config.yaml\n",
		data.PackageName, data.TaskType)
	return nil
}

// findActivity matches on activity id first, then task type.
func findActivity(reg *registry.ActivityRegistry, key string) (registry.Activity, bool) {
	for _, a := range reg.Activities {
		if a.ID == key {
			return a, true
		}
	}
	return reg.Find(key)
}
